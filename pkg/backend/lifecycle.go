// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import "sync/atomic"

// Lifecycle carries process-wide load state shared by related backends.
type Lifecycle struct {
	postload atomic.Bool
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// MarkPostloadFinished enables the minimum-input short-circuit of searches.
func (l *Lifecycle) MarkPostloadFinished() {
	l.postload.Store(true)
}

func (l *Lifecycle) PostloadFinished() bool {
	return l.postload.Load()
}
