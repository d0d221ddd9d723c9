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

package ingredient

import (
	"sync"
	"sync/atomic"
)

// Unifier resolves alias ids to canonical representatives, in the manner of
// an ore dictionary. Aliases are single-hop: the target of an alias is
// returned as-is. A nil *Unifier is the identity mapping.
type Unifier struct {
	mu      sync.RWMutex
	aliases map[ID]ID
	version atomic.Uint64
}

// NewUnifier returns an empty unifier.
func NewUnifier() *Unifier {
	return &Unifier{aliases: make(map[ID]ID)}
}

// Alias maps from to the canonical id to. Registering an id as its own alias
// removes any existing mapping.
func (u *Unifier) Alias(from, to ID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if from == to {
		delete(u.aliases, from)
	} else {
		u.aliases[from] = to
	}
	u.version.Add(1)
}

// Len returns the number of registered aliases.
func (u *Unifier) Len() int {
	if u == nil {
		return 0
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.aliases)
}

// Version increments on every table change. Consumers holding unified data
// compare versions to decide whether a rebuild is due.
func (u *Unifier) Version() uint64 {
	if u == nil {
		return 0
	}
	return u.version.Load()
}

// Canonical returns the canonical id for id. Exact aliases win over an alias
// registered for the wildcard form of the same item.
func (u *Unifier) Canonical(id ID) ID {
	if u == nil || id.IsZero() {
		return id
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.canonicalLocked(id)
}

func (u *Unifier) canonicalLocked(id ID) ID {
	if to, ok := u.aliases[id]; ok {
		return to
	}
	if id.Kind == KindItem && !id.IsWildcard() {
		if to, ok := u.aliases[id.Wildcard()]; ok {
			return to
		}
	}
	return id
}

// Unify returns s with its id canonicalized. Amount and label are kept.
func (u *Unifier) Unify(s Stack) Stack {
	if s.IsEmpty() {
		return s
	}
	s.ID = u.Canonical(s.ID)
	return s
}

// UnifyAll returns a new slice holding the unified stacks. The argument is
// never modified, so slices shared between recipes stay intact.
func (u *Unifier) UnifyAll(stacks []Stack) []Stack {
	if stacks == nil {
		return nil
	}
	out := make([]Stack, len(stacks))
	if u == nil {
		copy(out, stacks)
		return out
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	for i, s := range stacks {
		if !s.IsEmpty() {
			s.ID = u.canonicalLocked(s.ID)
		}
		out[i] = s
	}
	return out
}
