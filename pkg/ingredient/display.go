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
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName returns a human-readable name for a stack: its label when set,
// otherwise the id path title-cased ("gregtech:dust.iron" -> "Dust Iron").
func DisplayName(s Stack) string {
	if s.Label != "" {
		return s.Label
	}
	return displayID(s.ID)
}

func displayID(id ID) string {
	name := id.Name
	if _, path, ok := strings.Cut(name, ":"); ok && path != "" {
		name = path
	}
	name = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(name)
	// cases.Caser is stateful and not safe for concurrent use.
	title := cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
	if id.Kind == KindItem && id.Meta != 0 && id.Meta != WildcardMeta {
		return title + " (" + strings.TrimPrefix(id.String(), id.Name+metaSeparator) + ")"
	}
	return title
}
