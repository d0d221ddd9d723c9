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
	"fmt"
	"strconv"
	"strings"

	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
)

// Kind distinguishes item identifiers from fluid identifiers.
type Kind uint8

const (
	// KindItem identifies solid, slot-based ingredients.
	KindItem Kind = iota
	// KindFluid identifies tank-based ingredients.
	KindFluid
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindFluid:
		return "fluid"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// WildcardMeta marks an item id that matches any metadata value.
const WildcardMeta = 32767

const (
	metaSeparator = "@"
	wildcardToken = "*"
)

// ID is a comparable, hashable ingredient identifier. Quantity is never part
// of an ID.
type ID struct {
	Kind Kind
	Name string
	Meta int
}

// Item returns an item id with the given metadata.
func Item(name string, meta int) ID {
	return ID{Kind: KindItem, Name: name, Meta: meta}
}

// Fluid returns a fluid id.
func Fluid(name string) ID {
	return ID{Kind: KindFluid, Name: name}
}

// IsZero reports whether the id names nothing.
func (id ID) IsZero() bool {
	return id.Name == ""
}

// IsWildcard reports whether the id matches any metadata.
func (id ID) IsWildcard() bool {
	return id.Kind == KindItem && id.Meta == WildcardMeta
}

// Wildcard returns the any-metadata form of an item id. Fluid ids are
// returned unchanged.
func (id ID) Wildcard() ID {
	if id.Kind != KindItem {
		return id
	}
	id.Meta = WildcardMeta
	return id
}

// Matches reports whether two ids denote the same resource, treating a
// wildcard on either side as matching any metadata of the same item.
func (id ID) Matches(other ID) bool {
	if id.Kind != other.Kind || id.Name != other.Name {
		return false
	}
	if id.Kind == KindFluid {
		return true
	}
	return id.Meta == other.Meta || id.Meta == WildcardMeta || other.Meta == WildcardMeta
}

// String renders the id in catalog notation.
func (id ID) String() string {
	if id.Kind == KindFluid || id.Meta == 0 {
		return id.Name
	}
	if id.Meta == WildcardMeta {
		return id.Name + metaSeparator + wildcardToken
	}
	return id.Name + metaSeparator + strconv.Itoa(id.Meta)
}

// MarshalText renders the id in catalog notation. The kind is not encoded;
// it follows from the field holding the id.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses catalog notation with the kind already set on the
// receiver, so a zero ID decodes as an item. Empty text yields a zero ID.
func (id *ID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = ID{Kind: id.Kind}
		return nil
	}
	parsed, err := ParseID(id.Kind, string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID parses catalog notation: "name", "name@meta" or "name@*".
// Fluids do not accept metadata.
func ParseID(kind Kind, s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "ingredient id cannot be empty")
	}

	name, meta, hasMeta := strings.Cut(s, metaSeparator)
	if name == "" {
		return ID{}, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"ingredient id has an empty name", map[string]any{"id": s})
	}
	if !hasMeta {
		return ID{Kind: kind, Name: name}, nil
	}
	if kind == KindFluid {
		return ID{}, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"fluid ids do not carry metadata", map[string]any{"id": s})
	}
	if meta == wildcardToken {
		return Item(name, WildcardMeta), nil
	}

	n, err := strconv.Atoi(meta)
	if err != nil || n < 0 || n > WildcardMeta {
		return ID{}, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"invalid item metadata", err, map[string]any{"id": s})
	}
	return Item(name, n), nil
}
