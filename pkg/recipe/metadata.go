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

package recipe

// Key names a typed metadata entry on a Builder.
type Key[T any] struct {
	name string
}

// NewKey declares a metadata key. Keys are compared by name.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) Name() string {
	return k.name
}

var (
	// LowGravity requires a low gravity environment.
	LowGravity = NewKey[bool]("lowGravity")
	// Cleanroom requires a cleanroom.
	Cleanroom = NewKey[bool]("cleanroom")

	CoilHeat        = NewKey[int]("coilHeat")
	FusionThreshold = NewKey[int]("fusionThreshold")
	NaniteTier      = NewKey[int]("naniteTier")
)

// SpecialValueAliases lists, in precedence order, the int keys whose value
// becomes the special value of a recipe that does not set one explicitly.
var SpecialValueAliases = []Key[int]{CoilHeat, FusionThreshold, NaniteTier}

// BoolKeys lists the well-known boolean keys.
var BoolKeys = []Key[bool]{LowGravity, Cleanroom}

// SetMetadata stores v under k, replacing any previous value.
func SetMetadata[T any](b *Builder, k Key[T], v T) *Builder {
	if b.metadata == nil {
		b.metadata = make(map[string]any)
	}
	b.metadata[k.name] = v
	return b
}

// LookupMetadata returns the value stored under k. An entry stored with a
// different type counts as absent.
func LookupMetadata[T any](b *Builder, k Key[T]) (T, bool) {
	v, ok := b.metadata[k.name].(T)
	return v, ok
}

// Metadata returns the value stored under k or def.
func Metadata[T any](b *Builder, k Key[T], def T) T {
	if v, ok := LookupMetadata(b, k); ok {
		return v
	}
	return def
}
