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

package registry

import (
	"strings"

	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
)

// ReservedNamespace is owned by the built-in backends and cannot be
// registered into.
const ReservedNamespace = "gregtech"

const keySeparator = "@"

// Key identifies a backend.
type Key struct {
	Namespace string
	ID        string
}

// NewKey returns the key for namespace and id.
func NewKey(namespace, id string) Key {
	return Key{Namespace: namespace, ID: id}
}

// ParseKey parses "namespace@id".
func ParseKey(s string) (Key, error) {
	ns, id, ok := strings.Cut(strings.TrimSpace(s), keySeparator)
	if !ok || ns == "" || id == "" {
		return Key{}, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"backend key must have the form namespace@id", map[string]any{"key": s})
	}
	return Key{Namespace: ns, ID: id}, nil
}

// MustParseKey is like ParseKey but panics on malformed input.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) String() string {
	return k.Namespace + keySeparator + k.ID
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
