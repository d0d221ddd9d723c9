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
	"strconv"
	"strings"

	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
)

const amountSeparator = "*"

// Stack is an ingredient with a quantity. The zero value is an empty slot.
type Stack struct {
	ID     ID     `json:"id" yaml:"id"`
	Amount int64  `json:"amount" yaml:"amount"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// NewItem returns an item stack.
func NewItem(name string, meta int, amount int64) Stack {
	return Stack{ID: Item(name, meta), Amount: amount}
}

// NewFluid returns a fluid stack.
func NewFluid(name string, amount int64) Stack {
	return Stack{ID: Fluid(name), Amount: amount}
}

// IsEmpty reports whether the slot holds nothing.
func (s Stack) IsEmpty() bool {
	return s.ID.IsZero()
}

// String renders the stack in catalog notation.
func (s Stack) String() string {
	if s.IsEmpty() {
		return ""
	}
	return s.ID.String() + amountSeparator + strconv.FormatInt(s.Amount, 10)
}

// SameIngredient compares two stacks ignoring quantity. Wildcard metadata on
// either side matches any metadata. Two empty stacks are never the same
// ingredient.
func SameIngredient(a, b Stack) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.ID.Matches(b.ID)
}

// Equal compares two stacks including quantity. Labels are ignored.
func Equal(a, b Stack) bool {
	return a.ID == b.ID && a.Amount == b.Amount
}

// EqualOrEmpty reports whether both stacks are empty or both hold the same
// ingredient.
func EqualOrEmpty(a, b Stack) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return a.IsEmpty() && b.IsEmpty()
	}
	return SameIngredient(a, b)
}

// CountNonEmpty returns the number of occupied slots.
func CountNonEmpty(stacks []Stack) int {
	n := 0
	for _, s := range stacks {
		if !s.IsEmpty() {
			n++
		}
	}
	return n
}

// ParseStack parses "id" or "id*amount". A missing amount means 1. The
// amount is split at the last "*" so wildcard ids ("name@*") stay intact.
func ParseStack(kind Kind, s string) (Stack, error) {
	s = strings.TrimSpace(s)
	raw, amount := s, ""
	if i := strings.LastIndex(s, amountSeparator); i >= 0 {
		before, after := s[:i], s[i+1:]
		if after != "" && !strings.HasSuffix(before, metaSeparator) {
			raw, amount = before, after
		}
	}

	id, err := ParseID(kind, raw)
	if err != nil {
		return Stack{}, err
	}

	st := Stack{ID: id, Amount: 1}
	if amount == "" {
		return st, nil
	}
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil || n < 0 {
		return Stack{}, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"invalid stack amount", err, map[string]any{"stack": s})
	}
	st.Amount = n
	return st, nil
}
