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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtnewhorizons/recipemap/pkg/backend"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
)

func plate() *recipe.Builder {
	return recipe.NewBuilder().
		ItemInputs(ingredient.NewItem("gregtech:dust.iron", 0, 2)).
		ItemOutputs(ingredient.NewItem("gregtech:plate.iron", 0, 1))
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{in: "gt@macerator", want: Key{Namespace: "gt", ID: "macerator"}},
		{in: " gt@a@b ", want: Key{Namespace: "gt", ID: "a@b"}},
		{in: "macerator", wantErr: true},
		{in: "@macerator", wantErr: true},
		{in: "gt@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, err := ParseKey(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}

	var k Key
	require.NoError(t, k.UnmarshalText([]byte("gt@mixer")))
	text, err := k.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "gt@mixer", string(text))
	assert.Panics(t, func() { MustParseKey("nope") })
}

func TestRegister(t *testing.T) {
	r := New()
	key := NewKey("gt", "macerator")
	b := backend.New("macerator")

	h, err := r.Register(key, b)
	require.NoError(t, err)
	assert.Equal(t, backend.Handle(1), h)
	assert.Equal(t, h, b.Handle())
	assert.Same(t, r.Lifecycle(), b.Lifecycle())

	got, ok := r.Get(key)
	require.True(t, ok)
	assert.Same(t, b, got)

	resolved, ok := r.Resolve(h)
	require.True(t, ok)
	assert.Same(t, b, resolved)
	_, ok = r.Resolve(0)
	assert.False(t, ok)
	_, ok = r.Resolve(7)
	assert.False(t, ok)

	t.Run("duplicate rejected", func(t *testing.T) {
		_, err := r.Register(key, backend.New("other"))
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeConflict, cnserrors.CodeOf(err))
		assert.Equal(t, 1, r.Count())
	})

	t.Run("reserved namespace rejected", func(t *testing.T) {
		_, err := r.Register(NewKey(ReservedNamespace, "x"), backend.New("x"))
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
	})

	t.Run("nil backend rejected", func(t *testing.T) {
		_, err := r.Register(NewKey("gt", "nil"), nil)
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
	})

	t.Run("must register panics", func(t *testing.T) {
		assert.Panics(t, func() { r.MustRegister(key, backend.New("dup")) })
	})
}

func TestKeysSorted(t *testing.T) {
	r := New()
	for _, k := range []string{"gt@mixer", "ae@press", "gt@blast"} {
		r.MustRegister(MustParseKey(k), backend.New(k))
	}
	assert.Equal(t, []Key{
		{Namespace: "ae", ID: "press"},
		{Namespace: "gt", ID: "blast"},
		{Namespace: "gt", ID: "mixer"},
	}, r.Keys())
}

func TestPendingActionsFlushInOrder(t *testing.T) {
	r := New()
	key := NewKey("gt", "late")

	var order []int
	r.RegisterRecipesFor(key, func(*backend.Backend) { order = append(order, 1) })
	r.RegisterRecipesFor(key, func(b *backend.Backend) {
		order = append(order, 2)
		_, err := b.Add(plate())
		assert.NoError(t, err)
	})
	assert.Equal(t, 2, r.Pending(key))
	assert.Empty(t, order)

	b := backend.New("late")
	r.MustRegister(key, b)
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, r.Pending(key))
	assert.Equal(t, 1, b.Len())

	r.RegisterRecipesFor(key, func(*backend.Backend) { order = append(order, 3) })
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPendingActionMayUseRegistry(t *testing.T) {
	r := New()
	key := NewKey("gt", "reentrant")
	r.RegisterRecipesFor(key, func(*backend.Backend) {
		// the registry lock is not held while actions run
		_, ok := r.Get(key)
		assert.True(t, ok)
	})
	r.MustRegister(key, backend.New("reentrant"))
}

func TestDependentsAreSymmetric(t *testing.T) {
	r := New()
	a, b, c := backend.New("a"), backend.New("b"), backend.New("c")
	ha := r.MustRegister(NewKey("gt", "a"), a, NewKey("gt", "b"), NewKey("gt", "a"))
	assert.Empty(t, r.Dependents(ha), "unregistered dependencies are skipped")

	hb := r.MustRegister(NewKey("gt", "b"), b)
	hc := r.MustRegister(NewKey("gt", "c"), c)

	assert.Equal(t, []*backend.Backend{b}, r.Dependents(ha))
	assert.Equal(t, []*backend.Backend{a}, r.Dependents(hb))
	assert.Empty(t, r.Dependents(hc))
	assert.Nil(t, r.Dependents(0))
}

func TestAttachDownstream(t *testing.T) {
	r := New()
	primary := backend.New("primary")
	fake := backend.New("fake", backend.WithSpecialHandler(recipe.AllFake))
	mk, fk := NewKey("gt", "primary"), NewKey("gt", "fake")
	r.MustRegister(mk, primary)
	r.MustRegister(fk, fake)

	require.NoError(t, r.AttachDownstream(mk, fk))
	out, err := primary.Add(plate())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, fake.Len())

	err = r.AttachDownstream(mk, NewKey("gt", "missing"))
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	err = r.AttachDownstream(mk, mk)
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
}

func TestConcurrentRegistrationIntoDependents(t *testing.T) {
	r := New()
	ka, kb := NewKey("gt", "a"), NewKey("gt", "b")
	release := make(chan struct{})
	entered := make(chan struct{})

	// a blocks inside its emitter so its registration stays in progress
	a := backend.New("a", backend.WithEmitter(func(bl *recipe.Builder) []*recipe.Recipe {
		close(entered)
		<-release
		return recipe.BuildOrEmpty(bl)
	}))
	b := backend.New("b")
	r.MustRegister(ka, a, kb)
	r.MustRegister(kb, b)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := a.Add(plate())
		assert.NoError(t, err)
	}()
	<-entered

	_, err := b.Add(plate())
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrConcurrentRegistration)

	close(release)
	wg.Wait()

	out, err := b.Add(plate())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestPostloadShared(t *testing.T) {
	r := New()
	b := backend.New("assembler", backend.WithMinItemInputs(2))
	r.MustRegister(NewKey("gt", "assembler"), b)
	_, err := b.Add(plate())
	require.NoError(t, err)

	q := backend.Query{Items: []ingredient.Stack{ingredient.NewItem("gregtech:dust.iron", 0, 2)}}
	assert.True(t, b.Find(q).Found())
	r.MarkPostloadFinished()
	assert.True(t, b.Lifecycle().PostloadFinished())
	assert.False(t, b.Find(q).Found())
}

func TestDefaultLifecycle(t *testing.T) {
	t.Cleanup(Teardown)

	d := Default()
	assert.Same(t, d, Default())
	d.MustRegister(NewKey("gt", "x"), backend.New("x"))

	fresh := Init()
	assert.NotSame(t, d, fresh)
	assert.Equal(t, 0, Default().Count())

	Teardown()
	assert.NotSame(t, fresh, Default())
}
