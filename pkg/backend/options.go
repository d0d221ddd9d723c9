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

import (
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
)

// DurationSource supplies per-recipe duration overrides. Implementations
// return def when they have no entry for key.
type DurationSource interface {
	Duration(category, key string, def int) (int, error)
}

// Properties are the immutable settings of a backend.
type Properties struct {
	Name                 string
	MinItemInputs        int
	MinFluidInputs       int
	SpecialSlotSensitive bool
	ConfigCategory       string
	CollisionCheck       bool
}

// Option is a functional option for configuring a Backend.
type Option func(*Backend)

// WithMinItemInputs sets the number of item inputs every search needs after
// postload. Zero also enables the fluid-only search fallback.
func WithMinItemInputs(n int) Option {
	return func(b *Backend) {
		b.props.MinItemInputs = max(0, n)
	}
}

// WithMinFluidInputs sets the number of fluid inputs every search needs
// after postload.
func WithMinFluidInputs(n int) Option {
	return func(b *Backend) {
		b.props.MinFluidInputs = max(0, n)
	}
}

// WithSpecialSlotSensitive makes searches compare the special slot.
func WithSpecialSlotSensitive(sensitive bool) Option {
	return func(b *Backend) {
		b.props.SpecialSlotSensitive = sensitive
	}
}

// WithConfigCategory enables duration overrides looked up under category
// with the key derived by key.
func WithConfigCategory(category string, key recipe.KeyFunc) Option {
	return func(b *Backend) {
		b.props.ConfigCategory = category
		b.configKey = key
	}
}

// WithDurationConfig sets the duration override store.
func WithDurationConfig(src DurationSource) Option {
	return func(b *Backend) {
		b.durations = src
	}
}

func WithEmitter(e recipe.Emitter) Option {
	return func(b *Backend) {
		if e != nil {
			b.emitter = e
		}
	}
}

func WithSpecialHandler(h recipe.SpecialHandler) Option {
	return func(b *Backend) {
		b.specialHandler = h
	}
}

func WithHooks(h Hooks) Option {
	return func(b *Backend) {
		b.hooks = h
	}
}

// WithUnifier sets the table used for NotUnified searches and Rebuild.
func WithUnifier(u *ingredient.Unifier) Option {
	return func(b *Backend) {
		b.unifier = u
	}
}

func WithCollisionHandler(h CollisionHandler) Option {
	return func(b *Backend) {
		if h != nil {
			b.onCollision = h
		}
	}
}

// WithCollisionCheck toggles duplicate detection on registration.
func WithCollisionCheck(enabled bool) Option {
	return func(b *Backend) {
		b.props.CollisionCheck = enabled
	}
}

func WithLifecycle(lc *Lifecycle) Option {
	return func(b *Backend) {
		if lc != nil {
			b.lifecycle = lc
		}
	}
}
