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

// Package config provides the recipe duration override file.
//
// The file maps a category (one per backend) to recipe keys and their
// duration in ticks:
//
//	macerator:
//	  gregtech:ore.iron: 400
//	  gregtech:ore.gold@3: 0
//
// A duration of zero or less disables the recipe. Lookups of keys the file
// does not contain record the default, so saving after a full load writes a
// complete file that can be edited and fed back.
//
// RecipeFile implements backend.DurationSource and is safe for concurrent
// use.
package config
