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

package defaults

// Server defaults.
const (
	// ServerPort is the listen port when PORT is unset.
	ServerPort = 8080

	// ServerRateLimit is the sustained request rate per second.
	ServerRateLimit = 100

	// ServerRateLimitBurst is the request burst size.
	ServerRateLimitBurst = 200

	// MaxRequestBodyBytes caps JSON request bodies.
	MaxRequestBodyBytes = 1 << 20
)

// Catalog defaults.
const (
	// CatalogAPIVersion is the apiVersion every catalog document declares.
	CatalogAPIVersion = "recipemap.gtnewhorizons.io/v1"

	// CatalogKind is the kind every catalog document declares.
	CatalogKind = "RecipeCatalog"

	// CatalogMaxBytes caps the decoded size of a single catalog source.
	CatalogMaxBytes = 64 << 20

	// CatalogLoadConcurrency bounds parallel source loads.
	CatalogLoadConcurrency = 8
)

// RecipeConfigFile is the default duration override file name.
const RecipeConfigFile = "recipes.yaml"
