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

// Package api exposes a recipe registry over HTTP.
//
// It is a thin layer over pkg/server that binds the recipe endpoints:
//
//	GET  /v1/backends                    registered backends with recipe counts
//	POST /v1/find                        search one backend
//	GET  /v1/contains?backend=&item=     ingredient membership (or &fluid=)
//
// A find request names the backend and presents stacks in catalog notation:
//
//	{"backend": "gt@compressor", "items": ["gregtech:dust.iron*2"]}
//
// and receives {"found": true, "recipe": {...}}. Passing the id of a
// previously matched recipe as cachedRecipeId lets the backend return it
// without scanning when it still matches.
//
// Errors use the pkg/server ErrorResponse shape; an unknown backend is 404
// and malformed stacks are 400.
package api
