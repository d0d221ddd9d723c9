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

// Package header provides the Kubernetes-style header shared by recipemap
// documents.
//
// Catalogs and catalog reports embed Header inline, so their YAML and JSON
// forms start with the same fields:
//
//	apiVersion: recipemap.gtnewhorizons.io/v1
//	kind: RecipeCatalog
//	metadata:
//	  owner: gregtech
//
// Documents produced by the tooling are stamped with Init, which records an
// RFC3339 timestamp and the tool version under metadata.
package header
