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

package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
)

const schemaURL = "https://recipemap.gtnewhorizons.io/schemas/catalog.schema.json"

//go:embed schema/catalog.schema.json
var schemaJSON []byte

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Schema returns the raw catalog JSON schema.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// Validate checks a decoded document against the catalog schema. The
// document must be made of JSON values; use Normalize on anything decoded
// from YAML first.
func Validate(doc any) error {
	s, err := compiled()
	if err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to compile catalog schema", err)
	}
	if err := s.Validate(doc); err != nil {
		return cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "catalog failed schema validation", err)
	}
	return nil
}

// Normalize round-trips v through JSON so it holds only the value types the
// schema validator understands.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "catalog is not representable as JSON", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to normalize catalog", err)
	}
	return out, nil
}
