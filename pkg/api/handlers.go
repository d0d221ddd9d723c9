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

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gtnewhorizons/recipemap/pkg/backend"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/ingredient"
	"github.com/gtnewhorizons/recipemap/pkg/recipe"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
	"github.com/gtnewhorizons/recipemap/pkg/serializer"
	"github.com/gtnewhorizons/recipemap/pkg/server"
)

var findResults = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipemap_api_find_total",
		Help: "Recipe searches served over HTTP by backend and outcome",
	},
	[]string{"backend", "status"},
)

// Handler serves the recipe endpoints over a registry.
type Handler struct {
	reg *registry.Registry
}

// NewHandler returns a Handler over reg.
func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{reg: reg}
}

// BackendInfo describes one registered backend.
type BackendInfo struct {
	Key            string        `json:"key" yaml:"key"`
	Recipes        int           `json:"recipes" yaml:"recipes"`
	MinItemInputs  int           `json:"minItemInputs" yaml:"minItemInputs"`
	MinFluidInputs int           `json:"minFluidInputs" yaml:"minFluidInputs"`
	Stats          backend.Stats `json:"stats" yaml:"stats"`
}

// BackendsResponse is the body of GET /v1/backends.
type BackendsResponse struct {
	PostloadFinished bool          `json:"postloadFinished" yaml:"postloadFinished"`
	Backends         []BackendInfo `json:"backends" yaml:"backends"`
}

// FindRequest is the body of POST /v1/find. Stacks use catalog notation.
type FindRequest struct {
	Backend          string   `json:"backend"`
	Items            []string `json:"items,omitempty"`
	Fluids           []string `json:"fluids,omitempty"`
	Special          string   `json:"special,omitempty"`
	IgnoreStackSizes bool     `json:"ignoreStackSizes,omitempty"`
	NotUnified       bool     `json:"notUnified,omitempty"`
	CachedRecipeID   uint64   `json:"cachedRecipeId,omitempty"`
}

// FindResponse is the body returned by POST /v1/find.
type FindResponse struct {
	Found  bool           `json:"found"`
	Recipe *recipe.Recipe `json:"recipe,omitempty"`
}

// ContainsResponse is the body returned by GET /v1/contains.
type ContainsResponse struct {
	Contains bool `json:"contains"`
}

// HandleBackends handles GET /v1/backends.
func (h *Handler) HandleBackends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	keys := h.reg.Keys()
	resp := BackendsResponse{
		PostloadFinished: h.reg.Lifecycle().PostloadFinished(),
		Backends:         make([]BackendInfo, 0, len(keys)),
	}
	for _, k := range keys {
		b, ok := h.reg.Get(k)
		if !ok {
			continue
		}
		props := b.Properties()
		resp.Backends = append(resp.Backends, BackendInfo{
			Key:            k.String(),
			Recipes:        b.Len(),
			MinItemInputs:  props.MinItemInputs,
			MinFluidInputs: props.MinFluidInputs,
			Stats:          b.Stats(),
		})
	}
	serializer.RespondJSON(w, http.StatusOK, resp)
}

// HandleFind handles POST /v1/find.
func (h *Handler) HandleFind(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req FindRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			server.WriteError(w, r, http.StatusRequestEntityTooLarge, cnserrors.ErrCodeInvalidRequest,
				"request body too large", false, map[string]any{"limit": maxErr.Limit})
			return
		}
		server.WriteErrorFromErr(w, r,
			cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid request body", err), "", nil)
		return
	}

	b, key, err := h.backend(req.Backend)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "", nil)
		return
	}

	q, err := req.Query()
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "", map[string]any{"backend": key.String()})
		return
	}
	if req.CachedRecipeID != 0 {
		if cached, ok := b.Lookup(req.CachedRecipeID); ok {
			q.Cached = cached
		}
	}

	res := b.Find(q)
	findResults.WithLabelValues(key.String(), res.Status.String()).Inc()
	serializer.RespondJSON(w, http.StatusOK, FindResponse{Found: res.Found(), Recipe: res.Recipe})
}

// HandleContains handles GET /v1/contains?backend=&item= or &fluid=.
func (h *Handler) HandleContains(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	q := r.URL.Query()
	b, _, err := h.backend(q.Get("backend"))
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "", nil)
		return
	}

	item, fluid := q.Get("item"), q.Get("fluid")
	if (item == "") == (fluid == "") {
		server.WriteError(w, r, http.StatusBadRequest, cnserrors.ErrCodeInvalidRequest,
			"exactly one of item or fluid is required", false, nil)
		return
	}

	var contains bool
	if item != "" {
		id, perr := ingredient.ParseID(ingredient.KindItem, item)
		if perr != nil {
			server.WriteErrorFromErr(w, r, perr, "", nil)
			return
		}
		contains = b.ContainsItem(id)
	} else {
		id, perr := ingredient.ParseID(ingredient.KindFluid, fluid)
		if perr != nil {
			server.WriteErrorFromErr(w, r, perr, "", nil)
			return
		}
		contains = b.ContainsFluid(id)
	}
	serializer.RespondJSON(w, http.StatusOK, ContainsResponse{Contains: contains})
}

func (h *Handler) backend(raw string) (*backend.Backend, registry.Key, error) {
	if raw == "" {
		return nil, registry.Key{}, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "backend is required")
	}
	key, err := registry.ParseKey(raw)
	if err != nil {
		return nil, key, err
	}
	b, ok := h.reg.Get(key)
	if !ok {
		return nil, key, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
			"backend not registered", map[string]any{"backend": key.String()})
	}
	return b, key, nil
}

// Query parses the request stacks into a backend query.
func (req FindRequest) Query() (backend.Query, error) {
	q := backend.Query{
		IgnoreStackSizes: req.IgnoreStackSizes,
		NotUnified:       req.NotUnified,
	}
	var err error
	if q.Items, err = parseStacks(ingredient.KindItem, req.Items); err != nil {
		return q, err
	}
	if q.Fluids, err = parseStacks(ingredient.KindFluid, req.Fluids); err != nil {
		return q, err
	}
	if req.Special != "" {
		if q.Special, err = ingredient.ParseStack(ingredient.KindItem, req.Special); err != nil {
			return q, err
		}
	}
	return q, nil
}

func parseStacks(kind ingredient.Kind, raw []string) ([]ingredient.Stack, error) {
	out := make([]ingredient.Stack, 0, len(raw))
	for _, s := range raw {
		if s == "" {
			out = append(out, ingredient.Stack{})
			continue
		}
		st, err := ingredient.ParseStack(kind, s)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	server.WriteError(w, r, http.StatusMethodNotAllowed, cnserrors.ErrCodeMethodNotAllowed,
		"method not allowed", false, map[string]any{"method": r.Method})
}
