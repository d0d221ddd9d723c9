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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gtnewhorizons/recipemap/pkg/defaults"
	"github.com/gtnewhorizons/recipemap/pkg/registry"
	"github.com/gtnewhorizons/recipemap/pkg/server"
)

const (
	name           = "recipemapd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/gtnewhorizons/recipemap/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Routes returns the recipe API handlers keyed by path.
func Routes(reg *registry.Registry) map[string]http.HandlerFunc {
	h := NewHandler(reg)
	find := http.TimeoutHandler(http.HandlerFunc(h.HandleFind), defaults.FindHandlerTimeout,
		`{"code":"TIMEOUT","message":"search timed out"}`)
	return map[string]http.HandlerFunc{
		"/v1/backends": h.HandleBackends,
		"/v1/find":     find.ServeHTTP,
		"/v1/contains": h.HandleContains,
	}
}

// NewServer builds the API server over reg. Caller options are applied
// first so a WithConfig cannot drop the recipe routes.
func NewServer(reg *registry.Registry, opts ...server.Option) *server.Server {
	all := append(slices.Clone(opts),
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(Routes(reg)),
		server.WithReadyCheck(func() error {
			if !reg.Lifecycle().PostloadFinished() {
				return errors.New("recipe registration in progress")
			}
			return nil
		}),
	)
	return server.New(all...)
}

// Serve runs the API server over reg until ctx is canceled or the process
// is signaled.
func Serve(ctx context.Context, reg *registry.Registry, opts ...server.Option) error {
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"backends", reg.Count(),
	)

	s := NewServer(reg, opts...)
	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// Version returns the build version.
func Version() string {
	return version
}
