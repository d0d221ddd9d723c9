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

// Package server provides the HTTP server shared by the recipemap daemon.
//
// A Server serves system endpoints directly and wraps every registered API
// handler in a middleware chain:
//
//   - metrics: request count, latency and in-flight gauge (Prometheus)
//   - version: API version negotiation via the Accept header, echoed in
//     X-API-Version
//   - request ID: X-Request-Id is accepted when it is a UUID, generated
//     otherwise
//   - panic recovery: panics become 500 responses
//   - rate limit: token bucket (golang.org/x/time/rate), 429 with
//     Retry-After when exhausted
//   - body limit: request bodies are capped at MaxRequestBodyBytes
//   - logging: debug-level request start and completion
//
// # Endpoints
//
//	GET /          server name, version, readiness and routes
//	GET /health    liveness
//	GET /ready     readiness, 503 until Run starts serving
//	GET /metrics   Prometheus exposition
//
// # Usage
//
//	s := server.New(
//	    server.WithName("recipemapd"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/find": h.HandleFind,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// Run blocks until ctx is canceled or SIGINT/SIGTERM is received and then
// drains connections within ShutdownTimeout.
//
// # Errors
//
// Handlers report failures with WriteError or WriteErrorFromErr. Both emit
// an ErrorResponse carrying the request ID; WriteErrorFromErr maps the
// structured error code from pkg/errors to the HTTP status.
//
// # Configuration
//
//	PORT                      listen port (default 8080)
//	SHUTDOWN_TIMEOUT_SECONDS  graceful shutdown window (default 30)
package server
