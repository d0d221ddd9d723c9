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

import "time"

// Catalog loading.
const (
	// CatalogLoadTimeout bounds loading every source of one invocation.
	CatalogLoadTimeout = 2 * time.Minute

	// CatalogFetchTimeout is the timeout for a single remote catalog source.
	CatalogFetchTimeout = 30 * time.Second
)

// API handlers.
const (
	// FindHandlerTimeout bounds one POST /v1/find.
	FindHandlerTimeout = 10 * time.Second
)

// HTTP server.
const (
	// ServerReadTimeout bounds reading a whole request.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout bounds reading request headers.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout bounds writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is how long a keep-alive connection may sit idle.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout bounds draining in-flight requests on shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Remote catalog fetches.
const (
	// HTTPClientTimeout bounds a whole fetch including the body.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout bounds dialing.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout bounds the TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout bounds waiting for response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout evicts pooled connections.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the TCP keep-alive period.
	HTTPKeepAlive = 30 * time.Second
)

// Kubernetes ConfigMap sources and sinks.
const (
	// ConfigMapReadTimeout bounds reading a cm:// catalog.
	ConfigMapReadTimeout = 15 * time.Second

	// ConfigMapWriteTimeout bounds writing a cm:// report.
	ConfigMapWriteTimeout = 30 * time.Second
)

// SQLite export.
const (
	// StoreBusyTimeout is how long SQLite waits on a locked database.
	StoreBusyTimeout = 5 * time.Second
)
