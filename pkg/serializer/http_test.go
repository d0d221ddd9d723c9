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

package serializer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog.yaml":
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte("kind: RecipeCatalog\n"))
		case "/big.yaml":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		case "/slow.yaml":
			time.Sleep(200 * time.Millisecond)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHttpReader(t *testing.T) {
	srv := newTestServer(t)
	r := NewHttpReader(WithClient(srv.Client()), WithUserAgent("test-agent"))
	ctx := context.Background()

	data, err := r.ReadWithContext(ctx, srv.URL+"/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, "kind: RecipeCatalog\n", string(data))

	_, err = r.ReadWithContext(ctx, srv.URL+"/missing")
	assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))

	_, err = r.ReadWithContext(ctx, srv.URL+"/broken")
	assert.Equal(t, cnserrors.ErrCodeUnavailable, cnserrors.CodeOf(err))

	_, err = r.ReadWithContext(ctx, "")
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
}

func TestHttpReaderLimits(t *testing.T) {
	srv := newTestServer(t)

	small := NewHttpReader(WithClient(srv.Client()), WithMaxBytes(16))
	_, err := small.ReadWithContext(context.Background(), srv.URL+"/big.yaml")
	assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))

	hasty := NewHttpReader(WithClient(srv.Client()), WithTotalTimeout(20*time.Millisecond))
	_, err = hasty.ReadWithContext(context.Background(), srv.URL+"/slow.yaml")
	assert.Error(t, err)
}

func TestReadRemote(t *testing.T) {
	srv := newTestServer(t)
	srcs, err := Read(context.Background(), srv.URL+"/catalog.yaml?rev=2",
		WithHttpReader(NewHttpReader(WithClient(srv.Client()), WithUserAgent("test-agent"))))
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, "catalog.yaml", srcs[0].Name)
	assert.Equal(t, FormatYAML, FormatFromPath(srcs[0].Name))
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]bool{"found": true})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"found":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
