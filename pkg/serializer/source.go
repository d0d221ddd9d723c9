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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/gtnewhorizons/recipemap/pkg/defaults"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/k8s/client"
)

// Source is raw content read from a file, URL or ConfigMap entry. Name
// carries the extension used for format detection.
type Source struct {
	URI  string
	Name string
	Data []byte
}

// ReadOption is a functional option for Read.
type ReadOption func(*readOptions)

type readOptions struct {
	http *HttpReader
}

// WithHttpReader sets the reader used for http(s) sources.
func WithHttpReader(r *HttpReader) ReadOption {
	return func(o *readOptions) {
		o.http = r
	}
}

// IsRemote reports whether uri is an http(s) URL.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// Read loads uri: a local file, an http(s) URL, or cm://namespace/name.
// A ConfigMap yields one Source per data and binaryData entry, sorted by
// key.
func Read(ctx context.Context, uri string, opts ...ReadOption) ([]Source, error) {
	o := &readOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case strings.HasPrefix(uri, ConfigMapURIScheme):
		namespace, name, err := ParseConfigMapURI(uri)
		if err != nil {
			return nil, err
		}
		return readConfigMap(ctx, uri, namespace, name)

	case IsRemote(uri):
		if o.http == nil {
			o.http = NewHttpReader()
		}
		fetchCtx, cancel := context.WithTimeout(ctx, defaults.CatalogFetchTimeout)
		defer cancel()
		data, err := o.http.ReadWithContext(fetchCtx, uri)
		if err != nil {
			return nil, err
		}
		name := uri
		if u, perr := url.Parse(uri); perr == nil {
			name = path.Base(u.Path)
		}
		return []Source{{URI: uri, Name: name, Data: data}}, nil

	default:
		data, err := os.ReadFile(uri)
		if errors.Is(err, os.ErrNotExist) {
			return nil, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
				"source not found", map[string]any{"path": uri})
		}
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
				"failed to read source", err, map[string]any{"path": uri})
		}
		return []Source{{URI: uri, Name: uri, Data: data}}, nil
	}
}

func readConfigMap(ctx context.Context, uri, namespace, name string) ([]Source, error) {
	k8s, err := client.Get()
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeUnavailable,
			"failed to get kubernetes client", err)
	}

	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := k8s.CoreV1().ConfigMaps(namespace).Get(readCtx, name, metav1.GetOptions{})
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			"failed to get ConfigMap", err, map[string]any{"namespace": namespace, "name": name})
	}

	out := make([]Source, 0, len(cm.Data)+len(cm.BinaryData))
	for key, value := range cm.Data {
		out = append(out, Source{URI: uri + "#" + key, Name: key, Data: []byte(value)})
	}
	for key, value := range cm.BinaryData {
		out = append(out, Source{URI: uri + "#" + key, Name: key, Data: value})
	}
	slices.SortFunc(out, func(a, b Source) int { return strings.Compare(a.Name, b.Name) })

	slog.Debug("read ConfigMap", "namespace", namespace, "name", name, "entries", len(out))
	return out, nil
}

// Decode unmarshals data in format into v. Table format cannot be decoded.
func Decode(format Format, data []byte, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format for deserialization: %s", format)
	}
}

// ParseConfigMapURI splits cm://namespace/name.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"ConfigMap URI must start with "+ConfigMapURIScheme, map[string]any{"uri": uri})
	}
	namespace, name, ok := strings.Cut(strings.TrimPrefix(uri, ConfigMapURIScheme), "/")
	namespace, name = strings.TrimSpace(namespace), strings.TrimSpace(name)
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"ConfigMap URI must have the form "+ConfigMapURIScheme+"namespace/name", map[string]any{"uri": uri})
	}
	return namespace, name, nil
}
