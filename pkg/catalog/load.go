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
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gtnewhorizons/recipemap/pkg/defaults"
	cnserrors "github.com/gtnewhorizons/recipemap/pkg/errors"
	"github.com/gtnewhorizons/recipemap/pkg/serializer"
)

var catalogExtensions = []string{".yaml", ".yml", ".json"}

// Loader reads catalogs from files, directories, URLs and ConfigMaps.
type Loader struct {
	concurrency int
	maxBytes    int64
	readOpts    []serializer.ReadOption
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds the number of sources read at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithMaxBytes caps the decompressed size of a single source.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithHttpReader sets the reader used for http(s) sources.
func WithHttpReader(r *serializer.HttpReader) Option {
	return func(l *Loader) {
		l.readOpts = append(l.readOpts, serializer.WithHttpReader(r))
	}
}

// NewLoader returns a Loader with engine defaults.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		concurrency: defaults.CatalogLoadConcurrency,
		maxBytes:    defaults.CatalogMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source and merges the catalogs in the order given.
// Directories contribute their catalog files in lexical order. Duplicate
// backend keys across all sources are a conflict.
func (l *Loader) Load(ctx context.Context, sources ...string) (*Catalog, error) {
	if len(sources) == 0 {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "at least one catalog source is required")
	}

	uris, err := expand(sources)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.CatalogLoadTimeout)
	defer cancel()

	results := make([][]*Catalog, len(uris))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, uri := range uris {
		g.Go(func() error {
			cats, err := l.loadURI(gctx, uri)
			if err != nil {
				return err
			}
			results[i] = cats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Catalog{}
	for _, cats := range results {
		for _, c := range cats {
			out.merge(c)
		}
	}
	if err := checkDuplicateBackends(out); err != nil {
		return nil, err
	}

	slog.Debug("catalogs loaded",
		"sources", len(uris),
		"backends", len(out.Backends),
		"recipes", len(out.Recipes))
	return out, nil
}

// Load reads sources with a default Loader.
func Load(ctx context.Context, sources ...string) (*Catalog, error) {
	return NewLoader().Load(ctx, sources...)
}

func (l *Loader) loadURI(ctx context.Context, uri string) ([]*Catalog, error) {
	srcs, err := serializer.Read(ctx, uri, l.readOpts...)
	if err != nil {
		return nil, err
	}
	var out []*Catalog
	for _, src := range srcs {
		cats, err := l.Parse(src.Name, src.Data)
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.CodeOf(err),
				"failed to load catalog", err, map[string]any{"source": src.URI})
		}
		out = append(out, cats...)
	}
	return out, nil
}

// Parse decodes, validates and converts the catalogs held in data. name
// selects the format and decompression by extension; anything that is not
// .json is read as YAML, which may hold several documents.
func (l *Loader) Parse(name string, data []byte) ([]*Catalog, error) {
	if strings.HasSuffix(strings.ToLower(name), serializer.CompressedSuffix) {
		var err error
		if data, err = decompress(data, l.maxBytes); err != nil {
			return nil, err
		}
	}
	if int64(len(data)) > l.maxBytes {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"catalog exceeds size limit", map[string]any{"limit": l.maxBytes})
	}

	docs, err := decodeDocuments(formatOf(name), data)
	if err != nil {
		return nil, err
	}

	out := make([]*Catalog, 0, len(docs))
	for _, doc := range docs {
		c, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func formatOf(name string) serializer.Format {
	lower := strings.TrimSuffix(strings.ToLower(name), serializer.CompressedSuffix)
	if strings.HasSuffix(lower, ".json") {
		return serializer.FormatJSON
	}
	return serializer.FormatYAML
}

func decompress(data []byte, limit int64) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(uint64(limit)))
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to open zstd stream", err)
	}
	defer dec.Close()

	out, err := io.ReadAll(io.LimitReader(dec, limit+1))
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to decompress catalog", err)
	}
	if int64(len(out)) > limit {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"decompressed catalog exceeds size limit", map[string]any{"limit": limit})
	}
	return out, nil
}

func decodeDocuments(format serializer.Format, data []byte) ([]any, error) {
	if format == serializer.FormatJSON {
		var doc any
		if err := serializer.Decode(format, data, &doc); err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid catalog", err)
		}
		return []any{doc}, nil
	}

	var docs []any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid catalog", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
}

func fromDocument(doc any) (*Catalog, error) {
	norm, err := Normalize(doc)
	if err != nil {
		return nil, err
	}
	if err := Validate(norm); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(norm)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode catalog", err)
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to decode catalog", err)
	}
	return &c, nil
}

// expand replaces local directories with the catalog files beneath them.
func expand(sources []string) ([]string, error) {
	var out []string
	for _, src := range sources {
		if serializer.IsRemote(src) || strings.HasPrefix(src, serializer.ConfigMapURIScheme) {
			out = append(out, src)
			continue
		}
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			out = append(out, src)
			continue
		}
		err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isCatalogFile(p) {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
				"failed to walk catalog directory", err, map[string]any{"path": src})
		}
	}
	return out, nil
}

func isCatalogFile(p string) bool {
	lower := strings.TrimSuffix(strings.ToLower(p), serializer.CompressedSuffix)
	return slices.Contains(catalogExtensions, filepath.Ext(lower))
}

func checkDuplicateBackends(c *Catalog) error {
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if _, dup := seen[b.Key]; dup {
			return cnserrors.NewWithContext(cnserrors.ErrCodeConflict,
				"backend declared more than once", map[string]any{"key": b.Key})
		}
		seen[b.Key] = struct{}{}
	}
	return nil
}
