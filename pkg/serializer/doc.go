// Package serializer moves structured data in and out of the tools.
//
// Output supports three formats:
//   - JSON: machine-readable, indented
//   - YAML: human-readable configuration format
//   - Table: flattened FIELD/VALUE listing
//
// and three destinations: stdout, a file, or a Kubernetes ConfigMap
// addressed as cm://namespace/name.
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	err = w.Serialize(ctx, report)
//
// Input is read as raw Sources from local files, http(s) URLs or
// ConfigMaps, leaving decoding to the caller:
//
//	srcs, err := serializer.Read(ctx, "cm://recipes/base")
//	for _, s := range srcs {
//		err = serializer.Decode(serializer.FormatFromPath(s.Name), s.Data, &doc)
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
package serializer
