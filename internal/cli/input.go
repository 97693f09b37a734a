package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
)

// document is a history read from disk. A file holds either a compiled
// historical object or a bare array of entries.
type document struct {
	Entries []history.Entry[string]

	// State is the state the file claims. Nil for a bare entry array.
	State ir.IRObject
}

// readDocument reads a .json, .yaml or .yml history file.
func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := parseDocument(filepath.Ext(path), data)
	if err != nil {
		return document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func parseDocument(ext string, data []byte) (document, error) {
	switch ext {
	case ".json":
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return document{}, fmt.Errorf("yaml: %w", err)
		}
		converted, err := json.Marshal(v)
		if err != nil {
			return document{}, fmt.Errorf("yaml: %w", err)
		}
		data = converted
	default:
		return document{}, fmt.Errorf("unsupported file extension %q", ext)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []history.Entry[string]
		if err := json.Unmarshal(data, &entries); err != nil {
			return document{}, err
		}
		return document{Entries: entries}, nil
	}

	var h history.Historical[string]
	if err := json.Unmarshal(data, &h); err != nil {
		return document{}, err
	}
	return document{Entries: h.History, State: h.State}, nil
}

// scribe rebuilds a validated Scribe from the document's entries.
func (d document) scribe(opts ...history.Option) (*history.Scribe[string], error) {
	return history.FromEntries(d.Entries, opts...)
}

// encodeHistorical renders h for a file with the given extension: YAML for
// .yaml and .yml, indented JSON otherwise.
func encodeHistorical(ext string, h history.Historical[string]) ([]byte, error) {
	if ext == ".yaml" || ext == ".yml" {
		doc, err := h.ToIR()
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(plain(doc))
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeHistorical writes h to path in the format its extension selects.
func writeHistorical(path string, h history.Historical[string]) error {
	data, err := encodeHistorical(filepath.Ext(path), h)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// plain converts an IR value into the Go values yaml.v3 encodes natively.
func plain(v ir.IRValue) any {
	switch val := v.(type) {
	case ir.IRString:
		return string(val)
	case ir.IRInt:
		return int64(val)
	case ir.IRBool:
		return bool(val)
	case ir.IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = plain(elem)
		}
		return out
	case ir.IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = plain(elem)
		}
		return out
	default:
		return nil
	}
}
