// Package codec serializes the full note collection into a single blob.
package codec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/pocket/pkg/core"
)

// Codec is a core.Codec with a name and the file extension its blobs use.
type Codec interface {
	core.Codec
	Name() string
	Ext() string
}

// ByName returns the codec registered under name ("json", "yaml" or "yml").
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

// --- JSON ---

// JSON stores the collection as a JSON array of notes.
type JSON struct{}

func (JSON) Name() string { return "json" }
func (JSON) Ext() string  { return ".json" }

func (JSON) Encode(notes []core.Note) ([]byte, error) {
	if notes == nil {
		notes = []core.Note{}
	}
	return json.MarshalIndent(notes, "", "  ")
}

func (JSON) Decode(blob []byte) ([]core.Note, error) {
	var notes []core.Note
	if err := json.Unmarshal(blob, &notes); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return notes, nil
}

// --- YAML ---

// YAML stores the collection as a YAML sequence of notes.
type YAML struct{}

func (YAML) Name() string { return "yaml" }
func (YAML) Ext() string  { return ".yaml" }

func (YAML) Encode(notes []core.Note) ([]byte, error) {
	if notes == nil {
		notes = []core.Note{}
	}
	return yaml.Marshal(notes)
}

func (YAML) Decode(blob []byte) ([]core.Note, error) {
	var notes []core.Note
	if err := yaml.Unmarshal(blob, &notes); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return notes, nil
}
