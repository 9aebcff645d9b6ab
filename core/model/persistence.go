package model

import (
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// SaveModel writes m to filename using encoding/gob.
//
// Example:
//
//	if err := model.SaveModel(reg, "baseline.gob"); err != nil {
//	    return err
//	}
func SaveModel(m interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return dvErrors.Wrap(err, "failed to create file")
	}
	defer func() { _ = file.Close() }()

	return SaveModelToWriter(m, file)
}

// SaveModelToWriter gob-encodes m to w.
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return dvErrors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModel decodes a gob file written by SaveModel into m (a pointer).
func LoadModel(m interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return dvErrors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	return LoadModelFromReader(m, file)
}

// LoadModelFromReader gob-decodes from r into m.
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return dvErrors.Wrap(err, "failed to decode model")
	}
	return nil
}

// SaveJSON writes v as indented JSON, creating parent directories.
// Used for artifacts that must stay readable outside Go, such as encoding maps.
func SaveJSON(v interface{}, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return dvErrors.Wrap(err, "failed to create directory")
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return dvErrors.Wrap(err, "failed to create file")
	}
	defer func() { _ = file.Close() }()

	return SaveJSONToWriter(v, file)
}

// SaveJSONToWriter writes v as indented JSON to w.
func SaveJSONToWriter(v interface{}, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return dvErrors.Wrap(err, "failed to encode json")
	}
	return nil
}

// LoadJSON reads filename into v.
func LoadJSON(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return dvErrors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()

	return LoadJSONFromReader(v, file)
}

// LoadJSONFromReader decodes JSON from r into v.
func LoadJSONFromReader(v interface{}, r io.Reader) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return dvErrors.Wrap(err, "failed to decode json")
	}
	return nil
}
