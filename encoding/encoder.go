// Package encoding provides the JSON, YAML and TOML codecs used for
// tool requests and results on the command line.
package encoding

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/worldbank-mcp/encoding/json"
	tomlenc "github.com/effective-security/worldbank-mcp/encoding/toml"
	yamlenc "github.com/effective-security/worldbank-mcp/encoding/yaml"
)

// Encoder marshals and unmarshals values in one format.
type Encoder interface {
	Marshal(v any) ([]byte, error)
	Unmarshal([]byte, any) error
}

// Faker is implemented by types that provide their own example instance
type Faker interface {
	Fake() any
}

type Format = string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	_ Encoder = (*jsonenc.Encoder)(nil)
	_ Encoder = (*tomlenc.Encoder)(nil)
	_ Encoder = (*yamlenc.Encoder)(nil)
)

// New returns the encoder for the format, empty format is JSON.
func New(format Format) (Encoder, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return jsonenc.NewEncoder(), nil
	case FormatYAML, "yml":
		return yamlenc.NewEncoder(), nil
	case FormatTOML:
		return tomlenc.NewEncoder(), nil
	default:
		return nil, errors.Errorf("unsupported format: %s", format)
	}
}

// FormatFromPath returns the format by the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case FormatJSON, FormatTOML:
		return ext, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("unsupported file extension: %q", path)
	}
}

// Transcode converts a JSON document to the format.
func Transcode(format Format, js []byte) ([]byte, error) {
	enc, err := New(format)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(format) == FormatJSON || format == "" {
		return enc.Marshal(json.RawMessage(js))
	}

	var doc any
	if err = json.Unmarshal(js, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode JSON")
	}
	return enc.Marshal(doc)
}

// Example returns an example instance of the type of v, in the format.
// Struct fields are filled by their `fake` tags, YAML carries field descriptions as comments.
func Example(format Format, v any) ([]byte, error) {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	tValue := reflect.New(t)
	instance := tValue.Interface()
	if f, ok := tValue.Elem().Interface().(Faker); ok {
		instance = f.Fake()
	} else if err := gofakeit.Struct(instance); err != nil {
		return nil, errors.Wrap(err, "failed to fake")
	}

	if strings.ToLower(format) == FormatYAML {
		return yamlenc.NewEncoder().WithCommentStyle(yamlenc.LineComment).Marshal(instance)
	}
	enc, err := New(format)
	if err != nil {
		return nil, err
	}
	return enc.Marshal(instance)
}
