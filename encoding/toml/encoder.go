package toml

import (
	"bytes"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/utils"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Marshal returns TOML document, v must be a struct or a map.
func (e *Encoder) Marshal(v any) ([]byte, error) {
	val := reflect.ValueOf(v)
	for val.Kind() == reflect.Ptr && !val.IsNil() {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct && val.Kind() != reflect.Map {
		return nil, errors.New("TOML requires an object at the top level")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errors.Wrap(err, "failed to encode TOML")
	}
	return buf.Bytes(), nil
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := utils.BytesTrimBackticks(bs)
	return toml.Unmarshal(data, ret)
}
