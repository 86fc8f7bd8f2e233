package json

import (
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/effective-security/worldbank-mcp/utils"
)

// Encoder writes indented JSON and reads lenient JSON,
// such as documents wrapped in code fences or with trailing commas.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "\t")
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := utils.CleanJSON(bs)
	return ljson.Unmarshal(data, ret)
}
