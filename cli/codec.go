package cli

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// gobCodec lets this package's plain Go structs ride over grpc without a
// protoc step: grpc.Codec only requires Marshal/Unmarshal, and gob
// already round-trips exported struct fields with no schema file.
type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return codecName }

const codecName = "gob"

func init() {
	encoding.RegisterCodec(gobCodec{})
}
