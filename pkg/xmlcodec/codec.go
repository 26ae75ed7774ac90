package xmlcodec

import (
	"bytes"
)

// Marshal serializes v into XML text.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is Marshal with pretty-printed output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.Indent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes one XML document into target, which must be
// a non-nil pointer.
func Unmarshal(data []byte, target any) error {
	return NewDecoder(bytes.NewReader(data)).Decode(target)
}
