package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Scalar is a loosely typed JSON value taken from an upload payload.
// Strings keep their content, numbers keep their literal text, null and
// missing keys are absent. Objects, arrays and booleans are present but
// unusable, so validation can reject a single entry instead of the whole
// request body.
type Scalar struct {
	value   string
	present bool
	usable  bool
}

// Text builds a present string Scalar.
func Text(s string) Scalar {
	return Scalar{value: s, present: true, usable: true}
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = Scalar{}
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Text(str)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*s = Text(string(data))
	default:
		*s = Scalar{value: string(data), present: true}
	}
	return nil
}

// Present reports whether the key was sent with a non-null value.
func (s Scalar) Present() bool {
	return s.present
}

// Usable reports whether the value is a string or a number.
func (s Scalar) Usable() bool {
	return s.usable
}

// String returns the trimmed textual value.
func (s Scalar) String() string {
	return strings.TrimSpace(s.value)
}

// Blank reports whether the value is absent or only whitespace.
func (s Scalar) Blank() bool {
	return !s.present || (s.usable && s.String() == "")
}
