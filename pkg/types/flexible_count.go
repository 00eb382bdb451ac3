package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexibleCount decodes a counter that legacy clients send as either a JSON
// number or a numeric string ("3"). The canonical representation is an
// integer; anything unparsable decodes to zero rather than failing the
// surrounding payload.
type FlexibleCount int

// UnmarshalJSON accepts numbers, numeric strings, and null.
func (f *FlexibleCount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = 0
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexibleCount(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		// Tolerate floats like 2.0 from loosely typed clients.
		var fl float64
		if err := json.Unmarshal(trimmed, &fl); err != nil {
			*f = 0
			return nil
		}
		n = int(fl)
	}
	*f = FlexibleCount(n)
	return nil
}

// MarshalJSON always emits the canonical integer form.
func (f FlexibleCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int returns the plain integer value.
func (f FlexibleCount) Int() int {
	return int(f)
}
