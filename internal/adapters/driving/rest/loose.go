package rest

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// looseString accepts a JSON string, number, boolean or null and keeps its
// textual form. Clients send numeric parameters either way.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*s = looseString(n.String())
			return nil
		}
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*s = looseString(strconv.FormatBool(b))
	}
	return nil
}
