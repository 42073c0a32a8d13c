package pkg

import (
	"bytes"
	"encoding/json"
)

// FlexibleBool decodes from a JSON boolean or the strings "true" / "false".
// Anything else decodes to false.
type FlexibleBool bool

func (b *FlexibleBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", `"true"`:
		*b = true
		return nil
	case "false", `"false"`, "null":
		*b = false
		return nil
	}

	// any other valid JSON value counts as false
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = false
	return nil
}

func (b FlexibleBool) Bool() bool {
	return bool(b)
}
