package posserver

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount is a decimal amount sent either as a JSON string ("2.50") or a
// JSON number (2.5). It is kept as text so no precision is lost.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

func (a *Amount) ptr() *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}
