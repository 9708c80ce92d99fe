package submit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the endpoint's answer to a submission.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON accepts id and message as strings, numbers or null.
func (r *Result) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success bool       `json:"success"`
		ID      resultText `json:"id"`
		Message resultText `json:"message"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Result{Success: raw.Success, ID: string(raw.ID), Message: string(raw.Message)}
	return nil
}

type resultText string

func (t *resultText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = resultText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*t = resultText(n.String())
	return nil
}

func decodeResult(body []byte) (*Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
