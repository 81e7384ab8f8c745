package models

import (
	"bytes"
	"encoding/json"
)

// RawString accepts a JSON string or number and keeps its text verbatim.
type RawString string

func (r *RawString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RawString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = RawString(n.String())
	return nil
}

// UpdateParamsRequest is a partial edit. Nil fields are left untouched.
type UpdateParamsRequest struct {
	Symbol    *string    `json:"symbol"`
	StartDate *string    `json:"startDate"`
	EndDate   *string    `json:"endDate"`
	Threshold *RawString `json:"threshold"`
}

// Empty reports whether no field is set.
func (r *UpdateParamsRequest) Empty() bool {
	return r.Symbol == nil && r.StartDate == nil && r.EndDate == nil && r.Threshold == nil
}

// HistoryRequest lists recent outcomes.
type HistoryRequest struct {
	N int `json:"n" query:"n" default:"10" validate:"gte=1,lte=100"`
}

// StateResponse is the state endpoint payload.
type StateResponse struct {
	State      State      `json:"state"`
	Visibility Visibility `json:"visibility"`
}
