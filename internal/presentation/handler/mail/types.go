package mail

import (
	stdjson "encoding/json"
)

// recipients accepts either a single address or a list.
type recipients []string

func (r *recipients) UnmarshalJSON(data []byte) error {
	var single string
	if err := stdjson.Unmarshal(data, &single); err == nil {
		*r = recipients{single}
		return nil
	}

	var many []string
	if err := stdjson.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

type sendRequest struct {
	To      recipients `json:"to" binding:"required,min=1,dive,email"`
	Subject string     `json:"subject" binding:"required,max=250"`
	HTML    string     `json:"html" binding:"required"`
}

type sendResponse struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
