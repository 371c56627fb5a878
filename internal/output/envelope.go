package output

import (
	"encoding/json"
	"io"
)

// envelope is the single JSON document a command writes to stdout in JSON
// mode. Successful commands fill Data and Message, failed ones Error, Code
// and Details.
type envelope struct {
	OK      bool      `json:"ok"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
	Details []string  `json:"details,omitempty"`
}

func encode(w io.Writer, env envelope) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(env)
}
