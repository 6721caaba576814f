package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// envelope is the uniform response body. Notices are informational
// outcomes (duplicate adds, soft refusals) that are not errors.
type envelope struct {
	OK     bool        `json:"ok"`
	Notice string      `json:"notice,omitempty"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{OK: true, Data: data})
}

func respondOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{OK: true})
}

func respondNotice(w http.ResponseWriter, notice string) {
	writeJSON(w, http.StatusOK, envelope{OK: true, Notice: notice})
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, envelope{OK: false, Error: err.Error()})
}

func respondErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{OK: false, Error: msg})
}

var errBadJSON = errors.New("request body is not valid JSON")

// decodeJSON decodes the request body into dst, rejecting unknown fields
// so typos surface instead of silently dropping data.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errBadJSON
	}
	return nil
}
