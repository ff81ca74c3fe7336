package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// maxRequestBody bounds JSON request bodies (1MB).
const maxRequestBody = 1 << 20

// ParseJSON decodes a JSON request body into dst, rejecting unknown trailing
// content and oversized bodies.
func ParseJSON(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// ParseJSONOrError decodes a JSON request body into dst, writing a 400
// response and returning false on failure.
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := ParseJSON(r, dst); err != nil {
		WriteBadRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// ParseQueryInt reads an integer query parameter with a default.
func ParseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// ParseQueryString reads a string query parameter with a default.
func ParseQueryString(r *http.Request, name, def string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return def
}
