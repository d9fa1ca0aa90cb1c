package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MaxBodyBytes bounds request and response bodies read into memory.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes a JSON body into target with a size bound and strict
// field checking.
func DecodeJSON(r io.Reader, target interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// ReadAllWithLimit reads up to limit bytes and reports whether the stream was
// truncated.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

// ErrorSnippet renders an upstream error body as a short log-safe string.
func ErrorSnippet(r io.Reader) string {
	body, truncated, err := ReadAllWithLimit(r, 4<<10)
	if err != nil {
		return ""
	}
	msg := strings.TrimSpace(string(body))
	if truncated {
		msg += "...(truncated)"
	}
	return msg
}
