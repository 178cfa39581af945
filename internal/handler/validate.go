package handler

import (
	"encoding/json"
	"html"
	"io"
	"net/http"

	"taskboard/internal/apperr"
)

// maxBodySize bounds request bodies; every payload here is a handful of
// short fields.
const maxBodySize = 64 << 10

// decodeBody decodes a JSON request body into dst after checking every
// supplied string value — known field or not — against its HTML-escaped
// form. A field that would change under escaping is rejected outright
// rather than silently re-escaped.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return apperr.Validation("The request couldn't be processed.")
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return apperr.Validation("Invalid JSON.")
	}
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if html.EscapeString(s) != s {
			return apperr.Validation("The request couldn't be processed.")
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("Invalid JSON.")
	}
	return nil
}
