package client

import (
	"mime"
	"strings"
)

const ContentTypeApplicationJSON = "application/json"

// IsJSONContentType returns true if the media type starts with "application/json".
// Parameters, for example "; charset=utf-8", are ignored.
func IsJSONContentType(contentType string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), ContentTypeApplicationJSON)
}
