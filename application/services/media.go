package services

import (
	"encoding/base64"
	"strings"
	"time"

	"chirp/pkg/errors"
)

const timeLayout = time.RFC3339Nano

// decodeImage parses a client-supplied image payload. Accepts a data URI
// ("data:image/png;base64,....") or bare base64, which is assumed JPEG.
func decodeImage(payload string) ([]byte, string, error) {
	contentType := "image/jpeg"
	raw := payload

	if strings.HasPrefix(payload, "data:") {
		sep := strings.Index(payload, ",")
		if sep < 0 {
			return nil, "", errors.NewValidationError("malformed image data")
		}
		header := payload[len("data:"):sep]
		raw = payload[sep+1:]
		if semi := strings.Index(header, ";"); semi > 0 {
			contentType = header[:semi]
		} else if header != "" {
			contentType = header
		}
		if !strings.HasPrefix(contentType, "image/") {
			return nil, "", errors.NewValidationError("image payload must be an image")
		}
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", errors.NewValidationError("malformed image data")
	}
	if len(data) == 0 {
		return nil, "", errors.NewValidationError("image payload is empty")
	}
	return data, contentType, nil
}
