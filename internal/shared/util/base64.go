package util

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrEmptyPayload = errors.New("empty payload")

// DecodeBase64Payload decodes standard base64, optionally wrapped in a data
// URL, and returns the MIME type the data URL declares (empty otherwise).
func DecodeBase64Payload(raw string) ([]byte, string, error) {
	raw = strings.TrimSpace(raw)
	mimeType := ""
	if strings.HasPrefix(raw, "data:") {
		header, payload, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, "", errors.New("malformed data url")
		}
		mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		raw = payload
	}
	if raw == "" {
		return nil, "", ErrEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, "", err
		}
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyPayload
	}
	return data, mimeType, nil
}
