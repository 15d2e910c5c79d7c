package attachment

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// DetectContentType sniffs data and only trusts the client's declared type
// when sniffing is inconclusive.
func DetectContentType(data []byte, declared string) string {
	if len(data) == 0 {
		return octetStream
	}
	detected := mimetype.Detect(data).String()
	if detected != octetStream {
		return detected
	}
	if mt, _, err := mime.ParseMediaType(strings.TrimSpace(declared)); err == nil && mt != "" {
		return mt
	}
	return octetStream
}
