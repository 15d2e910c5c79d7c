// Package attachment stores evidence files for applications. The bytes live
// in a BlobStore; rows in the attachments table point at them.
package attachment

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/compozy/defaultdesk/engine/core"
)

// BlobRef locates a stored object.
type BlobRef struct {
	Key string
	URL string
}

type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (BlobRef, error)
	// URL returns a download link valid for at least expiry. Stores that serve
	// objects directly return their stable public URL.
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectKey is applications/<application id>/<attachment id>-<filename>. The
// attachment id keeps repeated uploads of one filename apart.
func ObjectKey(applicationID, attachmentID core.ID, filename string) string {
	return fmt.Sprintf("applications/%s/%s-%s", applicationID, attachmentID, filename)
}

const maxFilenameLen = 200

// SanitizeFilename keeps the base name and replaces anything outside a
// conservative character set. It returns "" when nothing usable is left.
func SanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if len(out) > maxFilenameLen {
		out = out[len(out)-maxFilenameLen:]
	}
	return out
}
