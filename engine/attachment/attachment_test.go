package attachment

import (
	"testing"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	t.Run("Should strip directories and unsafe characters", func(t *testing.T) {
		assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
		assert.Equal(t, "report_2024.pdf", SanitizeFilename(`C:\docs\report 2024.pdf`))
		assert.Equal(t, "env", SanitizeFilename(".env"))
		assert.Equal(t, "", SanitizeFilename(".."))
	})
}

func TestObjectKey(t *testing.T) {
	t.Run("Should nest objects under the application", func(t *testing.T) {
		app, att := core.ID("app1"), core.ID("att1")
		assert.Equal(t, "applications/app1/att1-a.pdf", ObjectKey(app, att, "a.pdf"))
	})
}

func TestDetectContentType(t *testing.T) {
	t.Run("Should prefer sniffed types over declared ones", func(t *testing.T) {
		pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
		assert.Equal(t, "application/pdf", DetectContentType(pdf, "image/png"))
	})

	t.Run("Should fall back to the declared type when sniffing is inconclusive", func(t *testing.T) {
		blob := []byte{0x00, 0x01, 0x02, 0x03}
		assert.Equal(t, "application/x-custom", DetectContentType(blob, "application/x-custom; v=1"))
		assert.Equal(t, "application/octet-stream", DetectContentType(blob, "not a type"))
	})
}
