package textextract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTXT(t *testing.T) {
	data := []byte("  Invoice INV-7 from Acme Corp Inc.\n")
	text, err := Extract(bytes.NewReader(data), int64(len(data)), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-7 from Acme Corp Inc.", text)
}

func TestExtractDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<w:document><w:p><w:t>Amount:</w:t><w:t>120.00</w:t></w:p></w:document>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := Extract(bytes.NewReader(buf.Bytes()), int64(buf.Len()), ".docx")
	require.NoError(t, err)
	assert.Equal(t, "Amount: 120.00", text)
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Extract(bytes.NewReader(nil), 0, "image/png")
	require.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("application/pdf"))
	assert.True(t, Supported(".txt"))
	assert.False(t, Supported("image/png"))
}
