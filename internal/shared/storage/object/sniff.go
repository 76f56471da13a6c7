package object

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// Sniff reads up to 512 bytes to detect the content type and returns a
// reader that replays them ahead of the remaining body. Office documents
// sniff as zip archives, so the file extension wins for those.
func Sniff(r io.Reader, fileName string) (io.Reader, string, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", err
	}

	mimeType := http.DetectContentType(head[:n])
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".docx":
		mimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		mimeType = "application/pdf"
	}

	replay := make([]byte, n)
	copy(replay, head[:n])
	return io.MultiReader(bytes.NewReader(replay), r), mimeType, nil
}

// CountingReader counts bytes read through it.
type CountingReader struct {
	R io.Reader
	N int64
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}
