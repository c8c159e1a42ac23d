package csvparse

// reader.go cleans raw CSV bytes before tokenizing.
//
// Spreadsheet exports and hand-edited files commonly carry two problems:
//
//   - a UTF-8 byte order mark (0xEF 0xBB 0xBF) from Windows tools, which would
//     otherwise end up glued to the first header name
//   - stray invalid UTF-8 sequences, which are replaced with U+FFFD

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and drops a leading UTF-8 BOM.
type BOMSkippingReader struct {
	r       *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{r: bufio.NewReader(r)}
}

// Read implements io.Reader. The BOM check happens on the first call only.
func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// ReadText reads r to the end, strips a BOM and replaces invalid UTF-8.
func ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(NewBOMSkippingReader(r))
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
}
