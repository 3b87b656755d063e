package seeder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// openSource reads the seed file and returns it as UTF-8
func openSource(path string) (io.Reader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return decodeInput(raw), nil
}

// decodeInput strips a UTF-8 byte order mark and, when the content is not valid UTF-8,
// decodes it from Windows-874, the code page spreadsheet tools use for Thai exports.
func decodeInput(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		// BOMOverride drops a leading UTF-8 BOM and otherwise passes bytes through
		return transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(transform.Nop))
	}
	return charmap.Windows874.NewDecoder().Reader(bytes.NewReader(raw))
}
