package resource

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decode turns raw bytes into text. It reports false when data is not UTF-8.
// A leading byte order mark is dropped.
func decode(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return "", false
	}
	return string(out), true
}
