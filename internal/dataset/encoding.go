package dataset

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the text encoding an upload was decoded with.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// Decode converts raw upload bytes to UTF-8 text.
//
// Bytes that are valid UTF-8 are returned with any leading byte order mark
// removed. Anything else is decoded as ISO-8859-1, which maps every byte to a
// code point and therefore never fails on real input.
func Decode(data []byte) ([]byte, Encoding, error) {
	if utf8.Valid(data) {
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", fmt.Errorf("%w: utf-8: %w", ErrEncoding, err)
		}
		return out, EncodingUTF8, nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: latin-1: %w", ErrEncoding, err)
	}
	return out, EncodingLatin1, nil
}
