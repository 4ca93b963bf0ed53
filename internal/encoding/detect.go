// Package encoding decodes uploaded line-item files to UTF-8. French
// accounting tools export CSV in a mix of UTF-8, Windows-1252 and
// ISO-8859-15; the reader detects which one it was handed.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// euroLatin9 is the euro sign in ISO-8859-15. Windows-1252 puts the euro at
// 0x80 and keeps 0xA4 as the generic currency sign, which no French invoice
// export actually uses, so seeing this byte flips the decoder choice.
const euroLatin9 = 0xA4

// NewUTF8Reader detects the encoding of the input and returns a reader
// that decodes the content to UTF-8.
//
// Detection order:
//  1. Check for BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Validate if the content is valid UTF-8 and return as-is
//  3. Heuristic detection via chardet, euro-sign byte deciding between
//     Windows-1252 and ISO-8859-15
//  4. Fallback to Windows-1252
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	// Peek enough bytes for BOM detection and charset heuristics.
	buf, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(buf, bomUTF8) {
		// Discard the 3-byte UTF-8 BOM and return the rest as-is.
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	if bytes.HasPrefix(buf, bomUTF16LE) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, decoder), nil
	}

	if bytes.HasPrefix(buf, bomUTF16BE) {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, decoder), nil
	}

	if utf8.Valid(buf) {
		return br, nil
	}

	return transform.NewReader(br, legacyDecoder(buf)), nil
}

// legacyDecoder picks the single-byte decoder for a non-UTF-8 buffer.
func legacyDecoder(buf []byte) transform.Transformer {
	detector := chardet.NewTextDetector()

	if result, err := detector.DetectBest(buf); err == nil {
		switch result.Charset {
		case "ISO-8859-15":
			return charmap.ISO8859_15.NewDecoder()
		case "ISO-8859-1", "windows-1252":
			if bytes.IndexByte(buf, euroLatin9) >= 0 {
				return charmap.ISO8859_15.NewDecoder()
			}

			return charmap.Windows1252.NewDecoder()
		}
	}

	if bytes.IndexByte(buf, euroLatin9) >= 0 {
		return charmap.ISO8859_15.NewDecoder()
	}

	return charmap.Windows1252.NewDecoder()
}
