package classfile

import (
	"strings"
	"unicode/utf16"
)

// decodeModifiedUTF8 converts the JVM's modified UTF-8 encoding to a Go string.
// NUL is encoded as 0xC0 0x80 and supplementary characters as surrogate pairs.
// Malformed sequences decode to U+FFFD rather than failing; the raw bytes are
// kept alongside so serialization is unaffected.
func decodeModifiedUTF8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, 0xFFFD)
			i++
		}
	}
	return string(utf16.Decode(units))
}

// encodeModifiedUTF8 converts a Go string to modified UTF-8.
func encodeModifiedUTF8(s string) []byte {
	if !needsEncoding(s) {
		return []byte(s)
	}
	out := make([]byte, 0, len(s)+8)
	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u != 0 && u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, 0xC0|byte(u>>6), 0x80|byte(u&0x3F))
		default:
			out = append(out, 0xE0|byte(u>>12), 0x80|byte((u>>6)&0x3F), 0x80|byte(u&0x3F))
		}
	}
	return out
}

func needsEncoding(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r == 0 || r >= 0x80 }) >= 0
}
