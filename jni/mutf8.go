package jni

import (
	"unicode/utf16"
	"unicode/utf8"
)

// encodeModifiedUTF8 converts a Go string to the "modified UTF-8" the JVM
// expects: NUL is written as two bytes and characters outside the BMP are
// written as a surrogate pair of three-byte sequences. The result is
// NUL-terminated.
func encodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s)+1)
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = appendThree(out, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			out = appendThree(out, hi)
			out = appendThree(out, lo)
		}
	}
	return append(out, 0)
}

func appendThree(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}

// decodeModifiedUTF8 converts modified UTF-8 bytes (without terminator)
// back into a Go string. Malformed sequences decode to U+FFFD.
func decodeModifiedUTF8(b []byte) string {
	out := make([]byte, 0, len(b))
	var pending rune = -1
	flush := func() {
		if pending >= 0 {
			out = utf8.AppendRune(out, utf8.RuneError)
			pending = -1
		}
	}
	for i := 0; i < len(b); {
		c := b[i]
		var r rune
		switch {
		case c < 0x80:
			r = rune(c)
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b) && b[i+1]&0xC0 == 0x80:
			r = rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b) && b[i+1]&0xC0 == 0x80 && b[i+2]&0xC0 == 0x80:
			r = rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			i += 3
		default:
			flush()
			out = utf8.AppendRune(out, utf8.RuneError)
			i++
			continue
		}

		switch {
		case utf16.IsSurrogate(r) && r < 0xDC00:
			flush()
			pending = r
		case utf16.IsSurrogate(r):
			if pending >= 0 {
				out = utf8.AppendRune(out, utf16.DecodeRune(pending, r))
				pending = -1
			} else {
				out = utf8.AppendRune(out, utf8.RuneError)
			}
		default:
			flush()
			out = utf8.AppendRune(out, r)
		}
	}
	flush()
	return string(out)
}
