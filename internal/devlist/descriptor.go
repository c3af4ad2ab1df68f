package devlist

import (
	"errors"
	"unicode/utf16"
)

// maxDescriptorBytes is the capacity of the 16-bit Length field in the
// kernel's wide-character string descriptor.
const maxDescriptorBytes = 1<<16 - 1

// ErrDescriptorOverflow reports text whose UTF-16 encoding does not fit the
// descriptor's 16-bit byte length.
var ErrDescriptorOverflow = errors.New("descriptor exceeds 65535 encoded bytes")

// ErrDescriptorDecode reports a wide-character buffer that is not valid
// UTF-16. Callers enumerating namespace entries skip such entries rather
// than failing: the namespace holds adversarial metadata, not caller input.
var ErrDescriptorDecode = errors.New("descriptor is not valid UTF-16")

// wideString owns the UTF-16 backing store for a kernel string descriptor.
// The backing slice is never reallocated while the value lives, so the
// buffer address stays stable for every native call that references it.
type wideString struct {
	units []uint16
}

// newWideString encodes s as UTF-16, enforcing the descriptor size bound.
func newWideString(s string) (*wideString, error) {
	units := utf16.Encode([]rune(s))
	if len(units)*2 > maxDescriptorBytes {
		return nil, ErrDescriptorOverflow
	}
	return &wideString{units: units}, nil
}

// byteLen returns the encoded length in bytes.
func (w *wideString) byteLen() uint16 {
	return uint16(len(w.units) * 2) //nolint:gosec // G115: bounded by the constructor
}

// decodeWide converts UTF-16 code units back to text. Unlike utf16.Decode it
// rejects unpaired surrogates instead of silently substituting U+FFFD, so
// malformed kernel metadata surfaces as ErrDescriptorDecode.
func decodeWide(units []uint16) (string, error) {
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u < 0xDC00: // high surrogate needs a low mate
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", ErrDescriptorDecode
			}
			i++
		case u >= 0xDC00 && u < 0xE000: // stray low surrogate
			return "", ErrDescriptorDecode
		}
	}
	return string(utf16.Decode(units)), nil
}
