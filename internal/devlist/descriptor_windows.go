//go:build windows

package devlist

import "golang.org/x/sys/windows"

// nt returns the kernel descriptor view of the backing buffer. The wideString
// must outlive every native call that references the returned value.
func (w *wideString) nt() windows.NTUnicodeString {
	var buf *uint16
	if len(w.units) > 0 {
		buf = &w.units[0]
	}
	return windows.NTUnicodeString{
		Length:        w.byteLen(),
		MaximumLength: w.byteLen(),
		Buffer:        buf,
	}
}
