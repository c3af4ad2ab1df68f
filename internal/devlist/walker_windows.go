//go:build windows

package devlist

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	ntdll                      = windows.NewLazySystemDLL("ntdll.dll")
	procNtOpenDirectoryObject  = ntdll.NewProc("NtOpenDirectoryObject")
	procNtQueryDirectoryObject = ntdll.NewProc("NtQueryDirectoryObject")
)

// DIRECTORY_QUERY access right for NtOpenDirectoryObject.
const directoryQuery = 0x0001

// STATUS_NO_MORE_ENTRIES: the normal end-of-enumeration signal, not an error.
const statusNoMoreEntries = 0x8000001A

// objectDirectoryInformation mirrors OBJECT_DIRECTORY_INFORMATION.
type objectDirectoryInformation struct {
	Name     windows.NTUnicodeString
	TypeName windows.NTUnicodeString
}

// ntStatusErr translates a non-success NTSTATUS into a wrapped OS error.
// All status translation happens here so the walker's control flow stays
// free of platform error plumbing.
func ntStatusErr(op string, status uint32) error {
	return fmt.Errorf("%s: %w", op, windows.NTStatus(status).Errno())
}

// openDirectoryObject opens a namespace directory for query-only access.
func openDirectoryObject(path string) (windows.Handle, error) {
	wpath, err := newWideString(path)
	if err != nil {
		return 0, err
	}
	name := wpath.nt()
	attrs := windows.OBJECT_ATTRIBUTES{
		Length:     uint32(unsafe.Sizeof(windows.OBJECT_ATTRIBUTES{})),
		ObjectName: &name,
	}

	var handle windows.Handle
	r0, _, _ := procNtOpenDirectoryObject.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(directoryQuery),
		uintptr(unsafe.Pointer(&attrs)),
	)
	if status := uint32(r0); status != 0 {
		return 0, ntStatusErr("open directory object", status)
	}
	return handle, nil
}

// dirWalker iterates the entries of one open namespace directory using the
// kernel's single-entry, non-restarting query protocol. The context cursor
// is opaque kernel state threaded through successive calls.
type dirWalker struct {
	handle  windows.Handle
	context uint32
	buf     [4096]byte
}

// next retrieves exactly one entry. done is true once the kernel reports no
// more entries. Entries whose descriptors fail to decode are skipped.
func (w *dirWalker) next() (entry Entry, done bool, err error) {
	for {
		var returnLength uint32
		r0, _, _ := procNtQueryDirectoryObject.Call(
			uintptr(w.handle),
			uintptr(unsafe.Pointer(&w.buf[0])),
			uintptr(len(w.buf)),
			1, // ReturnSingleEntry
			0, // RestartScan: never restart, the cursor carries position
			uintptr(unsafe.Pointer(&w.context)),
			uintptr(unsafe.Pointer(&returnLength)),
		)
		status := uint32(r0)
		if status == statusNoMoreEntries {
			return Entry{}, true, nil
		}
		if status != 0 {
			return Entry{}, false, ntStatusErr("query directory object", status)
		}

		info := (*objectDirectoryInformation)(unsafe.Pointer(&w.buf[0]))
		name, nameErr := decodeNTString(&info.Name)
		typeName, typeErr := decodeNTString(&info.TypeName)
		if nameErr != nil || typeErr != nil {
			continue // undecodable namespace metadata: skip, never fatal
		}
		return Entry{Name: name, TypeName: typeName}, false, nil
	}
}

// decodeNTString copies the code units out of a kernel descriptor and
// decodes them. The copy matters: the walker's buffer is reused by the next
// query.
func decodeNTString(s *windows.NTUnicodeString) (string, error) {
	if s.Buffer == nil || s.Length == 0 {
		return "", nil
	}
	units := unsafe.Slice(s.Buffer, s.Length/2)
	owned := make([]uint16, len(units))
	copy(owned, units)
	return decodeWide(owned)
}

// enumerateObjectDirectory opens path and drains its entries. The directory
// handle is released exactly once on every exit path.
func enumerateObjectDirectory(path string) ([]Entry, error) {
	handle, err := openDirectoryObject(path)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(handle)

	w := &dirWalker{handle: handle}
	var entries []Entry
	for {
		entry, done, err := w.next()
		if err != nil {
			return nil, err
		}
		if done {
			return entries, nil
		}
		entries = append(entries, entry)
	}
}
