// Package devlist enumerates raw disk and partition devices through the NT
// kernel object namespace and reports their byte lengths.
package devlist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned on platforms without a kernel object namespace.
var ErrUnsupported = errors.New("device listing requires the NT object namespace")

// ErrNegativeSize reports a device length query returning a negative value:
// a data-integrity failure, distinct from the control call itself failing.
var ErrNegativeSize = errors.New("device reported a negative length")

// Entry is one record from an object-namespace directory.
type Entry struct {
	Name     string
	TypeName string
}

const (
	deviceRoot      = `\Device`
	directoryType   = "Directory"
	diskPrefix      = "Harddisk"
	partitionPrefix = "Partition"
	globalRoot      = `\\?\GLOBALROOT`
)

// lengthInfoSize is the byte size of the kernel's length-query reply, a
// single signed 64-bit length.
const lengthInfoSize = 8

// validateLength checks a length-query reply before the value is trusted:
// the kernel must have filled the whole structure, and the signed length
// must not be negative. Negative lengths become ErrNegativeSize rather than
// coercing into an absurd unsigned value.
func validateLength(bytesReturned uint32, length int64) (uint64, error) {
	if bytesReturned != lengthInfoSize {
		return 0, fmt.Errorf("length query returned %d bytes, want %d",
			bytesReturned, lengthInfoSize)
	}
	if length < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeSize, length)
	}
	return uint64(length), nil
}

// walkFunc enumerates one object-namespace directory.
type walkFunc func(path string) ([]Entry, error)

// partitionPaths walks the device namespace root, then each Harddisk
// subdirectory, and emits one canonical global-namespace path per partition
// in walker order (kernel-defined, not sorted). If either walk step fails the
// error is returned immediately and partial results are discarded.
func partitionPaths(walk walkFunc) ([]string, error) {
	devs, err := walk(deviceRoot)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", deviceRoot, err)
	}

	var paths []string
	for _, dev := range devs {
		if dev.TypeName != directoryType || !strings.HasPrefix(dev.Name, diskPrefix) {
			continue
		}

		devPath := deviceRoot + `\` + dev.Name
		parts, err := walk(devPath)
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", devPath, err)
		}
		for _, pt := range parts {
			if !strings.HasPrefix(pt.Name, partitionPrefix) {
				continue
			}
			paths = append(paths, globalRoot+devPath+`\`+pt.Name)
		}
	}
	return paths, nil
}
