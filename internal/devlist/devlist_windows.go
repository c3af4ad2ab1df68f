//go:build windows

package devlist

// Supported reports whether this platform exposes a kernel object namespace.
func Supported() bool { return true }

// ListPartitions returns a canonical \\?\GLOBALROOT device path for every
// partition of every Harddisk device, in kernel enumeration order. Results
// are regenerated on every call: the namespace may change between calls.
func ListPartitions() ([]string, error) {
	return partitionPaths(enumerateObjectDirectory)
}
