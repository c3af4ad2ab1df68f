//go:build !windows

package devlist

// Supported reports whether this platform exposes a kernel object namespace.
func Supported() bool { return false }

// ListPartitions fails on platforms without an NT object namespace.
func ListPartitions() ([]string, error) {
	return nil, ErrUnsupported
}

// PartitionSize fails on platforms without an NT object namespace.
func PartitionSize(string) (uint64, error) {
	return 0, ErrUnsupported
}
