//go:build !windows

package engine

import "os"

// openFile opens path with the given flags. The exclusive flag requests a
// zero sharing mode, which only Windows supports; elsewhere it is a no-op.
func openFile(path string, flag int, perm os.FileMode, _ bool) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
