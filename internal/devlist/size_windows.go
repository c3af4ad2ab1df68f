//go:build windows

package devlist

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// IOCTL_DISK_GET_LENGTH_INFO control code.
const ioctlDiskGetLengthInfo = 0x0007405C

// getLengthInformation mirrors GET_LENGTH_INFORMATION: one signed 64-bit
// byte length.
type getLengthInformation struct {
	Length int64
}

// queryLength issues the fixed-size length control request against an open
// device handle. The handle needs at least read access, and no concurrent
// control calls may be issued against it. The output buffer is pre-zeroed
// and the reply is validated before the field is trusted.
func queryLength(handle windows.Handle) (uint64, error) {
	var info getLengthInformation
	var bytesReturned uint32
	err := windows.DeviceIoControl(
		handle,
		ioctlDiskGetLengthInfo,
		nil, 0,
		(*byte)(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info)),
		&bytesReturned,
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("length ioctl: %w", err)
	}
	return validateLength(bytesReturned, info.Length)
}

// PartitionSize opens path with read access and reports its byte length.
func PartitionSize(path string) (uint64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", path, err)
	}
	handle, err := windows.CreateFile(
		p,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer windows.CloseHandle(handle)

	return queryLength(handle)
}
