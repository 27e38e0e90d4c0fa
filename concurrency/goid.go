package concurrency

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID extracts the running goroutine's id from the first line
// of its stack trace ("goroutine 123 [running]:"). Used only to key the
// manager's worker id map; never for synchronization.
func currentGoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i > 0 {
		if id, err := strconv.ParseUint(string(buf[:i]), 10, 64); err == nil {
			return id
		}
	}
	return 0
}
