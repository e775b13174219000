package judge

import (
	"golang.org/x/sys/unix"
)

// epollRead performs one non-blocking read, translating EAGAIN/EWOULDBLOCK
// into (0, nil) rather than an error so drain's loop can tell "nothing more
// right now" apart from "something went wrong".
func epollRead(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, nil
	}
	return n, err
}

// epollWrite is a best-effort non-blocking write: a full peer pipe buffer
// means dropped bytes, not a driver error, so the result is discarded.
func epollWrite(fd int, buf []byte) {
	_, _ = unix.Write(fd, buf)
}
