//go:build linux

package render

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios      = unix.TCGETS
	ioctlSetTermios      = unix.TCSETS
	ioctlSetTermiosDrain = unix.TCSETSW
)

// tcflag is the type of the termios flag words.
type tcflag = uint32
