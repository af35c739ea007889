package session

import "strconv"

// Status is what a command asks the edit engine to do next. The numeric
// values are stable and match the classic editline CC_* codes.
type Status int

const (
	Normal      Status = 0 // redraw the line and keep editing
	NewLine     Status = 1 // accept the line
	EOF         Status = 2 // end of input
	ArgHack     Status = 3 // keep the numeric argument for the next command
	Refresh     Status = 4 // redraw the line
	Cursor      Status = 5 // the cursor moved, the text did not change
	Error       Status = 6 // beep and keep editing
	Fatal       Status = 7 // abort the read
	Redisplay   Status = 8 // redraw the prompt and the line
	RefreshBeep Status = 9 // redraw the line and beep
)

var statusNames = [...]string{
	Normal:      "normal",
	NewLine:     "newline",
	EOF:         "eof",
	ArgHack:     "arghack",
	Refresh:     "refresh",
	Cursor:      "cursor",
	Error:       "error",
	Fatal:       "fatal",
	Redisplay:   "redisplay",
	RefreshBeep: "refresh-beep",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// State is the position of the edit engine in a ReadLine call.
type State int

const (
	Idle State = iota
	ReadingKey
	Dispatching
	Accepted
	Aborted
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ReadingKey:
		return "reading-key"
	case Dispatching:
		return "dispatching"
	case Accepted:
		return "accepted"
	case Aborted:
		return "aborted"
	case Errored:
		return "errored"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}
