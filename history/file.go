package history

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Header is the first line of a history file.
const Header = "_HiStOrY_V2_"

// Error codes carried by IOError. The values match the libedit history
// error numbers so callers can report them unchanged.
const (
	CodeUnknown      = 1
	CodeRead         = 10
	CodeWrite        = 11
	CodeSizeNegative = 13
	CodeBadParam     = 15
)

var messages = map[int]string{
	CodeUnknown:      "unknown error",
	CodeRead:         "can't read history from file",
	CodeWrite:        "can't write history",
	CodeSizeNegative: "history size negative",
	CodeBadParam:     "bad parameters",
}

// IOError is a failed history operation.
type IOError struct {
	Code    int
	Message string
	Path    string
	Err     error
}

func (e *IOError) Error() string {
	s := "history: " + e.Message
	if e.Path != "" {
		s += ": " + e.Path
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioError(code int, path string, err error) *IOError {
	return &IOError{Code: code, Message: messages[code], Path: path, Err: err}
}

// Load appends the entries of the history file at path and returns how
// many were read. The file is parsed completely before anything is
// added, so a corrupt file leaves the store untouched.
func (s *Store) Load(path string) (int, error) {
	if path == "" {
		return 0, ioError(CodeBadParam, path, errors.New("empty file name"))
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, ioError(CodeRead, path, err)
	}
	defer f.Close()

	entries, err := Decode(f)
	if err != nil {
		return 0, ioError(CodeRead, path, err)
	}
	for _, e := range entries {
		s.add(e.Line, e.Time)
	}
	s.Reset()
	return len(entries), nil
}

// Save writes every entry to path, replacing the file, and returns how
// many were written.
func (s *Store) Save(path string) (n int, err error) {
	if path == "" {
		return 0, ioError(CodeBadParam, path, errors.New("empty file name"))
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, ioError(CodeWrite, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			n, err = 0, ioError(CodeWrite, path, cerr)
		}
	}()

	if err := Encode(f, s.entries); err != nil {
		return 0, ioError(CodeWrite, path, err)
	}
	return len(s.entries), nil
}

// Encode writes entries in history file format.
func Encode(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(Header + "\n")
	for _, e := range entries {
		if !e.Time.IsZero() {
			fmt.Fprintf(bw, "#%d\n", e.Time.Unix())
		}
		bw.WriteString(escape(e.Line))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Decode reads a complete history file. An empty file has no entries. A
// missing header, a malformed timestamp, a timestamp with no entry after
// it, a bad escape or a last record without a trailing newline all fail
// the whole read.
func Decode(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)
	head, err := br.ReadString('\n')
	if err == io.EOF && head == "" {
		// an empty file holds no entries
		return nil, nil
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	if strings.TrimSuffix(head, "\n") != Header {
		return nil, errors.Errorf("missing %s header", Header)
	}

	var (
		entries []Entry
		stamp   time.Time
		stamped bool
	)
	for lineNo := 2; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err == io.EOF {
			if line != "" {
				return nil, errors.Errorf("line %d: unterminated record", lineNo)
			}
			break
		}
		if err != nil {
			return nil, err
		}
		line = line[:len(line)-1]

		if strings.HasPrefix(line, "#") {
			if stamped {
				return nil, errors.Errorf("line %d: timestamp follows timestamp", lineNo)
			}
			sec, err := strconv.ParseInt(line[1:], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad timestamp", lineNo)
			}
			stamp, stamped = time.Unix(sec, 0), true
			continue
		}

		text, err := unescape(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		e := Entry{Line: text}
		if stamped {
			e.Time = stamp
			stamped = false
		}
		entries = append(entries, e)
	}
	if stamped {
		return nil, errors.New("timestamp without entry at end of file")
	}
	return entries, nil
}

// escape encodes the bytes that would break the line format as
// backslash-octal triples.
func escape(s string) string {
	if !strings.ContainsAny(s, "\\\n\r\t #") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '\n', '\r', '\t', ' ', '#':
			fmt.Fprintf(&sb, `\%03o`, c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}
		if i+4 > len(s) {
			return "", errors.Errorf("short escape at offset %d", i)
		}
		v := 0
		for _, d := range []byte(s[i+1 : i+4]) {
			if d < '0' || d > '7' {
				return "", errors.Errorf("bad escape at offset %d", i)
			}
			v = v*8 + int(d-'0')
		}
		if v > 0xff {
			return "", errors.Errorf("bad escape at offset %d", i)
		}
		sb.WriteByte(byte(v))
		i += 3
	}
	return sb.String(), nil
}
