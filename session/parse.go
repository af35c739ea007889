package session

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"editline/keymap"
	"editline/lineedit"
	"editline/render"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

type parseFunc func(s *Session, args []string) error

var parseCommands map[string]parseFunc

func init() {
	parseCommands = map[string]parseFunc{
		"bind":    parseBind,
		"echotc":  parseEchotc,
		"edit":    parseEdit,
		"gettc":   parseEchotc,
		"history": parseHistory,
		"settc":   parseSettc,
		"setty":   parseSetty,
		"telltc":  parseTelltc,
	}
}

// Parse runs one editrc command: bind, echotc, edit, gettc, history,
// settc, setty or telltc, with args[0] naming the command. A "prog:"
// prefix on the command restricts it to the session's program name and is
// otherwise ignored. Parse returns 0 on success and -1 with the error
// otherwise.
func (s *Session) Parse(args []string) (int, error) {
	if len(args) == 0 {
		return -1, errors.New("session: empty command")
	}
	if len(args) > MaxArgs {
		return -1, &lineedit.OverflowError{What: "arguments", Len: len(args), Max: MaxArgs}
	}
	name := args[0]
	if i := strings.IndexByte(name, ':'); i >= 0 {
		if name[:i] != s.prog {
			return 0, nil
		}
		name = name[i+1:]
	}
	fn, ok := parseCommands[name]
	if !ok {
		return -1, errors.Errorf("session: unknown command %q", name)
	}
	if err := fn(s, args[1:]); err != nil {
		s.log.Debug("parse", "cmd", name, "err", err)
		return -1, err
	}
	return 0, nil
}

// ParseLine splits an editrc line into words and runs it. Blank lines and
// comments starting with # are ignored.
func (s *Session) ParseLine(line string) (int, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return 0, nil
	}
	return s.Parse(strings.Fields(line))
}

func (s *Session) output(b *bytes.Buffer) error {
	if b.Len() == 0 {
		return nil
	}
	_, err := s.Write(b.Bytes())
	return err
}

// parseBind handles
//
//	bind [-a] [key [command]]
//	bind -r [-a] key
//	bind -e | -v | -l
func parseBind(s *Session, args []string) error {
	alt, remove := false, false
	for len(args) > 0 && strings.HasPrefix(args[0], "-") && len(args[0]) == 2 {
		switch args[0] {
		case "-a":
			alt = true
		case "-r":
			remove = true
		case "-e":
			return s.SetEditor(keymap.Emacs)
		case "-v":
			return s.SetEditor(keymap.Vi)
		case "-l":
			return listCommands(s)
		case "-s", "-k":
			return errors.Errorf("bind: %s is not supported", args[0])
		default:
			return errors.Errorf("bind: unknown option %s", args[0])
		}
		args = args[1:]
	}

	table := s.keys.Main()
	if alt {
		table = s.keys.Alternate()
		if table == nil {
			return errors.Errorf("bind: %s has no alternate keymap", s.keys.Mode())
		}
	}

	switch {
	case len(args) == 0:
		return listBindings(s, table)
	case remove:
		seq, err := keymap.Parse(args[0])
		if err != nil {
			return err
		}
		if !table.Unbind(seq) {
			return errors.Errorf("bind: %s is not bound", args[0])
		}
		return nil
	case len(args) == 1:
		seq, err := keymap.Parse(args[0])
		if err != nil {
			return err
		}
		cmd, ok := table.Lookup(seq)
		if !ok {
			return errors.Errorf("bind: %s is not bound", args[0])
		}
		var b bytes.Buffer
		fmt.Fprintf(&b, "%-10s-> %s\n", keymap.Format(seq), cmd)
		return s.output(&b)
	case len(args) == 2:
		seq, err := keymap.Parse(args[0])
		if err != nil {
			return err
		}
		if _, ok := s.reg.Lookup(args[1]); !ok {
			return errors.Errorf("bind: unknown command %q", args[1])
		}
		return table.Bind(seq, args[1])
	}
	return errors.New("usage: bind [-a] [key [command]]")
}

func listBindings(s *Session, t *keymap.Table) error {
	var b bytes.Buffer
	for _, bd := range t.Bindings() {
		fmt.Fprintf(&b, "%-10s-> %s\n", keymap.Format(bd.Seq), bd.Command)
	}
	return s.output(&b)
}

func listCommands(s *Session) error {
	var b bytes.Buffer
	for _, c := range s.reg.Commands() {
		fmt.Fprintf(&b, "%s\n\t%s\n", c.Name, c.Help)
	}
	return s.output(&b)
}

// parseEdit handles "edit on|off".
func parseEdit(s *Session, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: edit on|off")
	}
	switch args[0] {
	case "on":
		s.SetEditing(true)
	case "off":
		s.SetEditing(false)
	default:
		return errors.Errorf("edit: bad value %q", args[0])
	}
	return nil
}

// parseHistory handles
//
//	history [list]
//	history size n
//	history unique 0|1
//	history load|save file
//	history clear
func parseHistory(s *Session, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		return listHistory(s)
	}
	switch args[0] {
	case "size", "unique":
		if len(args) != 2 {
			return errors.Errorf("usage: history %s n", args[0])
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(err, "history %s", args[0])
		}
		if args[0] == "unique" {
			s.hist.SetUnique(n != 0)
			return nil
		}
		return s.hist.SetSize(n)
	case "load", "save":
		if len(args) != 2 {
			return errors.Errorf("usage: history %s file", args[0])
		}
		var err error
		if args[0] == "load" {
			_, err = s.LoadHistory(args[1])
		} else {
			_, err = s.SaveHistory(args[1])
		}
		return err
	case "clear":
		s.hist.Clear()
		return nil
	}
	return errors.Errorf("history: unknown command %q", args[0])
}

func listHistory(s *Session) error {
	var b bytes.Buffer
	table := tablewriter.NewWriter(&b)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "WHEN", "LINE"})
	for _, e := range s.hist.Entries() {
		when := ""
		if !e.Time.IsZero() {
			when = humanize.Time(e.Time)
		}
		table.Append([]string{strconv.Itoa(e.Num), when, render.Visual(e.Line)})
	}
	table.Render()
	return s.output(&b)
}

var capAliases = map[string]string{
	"rows":    "li",
	"lines":   "li",
	"cols":    "co",
	"columns": "co",
	"tabs":    "pt",
	"meta":    "km",
}

// parseEchotc handles "echotc [-sv] name [args...]": it writes the value
// of a capability, expanding string capabilities with the numeric args.
// -s suppresses errors, -v makes them verbose.
func parseEchotc(s *Session, args []string) error {
	silent, verbose := false, false
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		for _, c := range args[0][1:] {
			switch c {
			case 's':
				silent = true
			case 'v':
				verbose = true
			default:
				return errors.Errorf("echotc: unknown option -%c", c)
			}
		}
		args = args[1:]
	}
	if len(args) == 0 {
		return errors.New("usage: echotc [-sv] name [args...]")
	}
	name := args[0]
	if a, ok := capAliases[name]; ok {
		name = a
	}
	c, err := s.Capability(name)
	if err != nil {
		if silent {
			return nil
		}
		if verbose {
			return errors.Wrapf(err, "echotc: %s", args[0])
		}
		return err
	}

	var b bytes.Buffer
	switch {
	case c.IsNum:
		fmt.Fprintf(&b, "%d\n", c.Num)
	case len(args) > 1:
		params := make([]interface{}, 0, len(args)-1)
		for _, a := range args[1:] {
			n, err := strconv.Atoi(a)
			if err != nil {
				return errors.Wrapf(err, "echotc: %s argument", name)
			}
			params = append(params, n)
		}
		b.WriteString(capParam(s, name, params...))
	default:
		b.WriteString(c.Str)
	}
	return s.output(&b)
}

func capParam(s *Session, name string, params ...interface{}) string {
	if t, ok := s.term.(interface{ Caps() *render.Caps }); ok {
		return t.Caps().Param(name, params...)
	}
	return render.ANSICaps().Param(name, params...)
}

// parseSettc handles "settc name value".
func parseSettc(s *Session, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: settc name value")
	}
	name := args[0]
	if a, ok := capAliases[name]; ok {
		name = a
	}
	if err := s.SetCapability(name, args[1]); err != nil {
		return err
	}
	if name == "co" {
		s.Resize()
	}
	return nil
}

// parseTelltc lists every capability and its value.
func parseTelltc(s *Session, _ []string) error {
	names := render.Names()
	sort.Strings(names)

	var b bytes.Buffer
	table := tablewriter.NewWriter(&b)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"CAP", "VALUE"})
	for _, n := range names {
		c, err := s.Capability(n)
		if err != nil {
			continue
		}
		v := strconv.Quote(c.Str)
		if c.IsNum {
			v = strconv.Itoa(c.Num)
		}
		table.Append([]string{n, v})
	}
	table.Render()
	return s.output(&b)
}

// parseSetty handles "setty [-a] [-d|-x] [+flag|-flag|flag ...]".
func parseSetty(s *Session, args []string) error {
	listing, err := s.SetTTY(args...)
	if err != nil {
		return err
	}
	b := bytes.NewBufferString(listing)
	return s.output(b)
}
