package render

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xo/terminfo"
)

// Capability is the value of one terminal capability. Numeric and boolean
// capabilities set IsNum and carry their value in Num (booleans are 0 or
// 1); the rest carry a string.
type Capability struct {
	Name  string
	IsNum bool
	Num   int
	Str   string
}

// InvalidCapabilityError reports a capability name the terminal layer does
// not know.
type InvalidCapabilityError struct {
	Name string
}

func (e *InvalidCapabilityError) Error() string {
	return fmt.Sprintf("render: invalid capability name %q", e.Name)
}

// Termcap names understood by Caps, mapped to terminfo indexes.
var (
	boolCaps = map[string]int{
		"am": terminfo.AutoRightMargin,
		"km": terminfo.HasMetaKey,
		"MT": terminfo.HasMetaKey,
		"xt": terminfo.DestTabsMagicSmso,
		"xn": terminfo.EatNewlineGlitch,
	}
	numCaps = map[string]int{
		"co": terminfo.Columns,
		"li": terminfo.Lines,
	}
	strCaps = map[string]int{
		"al": terminfo.InsertLine,
		"bl": terminfo.Bell,
		"cd": terminfo.ClrEos,
		"ce": terminfo.ClrEol,
		"ch": terminfo.ColumnAddress,
		"cl": terminfo.ClearScreen,
		"cr": terminfo.CarriageReturn,
		"dc": terminfo.DeleteCharacter,
		"dl": terminfo.DeleteLine,
		"dm": terminfo.EnterDeleteMode,
		"do": terminfo.CursorDown,
		"ed": terminfo.ExitDeleteMode,
		"ei": terminfo.ExitInsertMode,
		"fs": terminfo.FromStatusLine,
		"ho": terminfo.CursorHome,
		"ic": terminfo.InsertCharacter,
		"im": terminfo.EnterInsertMode,
		"ip": terminfo.InsertPadding,
		"kd": terminfo.KeyDown,
		"kl": terminfo.KeyLeft,
		"kr": terminfo.KeyRight,
		"ku": terminfo.KeyUp,
		"kh": terminfo.KeyHome,
		"@7": terminfo.KeyEnd,
		"kD": terminfo.KeyDc,
		"le": terminfo.CursorLeft,
		"md": terminfo.EnterBoldMode,
		"me": terminfo.ExitAttributeMode,
		"nd": terminfo.CursorRight,
		"se": terminfo.ExitStandoutMode,
		"so": terminfo.EnterStandoutMode,
		"ts": terminfo.ToStatusLine,
		"up": terminfo.CursorUp,
		"us": terminfo.EnterUnderlineMode,
		"ue": terminfo.ExitUnderlineMode,
		"vb": terminfo.FlashScreen,
		"DC": terminfo.ParmDch,
		"DO": terminfo.ParmDownCursor,
		"IC": terminfo.ParmIch,
		"LE": terminfo.ParmLeftCursor,
		"RI": terminfo.ParmRightCursor,
		"UP": terminfo.ParmUpCursor,
	}
)

// ANSI values used when no terminfo entry can be loaded.
var (
	ansiNums = map[string]int{"am": 1, "xn": 1, "co": 80, "li": 24, "pt": 1}
	ansiStrs = map[string]string{
		"bl": "\a",
		"cd": "\x1b[J",
		"ce": "\x1b[K",
		"cl": "\x1b[H\x1b[2J",
		"cr": "\r",
		"do": "\n",
		"ho": "\x1b[H",
		"le": "\b",
		"md": "\x1b[1m",
		"me": "\x1b[0m",
		"nd": "\x1b[C",
		"se": "\x1b[27m",
		"so": "\x1b[7m",
		"up": "\x1b[A",
		"us": "\x1b[4m",
		"ue": "\x1b[24m",
		"kl": "\x1b[D",
		"kr": "\x1b[C",
		"ku": "\x1b[A",
		"kd": "\x1b[B",
		"DO": "\x1b[%p1%dB",
		"LE": "\x1b[%p1%dD",
		"RI": "\x1b[%p1%dC",
		"UP": "\x1b[%p1%dA",
	}
)

// Caps answers capability queries from a terminfo entry, with values set
// by Set taking precedence.
type Caps struct {
	ti   *terminfo.Terminfo // nil: ANSI fallback
	nums map[string]int
	strs map[string]string
}

// LoadCaps loads the terminfo entry for term, or for $TERM when term is
// empty. If no entry can be found the ANSI fallback is returned along with
// the load error.
func LoadCaps(term string) (*Caps, error) {
	var (
		ti  *terminfo.Terminfo
		err error
	)
	if term == "" {
		ti, err = terminfo.LoadFromEnv()
	} else {
		ti, err = terminfo.Load(term)
	}
	if err != nil {
		return ANSICaps(), err
	}
	return &Caps{ti: ti, nums: map[string]int{}, strs: map[string]string{}}, nil
}

// ANSICaps returns capabilities for a generic ANSI terminal.
func ANSICaps() *Caps {
	c := &Caps{nums: map[string]int{}, strs: map[string]string{}}
	for k, v := range ansiNums {
		c.nums[k] = v
	}
	for k, v := range ansiStrs {
		c.strs[k] = v
	}
	return c
}

func isNumeric(name string) bool {
	if name == "pt" {
		return true
	}
	_, b := boolCaps[name]
	_, n := numCaps[name]
	return b || n
}

// Lookup returns the named capability. am, pt, li, co, km, xt, xn and MT
// are numeric; every other known name is a string.
func (c *Caps) Lookup(name string) (Capability, error) {
	if isNumeric(name) {
		return Capability{Name: name, IsNum: true, Num: c.Num(name)}, nil
	}
	if _, ok := strCaps[name]; !ok {
		return Capability{}, &InvalidCapabilityError{Name: name}
	}
	return Capability{Name: name, Str: c.Str(name)}, nil
}

// Num returns a numeric or boolean capability, or -1 when a number is
// absent. Unknown names return -1.
func (c *Caps) Num(name string) int {
	if v, ok := c.nums[name]; ok {
		return v
	}
	if c.ti == nil {
		if _, ok := boolCaps[name]; ok {
			return 0
		}
		return -1
	}
	if name == "pt" {
		if len(c.ti.Strings[terminfo.Tab]) > 0 {
			return 1
		}
		return 0
	}
	if i, ok := boolCaps[name]; ok {
		if c.ti.Has(i) {
			return 1
		}
		return 0
	}
	if i, ok := numCaps[name]; ok {
		return c.ti.Num(i)
	}
	return -1
}

// Str returns a string capability, or "" when absent.
func (c *Caps) Str(name string) string {
	if v, ok := c.strs[name]; ok {
		return v
	}
	if c.ti == nil {
		return ""
	}
	if i, ok := strCaps[name]; ok {
		return string(c.ti.Strings[i])
	}
	return ""
}

// Param expands a parameterized string capability.
func (c *Caps) Param(name string, args ...interface{}) string {
	s := c.Str(name)
	if s == "" {
		return ""
	}
	return terminfo.Printf([]byte(s), args...)
}

// Set overrides a capability. Numeric capabilities accept a decimal value
// or yes/no.
func (c *Caps) Set(name, value string) error {
	if isNumeric(name) {
		switch value {
		case "yes":
			c.nums[name] = 1
		case "no":
			c.nums[name] = 0
		default:
			n, err := strconv.Atoi(value)
			if err != nil {
				return errors.Errorf("render: bad value %q for %s", value, name)
			}
			c.nums[name] = n
		}
		return nil
	}
	if _, ok := strCaps[name]; !ok {
		return &InvalidCapabilityError{Name: name}
	}
	c.strs[name] = value
	return nil
}

// Names returns every capability name Caps understands, sorted.
func Names() []string {
	var out []string
	out = append(out, "pt")
	for k := range boolCaps {
		out = append(out, k)
	}
	for k := range numCaps {
		out = append(out, k)
	}
	for k := range strCaps {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Terminal returns the name of the loaded entry, or "ansi".
func (c *Caps) Terminal() string {
	if c.ti == nil || len(c.ti.Names) == 0 {
		return "ansi"
	}
	return c.ti.Names[0]
}
