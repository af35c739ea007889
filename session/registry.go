package session

import (
	"sort"

	"github.com/pkg/errors"
)

// MaxUserCommands is the default number of user commands a session
// accepts.
const MaxUserCommands = 10

// Func is the body of a command. key is the last key of the sequence that
// invoked it.
type Func func(s *Session, key rune) Status

// Command is a named editing command.
type Command struct {
	Name    string
	Help    string
	Fn      Func
	Builtin bool
	edits   bool // the engine saves an undo state before running it
}

// Handle identifies a registered user command. It is the command's slot in
// registration order and does not change for the life of the session.
type Handle int

// Registry holds the builtin commands and the commands registered by the
// application.
type Registry struct {
	builtins map[string]*Command
	names    []string // sorted builtin names
	user     []*Command
	byName   map[string]Handle
	limit    int
}

// NewRegistry returns a registry with every builtin command installed and
// room for limit user commands. A limit of 0 means unlimited.
func NewRegistry(limit int) *Registry {
	r := &Registry{
		builtins: make(map[string]*Command, len(builtins)),
		byName:   make(map[string]Handle),
		limit:    limit,
	}
	for _, b := range builtins {
		r.builtins[b.name] = &Command{Name: b.name, Help: b.help, Fn: b.fn, Builtin: true, edits: b.edits}
		r.names = append(r.names, b.name)
	}
	sort.Strings(r.names)
	return r
}

// Limit returns the user command capacity (0 = unlimited).
func (r *Registry) Limit() int {
	return r.limit
}

// Len returns the number of user commands.
func (r *Registry) Len() int {
	return len(r.user)
}

// Register adds a user command. It fails with ErrNilCommand when fn is
// nil and with a *CapacityError when the registry is full; in both cases
// existing registrations are left alone.
func (r *Registry) Register(name, help string, fn Func) (Handle, error) {
	if fn == nil {
		return -1, ErrNilCommand
	}
	if name == "" {
		return -1, errors.New("session: empty command name")
	}
	if _, ok := r.Lookup(name); ok {
		return -1, errors.Errorf("session: command %q already exists", name)
	}
	if r.limit > 0 && len(r.user) >= r.limit {
		return -1, &CapacityError{Limit: r.limit}
	}
	h := Handle(len(r.user))
	r.user = append(r.user, &Command{Name: name, Help: help, Fn: fn, edits: true})
	r.byName[name] = h
	return h, nil
}

// Lookup finds a command by name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	if c, ok := r.builtins[name]; ok {
		return c, true
	}
	if h, ok := r.byName[name]; ok {
		return r.user[h], true
	}
	return nil, false
}

// Command returns the user command in slot h.
func (r *Registry) Command(h Handle) (*Command, bool) {
	if h < 0 || int(h) >= len(r.user) {
		return nil, false
	}
	return r.user[h], true
}

// Commands lists the builtins in name order followed by the user commands
// in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.names)+len(r.user))
	for _, n := range r.names {
		out = append(out, *r.builtins[n])
	}
	for _, c := range r.user {
		out = append(out, *c)
	}
	return out
}
