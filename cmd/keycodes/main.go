// Keycodes prints the key sequences the terminal sends, in editrc key
// notation, with the command each one is bound to. Useful for writing
// bind commands.
package main

import (
	"fmt"
	"os"

	"editline/keymap"
	"editline/render"

	docopt "github.com/flynn/go-docopt"
	"github.com/pkg/errors"
)

func main() {
	usage := `
Usage:
  keycodes [--vi-command]

Options:
  --vi-command  Match against the vi command table instead of emacs

Press keys to see their sequences. Press q to quit.
`[1:]
	args, _ := docopt.Parse(usage, nil, true, "", false)

	if err := run(args.Bool["--vi-command"]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(viCommand bool) error {
	if !render.IsTerminal(os.Stdin) {
		return errors.New("stdin is not a terminal")
	}
	tty, err := render.NewTTY(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer tty.Close()
	if err := tty.SetMode(render.ModeRaw); err != nil {
		return err
	}
	defer tty.SetMode(render.ModeEdit)

	table := keymap.EmacsTable()
	if viCommand {
		table = keymap.ViCommandTable()
	}
	m := keymap.NewMatcher(table)

	var seq, queue []byte
	for {
		var b byte
		if len(queue) > 0 {
			b, queue = queue[0], queue[1:]
		} else {
			if b, err = tty.ReadByte(); err != nil {
				return err
			}
		}
		if b == 'q' && len(seq) == 0 {
			return nil
		}
		seq = append(seq, b)

		res, cmd, rest := m.Feed(b)
		switch res {
		case keymap.Partial:
			continue
		case keymap.Resolved:
			show(tty, seq[:len(seq)-len(rest)], cmd)
			queue = append(rest, queue...)
		case keymap.NoMatch:
			show(tty, seq[:1], "unbound")
			queue = append(rest[1:], queue...)
		}
		seq = seq[:0]
	}
}

func show(w *render.TTY, seq []byte, cmd string) {
	fmt.Fprintf(w, "%-12s% x  %s\r\n", keymap.Format(string(seq)), seq, cmd)
}
