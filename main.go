// Editline is a small interactive shell built on the editline packages.
// It reads lines with full emacs or vi editing and echoes them back.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"editline/config"
	"editline/keymap"
	"editline/session"

	docopt "github.com/flynn/go-docopt"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

const version = "0.1.0"

func main() {
	usage := `
Editline - interactive line editor

Usage:
  editline [options]
  editline --init-config
  editline -h | --help

Options:
  -c, --config=<path>  Config file (default ~/.config/editline/config.toml)
  --vi                 Start in vi mode
  --debug              Log debug output to stderr
  --init-config        Output default config (redirect to ~/.config/editline/config.toml)
  -h, --help           Show this help

Lines starting with ':' run editrc commands, for example
  :bind -l
  :bind ^W ed-delete-prev-word
  :history list
  :telltc

Press Tab to insert a greeting, Ctrl-D on an empty line to quit.
`[1:]
	args, _ := docopt.Parse(usage, nil, true, version, false)

	// Generate default config and exit
	if args.Bool["--init-config"] {
		fmt.Print(config.DefaultTOML())
		return
	}

	if err := run(args.String["--config"], args.Bool["--vi"], args.Bool["--debug"]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, vi, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.FormatError(err))
		os.Exit(1)
	}
	if vi {
		cfg.Editor.Mode = keymap.Vi
	}

	logCloser, err := cfg.Log.Setup(debug)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	log := log15.New("app", "editline")

	s, err := session.NewSession(session.WithLogger(log), session.WithProgram("editline"))
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	defer s.Close()

	// Registered before Apply so config key bindings may name it.
	if _, err := s.RegisterCommand("sample-complete", "Insert a greeting", sampleComplete); err != nil {
		return err
	}
	if err := s.Apply(cfg); err != nil {
		return errors.Wrap(err, "applying config")
	}
	if err := s.BindKey("^I", "sample-complete"); err != nil {
		return err
	}

	histPath := cfg.History.File
	if histPath == "" {
		if histPath, err = config.HistoryPath(); err != nil {
			log.Warn("no history file", "err", err)
		}
	}
	if histPath != "" {
		if n, err := s.LoadHistory(histPath); err == nil {
			log.Debug("history loaded", "path", histPath, "entries", n)
		}
		defer saveHistory(s, log, histPath)
	}

	for {
		line, err := s.ReadLine()
		switch {
		case err == io.EOF:
			fmt.Println()
			return nil
		case errors.Is(err, session.ErrInterrupted):
			continue
		case err != nil:
			return err
		}

		if strings.HasPrefix(line, ":") {
			if _, err := s.ParseLine(line[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", strings.TrimSpace(line[1:]), err)
			}
			continue
		}
		fmt.Printf("cmd => %s\n", line)
	}
}

// sampleComplete inserts a fixed word where Tab is pressed.
func sampleComplete(s *session.Session, key rune) session.Status {
	if _, err := s.InsertText("hello!"); err != nil {
		return session.RefreshBeep
	}
	return session.Refresh
}

func saveHistory(s *session.Session, log log15.Logger, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		log.Error("history directory", "err", err)
		return
	}
	if n, err := s.SaveHistory(path); err == nil {
		log.Debug("history saved", "path", path, "entries", n)
	}
}
