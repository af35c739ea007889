package session

import (
	"editline/config"
	"editline/lineedit"
	"editline/render"

	"github.com/pkg/errors"
)

// Apply configures the session from cfg: editor, bell, line length,
// command limit, history, prompt, key bindings and finally the rc
// commands. It stops at the first failure.
func (s *Session) Apply(cfg *config.Config) error {
	// Switching editors resets the key tables, so keep bindings made
	// before Apply when the mode stays the same.
	if cfg.Editor.Mode != s.Editor() {
		if err := s.SetEditor(cfg.Editor.Mode); err != nil {
			return err
		}
	}
	bell, ok := render.ParseBellStyle(cfg.Editor.Bell)
	if !ok {
		return errors.Errorf("session: unknown bell style %q", cfg.Editor.Bell)
	}
	s.SetBell(bell)
	if cfg.Editor.MaxLine > 0 && cfg.Editor.MaxLine != s.buf.Max() {
		s.buf = lineedit.NewSize(cfg.Editor.MaxLine)
	}
	if cfg.Editor.CommandLimit >= 0 {
		s.reg.limit = cfg.Editor.CommandLimit
	}
	s.SetSignal(cfg.Editor.Signals)

	if err := s.hist.SetSize(cfg.History.Size); err != nil {
		return err
	}
	s.hist.SetUnique(cfg.History.Unique)

	s.SetPrompt(cfg.Prompt.Text, cfg.PromptEsc())

	for key, cmd := range cfg.Keybindings {
		if err := s.BindKey(key, cmd); err != nil {
			return errors.Wrapf(err, "keybinding %s", key)
		}
	}
	for _, line := range cfg.RC {
		if _, err := s.ParseLine(line); err != nil {
			return errors.Wrapf(err, "rc %q", line)
		}
	}
	return nil
}
