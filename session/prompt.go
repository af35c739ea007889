package session

import "editline/render"

// PromptFunc produces the prompt text. It is called before every redraw
// of the line.
type PromptFunc func(s *Session) string

// SetPrompt sets a fixed prompt. When esc is not zero, text between pairs
// of esc characters is written as is and takes no room on screen, for
// color and highlight sequences; the esc characters are not printed.
func (s *Session) SetPrompt(text string, esc rune) {
	s.promptText, s.promptFn, s.promptEsc = text, nil, esc
	s.prompt = render.ExpandPrompt(text, esc)
}

// SetPromptFunc sets a prompt computed by fn. esc works as in SetPrompt.
func (s *Session) SetPromptFunc(fn PromptFunc, esc rune) {
	s.promptText, s.promptFn, s.promptEsc = "", fn, esc
	s.expandPrompt()
}

// Prompt returns the prompt as last expanded.
func (s *Session) Prompt() render.Prompt {
	return s.prompt
}

func (s *Session) expandPrompt() {
	text := s.promptText
	if s.promptFn != nil {
		text = s.promptFn(s)
	}
	s.prompt = render.ExpandPrompt(text, s.promptEsc)
}
