// Package config provides configuration loading for editline using TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// Editor settings
type Editor struct {
	Mode         string `toml:"mode"`     // "emacs" or "vi"
	MaxLine      int    `toml:"max_line"` // bytes
	Bell         string `toml:"bell"`     // "audible", "visible" or "none"
	CommandLimit int    `toml:"command_limit"`
	Signals      bool   `toml:"signals"` // handle SIGINT and SIGWINCH
}

// History settings
type History struct {
	Size   int    `toml:"size"`
	File   string `toml:"file"`
	Unique bool   `toml:"unique"`
}

// Prompt settings
type Prompt struct {
	Text string `toml:"text"`
	Esc  string `toml:"esc"` // single character delimiting literal runs, "" for none
}

// Log settings
type Log struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Config is the main configuration struct
type Config struct {
	// RC holds editrc command lines run after the other settings, such as
	// "bind ^W ed-delete-prev-word".
	RC          []string          `toml:"rc"`
	Editor      Editor            `toml:"editor"`
	History     History           `toml:"history"`
	Prompt      Prompt            `toml:"prompt"`
	Keybindings map[string]string `toml:"keybindings"` // key notation -> command
	Log         Log               `toml:"log"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Editor: Editor{
			Mode:         "emacs",
			MaxLine:      4096,
			Bell:         "audible",
			CommandLimit: 10,
			Signals:      true,
		},
		History: History{
			Size: 100,
		},
		Prompt: Prompt{
			Text: "> ",
		},
		Keybindings: map[string]string{},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "editline"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the default history file path.
func HistoryPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// Load loads configuration from path, layering it on top of defaults.
// An empty path means ConfigPath; when that file does not exist the
// defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, nil // Return defaults if we can't determine path
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return cfg, nil
		}
		path = p
	}

	userCfg, md, err := loadFromTOML(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config from %s", path)
	}

	result := merge(cfg, userCfg, md)
	if err := result.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return result, nil
}

// loadFromTOML loads a TOML config file and returns the config and the
// keys it defined.
func loadFromTOML(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, md, errors.Wrap(err, "parsing config TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, md, errors.Errorf("unknown setting %s", undecoded[0])
	}
	return &cfg, md, nil
}

// merge layers user config on top of defaults. Non-zero values override,
// and booleans override when the file sets them.
func merge(defaults, user *Config, md toml.MetaData) *Config {
	result := *defaults
	result.Keybindings = make(map[string]string, len(defaults.Keybindings)+len(user.Keybindings))
	for k, v := range defaults.Keybindings {
		result.Keybindings[k] = v
	}

	// Editor
	mergeString(&result.Editor.Mode, user.Editor.Mode)
	mergeString(&result.Editor.Bell, user.Editor.Bell)
	if user.Editor.MaxLine != 0 {
		result.Editor.MaxLine = user.Editor.MaxLine
	}
	if md.IsDefined("editor", "command_limit") {
		result.Editor.CommandLimit = user.Editor.CommandLimit
	}
	if md.IsDefined("editor", "signals") {
		result.Editor.Signals = user.Editor.Signals
	}

	// History
	if md.IsDefined("history", "size") {
		result.History.Size = user.History.Size
	}
	mergeString(&result.History.File, user.History.File)
	if md.IsDefined("history", "unique") {
		result.History.Unique = user.History.Unique
	}

	// Prompt
	if md.IsDefined("prompt", "text") {
		result.Prompt.Text = user.Prompt.Text
	}
	if md.IsDefined("prompt", "esc") {
		result.Prompt.Esc = user.Prompt.Esc
	}

	// Log
	mergeString(&result.Log.File, user.Log.File)
	mergeString(&result.Log.Level, user.Log.Level)
	if user.Log.MaxSizeMB != 0 {
		result.Log.MaxSizeMB = user.Log.MaxSizeMB
	}
	if md.IsDefined("log", "max_backups") {
		result.Log.MaxBackups = user.Log.MaxBackups
	}

	// Keybindings - override each if set
	for k, v := range user.Keybindings {
		result.Keybindings[k] = v
	}
	result.RC = append(append([]string(nil), defaults.RC...), user.RC...)

	return &result
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Validate checks values that the TOML types cannot.
func (c *Config) Validate() error {
	switch c.Editor.Mode {
	case "emacs", "vi":
	default:
		return errors.Errorf("editor.mode: unknown editor %q", c.Editor.Mode)
	}
	switch c.Editor.Bell {
	case "audible", "visible", "none", "on", "off":
	default:
		return errors.Errorf("editor.bell: unknown style %q", c.Editor.Bell)
	}
	if c.Editor.MaxLine < 0 {
		return errors.Errorf("editor.max_line: %d is negative", c.Editor.MaxLine)
	}
	if c.Editor.CommandLimit < 0 {
		return errors.Errorf("editor.command_limit: %d is negative", c.Editor.CommandLimit)
	}
	if c.History.Size < 0 {
		return errors.Errorf("history.size: %d is negative", c.History.Size)
	}
	if utf8.RuneCountInString(c.Prompt.Esc) > 1 {
		return errors.Errorf("prompt.esc: %q is more than one character", c.Prompt.Esc)
	}
	if _, err := log15.LvlFromString(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// PromptEsc returns the prompt escape character, or 0 for none.
func (c *Config) PromptEsc() rune {
	r, _ := utf8.DecodeRuneInString(c.Prompt.Esc)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# editline configuration
# Save to ~/.config/editline/config.toml and customize
# Only include settings you want to change from defaults

# editrc commands, run after everything else
rc = [
  # "bind ^W ed-delete-prev-word",
  # "setty -d +isig",
]

# Editor settings
[editor]
mode = "emacs"                # "emacs" or "vi"
max_line = 4096               # Longest line in bytes
bell = "audible"              # "audible", "visible" or "none"
command_limit = 10            # User commands allowed (0 = no limit)
signals = true                # Handle interrupt and window resize

# History settings
[history]
size = 100
file = ""                     # Empty = ~/.config/editline/history
unique = false                # Drop a line equal to the previous one

# Prompt settings
[prompt]
text = "> "
esc = ""                      # Text between two esc characters takes no room

# Keybindings in key notation: ^X control, \e escape, \NNN octal
[keybindings]
# "^L" = "ed-clear-screen"
# "\\ep" = "ed-search-prev-history"

# Log settings
[log]
file = ""                     # Empty = no log file
level = "info"                # debug, info, warn, error or crit
max_size_mb = 10
max_backups = 3
`
}

// FormatError formats a configuration error for user display.
func FormatError(err error) string {
	return fmt.Sprintf("Configuration error:\n\n%s", err.Error())
}
