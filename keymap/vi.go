package keymap

var viInsertKeys = map[string]string{
	"^C": "ed-tty-sigint",
	"^D": "vi-list-or-eof",
	"^H": "vi-delete-prev-char",
	"^I": "ed-insert",
	"^J": "ed-newline",
	"^L": "ed-clear-screen",
	"^M": "ed-newline",
	"^R": "ed-redisplay",
	"^U": "vi-kill-line-prev",
	"^V": "ed-quoted-insert",
	"^W": "ed-delete-prev-word",
	"^?": "vi-delete-prev-char",
	`\e`: "vi-command-mode",
}

// Operators (d, c, y) and the replace commands read the keys that follow
// them themselves, so only their first key is bound here.
var viCommandKeys = map[string]string{
	"^C": "ed-tty-sigint",
	"^D": "vi-list-or-eof",
	"^H": "ed-prev-char",
	"^J": "ed-newline",
	"^L": "ed-clear-screen",
	"^M": "ed-newline",
	"^N": "ed-next-history",
	"^P": "ed-prev-history",
	"^R": "ed-redisplay",
	"^?": "ed-prev-char",
	" ":  "ed-next-char",
	"$":  "ed-move-to-end",
	"+":  "ed-next-history",
	"-":  "ed-prev-history",
	"0":  "vi-zero",
	`\^`: "ed-move-to-beg",
	"~":  "vi-change-case",
	"A":  "vi-add-at-eol",
	"B":  "vi-prev-big-word",
	"C":  "vi-change-to-eol",
	"D":  "ed-kill-line",
	"E":  "vi-end-big-word",
	"I":  "vi-insert-at-bol",
	"P":  "vi-paste-prev",
	"R":  "vi-replace-mode",
	"S":  "vi-substitute-line",
	"W":  "vi-next-big-word",
	"X":  "ed-delete-prev-char",
	"a":  "vi-add",
	"b":  "vi-prev-word",
	"c":  "vi-change-meta",
	"d":  "vi-delete-meta",
	"e":  "vi-end-word",
	"h":  "ed-prev-char",
	"i":  "vi-insert",
	"j":  "ed-next-history",
	"k":  "ed-prev-history",
	"l":  "ed-next-char",
	"p":  "vi-paste-next",
	"r":  "vi-replace-char",
	"s":  "vi-substitute-char",
	"u":  "vi-undo",
	"w":  "vi-next-word",
	"x":  "ed-delete-next-char",
	"y":  "vi-yank",
}

// ViInsertTable returns a fresh copy of the vi insert-mode defaults.
func ViInsertTable() *Table {
	return buildTable("vi-insert", viInsertKeys, terminalKeys)
}

// ViCommandTable returns a fresh copy of the vi command-mode defaults.
func ViCommandTable() *Table {
	t := buildTable("vi-command", viCommandKeys, terminalKeys)
	for d := '1'; d <= '9'; d++ {
		t.Bind(string(d), "ed-argument-digit")
	}
	return t
}
