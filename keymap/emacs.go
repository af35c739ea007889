package keymap

// Arrow and editing keys shared by every table. Both the CSI and SS3 forms
// are bound since terminals differ in which one they send.
var terminalKeys = map[string]string{
	`\e[A`:  "ed-prev-history",
	`\e[B`:  "ed-next-history",
	`\e[C`:  "ed-next-char",
	`\e[D`:  "ed-prev-char",
	`\eOA`:  "ed-prev-history",
	`\eOB`:  "ed-next-history",
	`\eOC`:  "ed-next-char",
	`\eOD`:  "ed-prev-char",
	`\e[H`:  "ed-move-to-beg",
	`\e[F`:  "ed-move-to-end",
	`\eOH`:  "ed-move-to-beg",
	`\eOF`:  "ed-move-to-end",
	`\e[1~`: "ed-move-to-beg",
	`\e[4~`: "ed-move-to-end",
	`\e[3~`: "ed-delete-next-char",
}

var emacsKeys = map[string]string{
	"^@": "em-set-mark",
	"^A": "ed-move-to-beg",
	"^B": "ed-prev-char",
	"^C": "ed-tty-sigint",
	"^D": "em-delete-or-list",
	"^E": "ed-move-to-end",
	"^F": "ed-next-char",
	"^H": "em-delete-prev-char",
	"^I": "ed-insert",
	"^J": "ed-newline",
	"^K": "ed-kill-line",
	"^L": "ed-clear-screen",
	"^M": "ed-newline",
	"^N": "ed-next-history",
	"^P": "ed-prev-history",
	"^R": "ed-redisplay",
	"^T": "ed-transpose-chars",
	"^U": "em-kill-line",
	"^V": "ed-quoted-insert",
	"^W": "em-kill-region",
	"^Y": "em-yank",
	"^_": "em-undo",
	"^?": "em-delete-prev-char",

	"^X^X": "em-exchange-mark",
	"^X^U": "em-undo",

	`\e^H`: "ed-delete-prev-word",
	`\e^?`: "ed-delete-prev-word",
	`\eb`:  "ed-prev-word",
	`\eB`:  "ed-prev-word",
	`\ec`:  "em-capitol-case",
	`\eC`:  "em-capitol-case",
	`\ed`:  "em-delete-next-word",
	`\eD`:  "em-delete-next-word",
	`\ef`:  "em-next-word",
	`\eF`:  "em-next-word",
	`\el`:  "em-lower-case",
	`\eL`:  "em-lower-case",
	`\en`:  "ed-search-next-history",
	`\eN`:  "ed-search-next-history",
	`\ep`:  "ed-search-prev-history",
	`\eP`:  "ed-search-prev-history",
	`\eu`:  "em-upper-case",
	`\eU`:  "em-upper-case",
	`\ew`:  "em-copy-region",
	`\eW`:  "em-copy-region",
	`\e-`:  "em-universal-argument",
}

// EmacsTable returns a fresh copy of the emacs defaults.
func EmacsTable() *Table {
	t := buildTable(Emacs, emacsKeys, terminalKeys)
	for d := '0'; d <= '9'; d++ {
		t.Bind("\x1b"+string(d), "ed-argument-digit")
	}
	return t
}

// buildTable parses the notation keys of each map into a new table.
// The maps are package constants, so a parse failure is a programming error.
func buildTable(name string, maps ...map[string]string) *Table {
	t := NewTable(name)
	for _, m := range maps {
		for notation, cmd := range m {
			seq, err := Parse(notation)
			if err != nil {
				panic(err)
			}
			t.Bind(seq, cmd)
		}
	}
	return t
}
