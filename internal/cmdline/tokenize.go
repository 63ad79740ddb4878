// Package cmdline splits freeform command-line strings, as typed by a user,
// into argument vectors.
//
// Windows-style paths are routinely pasted without quoting, so a backslash
// is treated as a hint that a following space may belong to a single
// path-like token ("C:\Program Files\app.exe") rather than separate two
// arguments. There is no quoting grammar; the split is a heuristic.
package cmdline

import "strings"

// Tokenize splits one raw command-line string into an argument vector.
//
// The scan is a single forward pass with one piece of lookahead state: after
// a backslash, a space only separates arguments if the text following it
// does not look like the continuation of a path. "Looks like a path
// continuation" means the lookahead window up to the next space contains
// another backslash, or the token after that next space starts with '-'
// (i.e. the current space sits inside a path whose next break is a flag).
//
//	Tokenize(`C:\Program Files\app.exe --flag`)
//	  => [`C:\Program Files\app.exe`, `--flag`]
//
// Arguments with embedded spaces but no backslashes cannot be recognized;
// they split like any other space-separated words.
func Tokenize(command string) []string {
	runes := []rune(command)
	args := []string{}
	var current strings.Builder
	pathBreak := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\\':
			// The backslash stays in the token; it only arms the
			// path-continuation check for the next space.
			pathBreak = true
			current.WriteRune(r)
		case ' ':
			if pathBreak && continuesPath(runes, i+1) {
				current.WriteRune(r)
			} else if current.Len() > 0 || len(args) > 0 {
				args = append(args, current.String())
				current.Reset()
			}
			pathBreak = false
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// continuesPath reports whether the text starting at pos looks like the
// continuation of a path across the space just before pos: either another
// backslash occurs before the next space, or the next space is immediately
// followed by a '-'-prefixed flag token.
func continuesPath(runes []rune, pos int) bool {
	for j := pos; j < len(runes); j++ {
		switch runes[j] {
		case '\\':
			return true
		case ' ':
			return j+1 < len(runes) && runes[j+1] == '-'
		}
	}
	return false
}
