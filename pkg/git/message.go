package git

import "strings"

// Footer marks commits written by pocket.
const Footer = "Committed-by: pocket"

// AppendFooter adds Footer to msg, separated by a blank line, unless it is
// already there.
func AppendFooter(msg string) string {
	msg = strings.TrimRight(msg, "\n")
	if strings.Contains(msg, Footer) {
		return msg
	}
	if msg == "" {
		return Footer
	}
	return msg + "\n\n" + Footer
}
