package slides

import (
	"regexp"
	"strings"
)

var (
	breakPattern    = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndPattern = regexp.MustCompile(`(?i)</(p|div)>`)
)

// PlainText converts an HTML slide fragment to plain text, mapping line
// breaks and block ends to newlines. Used by export formats; rendering
// clients consume the HTML as-is.
func PlainText(html string) string {
	text := breakPattern.ReplaceAllString(html, "\n")
	text = blockEndPattern.ReplaceAllString(text, "\n")
	text = htmlPattern.ReplaceAllString(text, "")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
