package transcript

import "strings"

// Wrap fills text greedily into lines of at most width columns. Whitespace
// runs collapse to single spaces. A word longer than width sits alone on its
// own line and is never split.
func Wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if width <= 0 {
		return strings.Join(words, " ")
	}

	var b strings.Builder
	lineLen := 0
	for _, w := range words {
		n := len([]rune(w))
		switch {
		case lineLen == 0:
		case lineLen+1+n <= width:
			b.WriteByte(' ')
			lineLen++
		default:
			b.WriteByte('\n')
			lineLen = 0
		}
		b.WriteString(w)
		lineLen += n
	}
	return b.String()
}
