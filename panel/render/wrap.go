package render

import "strings"

// wrapLines breaks s into at most maxLines lines of at most cols runes,
// wrapping on spaces and honoring explicit newlines. Words longer than a
// line are chopped.
func wrapLines(s string, cols, maxLines int) []string {
	var out []string
	add := func(line string) bool {
		if len(out) >= maxLines {
			return false
		}
		out = append(out, line)
		return true
	}
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			if !add("") {
				break
			}
			continue
		}
		var line []rune
		for _, w := range words {
			r := []rune(w)
			for len(r) > cols {
				if len(line) > 0 {
					if !add(string(line)) {
						return out
					}
					line = nil
				}
				if !add(string(r[:cols])) {
					return out
				}
				r = r[cols:]
			}
			switch {
			case len(line) == 0:
				line = r
			case len(line)+1+len(r) <= cols:
				line = append(line, ' ')
				line = append(line, r...)
			default:
				if !add(string(line)) {
					return out
				}
				line = r
			}
		}
		if len(line) > 0 && !add(string(line)) {
			break
		}
	}
	return out
}
