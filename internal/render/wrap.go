package render

import "strings"

// wrapBuffer keeps borderline lines from touching the column edge.
const wrapBuffer = 2.0

// wrapToWidth reflows text at word boundaries so every line measures at most
// maxWidth (minus a small buffer). A single word wider than the column is
// hard-split at the last character that fits. The measure function maps a
// string to its rendered width, keeping the algorithm independent of any PDF
// backend.
func wrapToWidth(text string, maxWidth float64, measure func(string) float64) []string {
	safeWidth := maxWidth - wrapBuffer
	words := strings.Fields(text)
	var lines []string
	current := ""

	for _, word := range words {
		test := word
		if current != "" {
			test = current + " " + word
		}
		if measure(test) <= safeWidth {
			current = test
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		// Hard-split a word that alone exceeds the column.
		for measure(word) > safeWidth && len(word) > 1 {
			cut := len(word)
			for i := 1; i <= len(word); i++ {
				if measure(word[:i]) > safeWidth {
					cut = i - 1
					break
				}
			}
			if cut < 1 {
				cut = 1
			}
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}

	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
