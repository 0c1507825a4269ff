package quiz

// Segment is a run of masked text: either literal text or a single placeholder token.
type Segment struct {
	Text  string
	Token bool
}

// Segments splits text into literal runs and placeholder tokens, left to right.
// Tokens are matched as plain substrings.
func Segments(text string) []Segment {
	var out []Segment
	start := 0
	for i := 0; i < len(text); {
		if tok, ok := tokenAt(text, i); ok {
			if i > start {
				out = append(out, Segment{Text: text[start:i]})
			}
			out = append(out, Segment{Text: tok, Token: true})
			i += len(tok)
			start = i
			continue
		}
		i++
	}
	if start < len(text) {
		out = append(out, Segment{Text: text[start:]})
	}
	return out
}

// DistinctTokens returns the placeholder tokens present in text, in table order.
func DistinctTokens(text string) []string {
	seen := make(map[string]bool)
	for _, s := range Segments(text) {
		if s.Token {
			seen[s.Text] = true
		}
	}
	var out []string
	for _, ci := range Categories {
		if seen[ci.Token] {
			out = append(out, ci.Token)
		}
	}
	return out
}

func tokenAt(text string, i int) (string, bool) {
	for _, ci := range Categories {
		n := len(ci.Token)
		if i+n <= len(text) && text[i:i+n] == ci.Token {
			return ci.Token, true
		}
	}
	return "", false
}
