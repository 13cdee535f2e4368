package karma

import (
	"regexp"
	"strings"
)

// tokenPattern matches a karma token: a run of non-whitespace characters, or
// a straight/curly double-quoted phrase, immediately followed by ++ or --.
var tokenPattern = regexp.MustCompile(`(\S+|"[^"]*"|“[^”]*”)(\+\+|--)`)

// quoteStripper removes the quote characters a phrase may be wrapped in.
var quoteStripper = strings.NewReplacer(`"`, "", "“", "", "”", "")

// Token is one extracted karma token: the bare entity text and the signed
// delta its suffix encodes.
type Token struct {
	Entity string
	Delta  int64
}

// ScanTokens extracts every karma token from a message, left to right,
// duplicates preserved. Messages with no tokens yield nil. A token whose
// entity is empty after stripping (e.g. a bare "++") is still emitted; the
// dispatcher drops it.
func ScanTokens(text string) []Token {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}

	tokens := make([]Token, 0, len(matches))
	for _, match := range matches {
		delta := int64(1)
		if match[2] == "--" {
			delta = -1
		}
		tokens = append(tokens, Token{
			Entity: quoteStripper.Replace(match[1]),
			Delta:  delta,
		})
	}
	return tokens
}
