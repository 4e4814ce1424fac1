// Package translit derives the phonetic transliteration key used for fuzzy
// character-alias matching. Two spellings of a name are considered equivalent
// when their keys are equal, so "隆", "long" and "LONG" all resolve to the
// same character once the alias table stores precomputed keys.
package translit

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/cases"
)

var (
	fold = cases.Fold()

	pyArgs = func() pinyin.Args {
		a := pinyin.NewArgs()
		// Keep non-Han runes verbatim instead of dropping them, so mixed
		// Latin/Han aliases still produce a stable key.
		a.Fallback = func(r rune, _ pinyin.Args) []string {
			return []string{string(r)}
		}
		return a
	}()
)

// Key computes the transliteration key of token: trim, Unicode case fold,
// convert each Han rune to its first toneless pinyin reading, drop all
// whitespace. The empty token yields the empty key.
func Key(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}

	var b strings.Builder
	for _, readings := range pinyin.Pinyin(token, pyArgs) {
		if len(readings) > 0 {
			b.WriteString(readings[0])
		}
	}

	folded := fold.String(b.String())
	return strings.Join(strings.Fields(folded), "")
}

// Normalize trims and case-folds a token without transliteration. Used for
// the exact-alias pass before the fuzzy pass.
func Normalize(token string) string {
	return fold.String(strings.TrimSpace(token))
}
