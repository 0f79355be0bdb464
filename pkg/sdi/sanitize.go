package sdi

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latinFold rimuove i segni diacritici decomponendo in NFD ed eliminando i
// combining marks ("perché" -> "perche"). Il SdI scarta i file con caratteri
// fuori dal set Latin di base in diversi campi anagrafici.
var latinFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize normalizza un testo libero per l'inserimento nei campi FatturaPA:
// traslittera i diacritici, sostituisce i caratteri di controllo con spazi e
// comprime gli spazi multipli.
func Sanitize(s string) string {
	folded, _, err := transform.String(latinFold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := false
	for _, r := range folded {
		if r < 0x20 || r == 0x7f {
			r = ' '
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Truncate taglia il testo alla lunghezza massima ammessa dal campo XML
// (es. Denominazione max 80, Descrizione linea max 1000).
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
