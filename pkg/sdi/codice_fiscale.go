package sdi

import (
	"fmt"
	"unicode"
)

// ValidatePartitaIVA valida una partita IVA italiana (11 cifre) con il
// controllo di Luhn previsto dall'art. 35 DPR 633/72.
// Accetta il valore con o senza prefisso "IT" e con separatori (spazi, punti).
func ValidatePartitaIVA(piva string) error {
	digits := extractDigits(stripCountryPrefix(piva))
	if len(digits) != 11 {
		return fmt.Errorf("sdi: la partita IVA deve avere 11 cifre, trovate %d", len(digits))
	}
	var sum int
	for i, d := range digits {
		n := int(d - '0')
		if i%2 == 0 { // posizioni dispari (1-based)
			sum += n
		} else { // posizioni pari: raddoppio con riduzione
			n *= 2
			if n > 9 {
				n -= 9
			}
			sum += n
		}
	}
	if sum%10 != 0 {
		return fmt.Errorf("sdi: cifra di controllo della partita IVA non valida")
	}
	return nil
}

// Tabelle di conversione per il carattere di controllo del codice fiscale
// (DM 23/12/1976). I caratteri in posizione dispari (1-based) usano la tabella
// dispari, quelli in posizione pari il valore ordinale semplice.
var cfOddValues = map[byte]int{
	'0': 1, '1': 0, '2': 5, '3': 7, '4': 9, '5': 13, '6': 15, '7': 17, '8': 19, '9': 21,
	'A': 1, 'B': 0, 'C': 5, 'D': 7, 'E': 9, 'F': 13, 'G': 15, 'H': 17, 'I': 19, 'J': 21,
	'K': 2, 'L': 4, 'M': 18, 'N': 20, 'O': 11, 'P': 3, 'Q': 6, 'R': 8, 'S': 12, 'T': 14,
	'U': 16, 'V': 10, 'W': 22, 'X': 25, 'Y': 24, 'Z': 23,
}

func cfEvenValue(b byte) int {
	if b >= '0' && b <= '9' {
		return int(b - '0')
	}
	return int(b - 'A')
}

// ValidateCodiceFiscale valida un codice fiscale di persona fisica (16 caratteri
// alfanumerici) verificando il carattere di controllo. Per i soggetti con
// partita IVA usata come codice fiscale (11 cifre) delega a ValidatePartitaIVA.
func ValidateCodiceFiscale(cf string) error {
	cleaned := upperAlnum(cf)
	if len(cleaned) == 11 {
		return ValidatePartitaIVA(cleaned)
	}
	if len(cleaned) != 16 {
		return fmt.Errorf("sdi: il codice fiscale deve avere 16 caratteri, trovati %d", len(cleaned))
	}
	var sum int
	for i := 0; i < 15; i++ {
		b := cleaned[i]
		if (i+1)%2 == 1 { // posizione dispari 1-based
			v, ok := cfOddValues[b]
			if !ok {
				return fmt.Errorf("sdi: carattere non valido %q nel codice fiscale", b)
			}
			sum += v
		} else {
			sum += cfEvenValue(b)
		}
	}
	expected := byte('A' + sum%26)
	if cleaned[15] != expected {
		return fmt.Errorf("sdi: carattere di controllo del codice fiscale non valido: atteso %c, ricevuto %c", expected, cleaned[15])
	}
	return nil
}

// ComputePartitaIVACheckDigit calcola la cifra di controllo per le prime 10
// cifre della partita IVA. Utile per completare il numero prima dell'invio.
func ComputePartitaIVACheckDigit(piva string) (byte, error) {
	digits := extractDigits(stripCountryPrefix(piva))
	if len(digits) < 10 {
		return 0, fmt.Errorf("sdi: servono almeno 10 cifre per calcolare la cifra di controllo, trovate %d", len(digits))
	}
	var sum int
	for i := 0; i < 10; i++ {
		n := int(digits[i] - '0')
		if i%2 == 1 {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
	}
	return byte('0' + (10-sum%10)%10), nil
}

func stripCountryPrefix(s string) string {
	if len(s) >= 2 && (s[0] == 'I' || s[0] == 'i') && (s[1] == 'T' || s[1] == 't') {
		return s[2:]
	}
	return s
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}

func upperAlnum(s string) string {
	var out []byte
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			out = append(out, byte(r))
		case r >= 'A' && r <= 'Z':
			out = append(out, byte(r))
		case r >= 'a' && r <= 'z':
			out = append(out, byte(r-'a'+'A'))
		}
	}
	return string(out)
}
