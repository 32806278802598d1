package sellers

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BaseUsername monta firstname.lastname sem acentos, em minúsculas e apenas com letras e dígitos
func BaseUsername(firstName, lastName string) string {
	first := normalizeName(firstName)
	last := normalizeName(lastName)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + "." + last
}

func normalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NextUsername escolhe o username livre para base, dado os usernames existentes com o mesmo prefixo.
// Em caso de colisão o sufixo é o maior sufixo numérico existente + 1.
func NextUsername(base string, existing []string) string {
	taken := false
	highest := 0
	for _, u := range existing {
		if u == base {
			taken = true
			continue
		}
		rest, ok := strings.CutPrefix(u, base)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 || strconv.Itoa(n) != rest {
			continue
		}
		taken = true
		if n > highest {
			highest = n
		}
	}

	if !taken {
		return base
	}
	return base + strconv.Itoa(highest+1)
}
