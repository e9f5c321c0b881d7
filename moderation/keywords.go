package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"chatsphere/domain"
)

//go:embed keywords/*.txt
var keywordFolder embed.FS

// severityTiers lists the keyword files in lookup order: the first tier
// whose automaton matches decides the severity.
var severityTiers = []struct {
	file     string
	severity domain.Severity
}{
	{"keywords/critical.txt", domain.SeverityCritical},
	{"keywords/high.txt", domain.SeverityHigh},
	{"keywords/medium.txt", domain.SeverityMedium},
	{"keywords/low.txt", domain.SeverityLow},
}

// keywordMatcher maps message text to a keyword severity using one
// Aho-Corasick automaton per tier, built over normalized keywords so that
// spacing, punctuation and common leet speak do not defeat the lookup.
type keywordMatcher struct {
	tiers []tierMachine
}

type tierMachine struct {
	severity domain.Severity
	machine  *goahocorasick.Machine
}

func newKeywordMatcher() (*keywordMatcher, error) {
	km := &keywordMatcher{}
	for _, tier := range severityTiers {
		words, err := loadKeywordFile(keywordFolder, tier.file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", tier.file, err)
		}

		patterns := make([][]rune, len(words))
		for i, w := range words {
			patterns[i] = normalizeRunes([]rune(w))
		}

		m := new(goahocorasick.Machine)
		if err := m.Build(patterns); err != nil {
			return nil, fmt.Errorf("building automaton for %s: %w", tier.file, err)
		}
		km.tiers = append(km.tiers, tierMachine{severity: tier.severity, machine: m})
	}
	return km, nil
}

// lookup returns the severity of the highest tier containing a keyword
// found in the text. Tiers are checked critical first, first match wins.
func (k *keywordMatcher) lookup(text string) (domain.Severity, bool) {
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return "", false
	}
	for _, tier := range k.tiers {
		if len(tier.machine.MultiPatternSearch(normalized, true)) > 0 {
			return tier.severity, true
		}
	}
	return "", false
}

// loadKeywordFile reads one keyword list, one entry per line, skipping
// blanks. A scanner handles both \n and \r\n endings.
func loadKeywordFile(fsys embed.FS, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var words []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := string(bytes.TrimSpace([]byte(line)))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		words = append(words, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("keyword file %s is empty", path)
	}
	return words, nil
}

// normalizeRunes lowercases, strips punctuation and spacing, and maps
// common leet speak characters back to their standard counterparts.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
