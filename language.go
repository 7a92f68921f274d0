package sdsget

import (
	"sort"
	"strings"
)

// LanguageOption is one entry of a product page's language selector.
type LanguageOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// NormalizeLanguages canonicalizes a caller-supplied language list: entries
// are trimmed, case-folded, deduplicated and sorted. Empty entries are
// dropped. Normalizing an already-normalized list returns the same set.
func NormalizeLanguages(languages []string) []string {
	seen := make(map[string]struct{}, len(languages))
	var out []string
	for _, lang := range languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
