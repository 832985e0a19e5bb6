// Package normalize converts heterogeneous raw strings extracted from
// Korean job boards into canonical forms. Every function is total and
// idempotent: normalizing an already-canonical value returns it unchanged.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Tech is the result of normalizing one raw tech name.
type Tech struct {
	Original      string `json:"original"`
	Normalized    string `json:"normalized"`
	Category      string `json:"category"`
	WasNormalized bool   `json:"was_normalized"`
}

// TechName maps a raw tech string to its canonical form. Lookup order:
// exact Korean table, lowercased English variant table, case-insensitive
// canonical list. Unrecognized input passes through trimmed with category
// "other".
func TechName(raw string) Tech {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Tech{Original: raw, Normalized: "", Category: CategoryOther}
	}

	if canonical, ok := koreanTechNames[trimmed]; ok {
		return Tech{Original: raw, Normalized: canonical, Category: categoryOf(canonical), WasNormalized: true}
	}

	lower := strings.ToLower(trimmed)
	if canonical, ok := englishVariants[lower]; ok {
		return Tech{Original: raw, Normalized: canonical, Category: categoryOf(canonical), WasNormalized: canonical != trimmed}
	}

	if canonical, ok := canonicalByLower()[lower]; ok {
		return Tech{Original: raw, Normalized: canonical, Category: categoryOf(canonical), WasNormalized: canonical != trimmed}
	}

	return Tech{Original: raw, Normalized: trimmed, Category: CategoryOther, WasNormalized: false}
}

// TechStack normalizes every entry and deduplicates by lowercased
// normalized name, preserving first-seen order.
func TechStack(list []string) []Tech {
	out := make([]Tech, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, raw := range list {
		tech := TechName(raw)
		if tech.Normalized == "" {
			continue
		}
		key := strings.ToLower(tech.Normalized)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tech)
	}
	return out
}

// ScanTechKeywords finds known tech terms inside free text (requirement
// bullets, qualification lines) and returns the deduplicated canonical
// techs in first-match order. English terms are matched on word
// boundaries so "Java" does not fire inside "JavaScript"; Korean terms are
// matched as substrings since particles attach directly to the noun.
func ScanTechKeywords(text string) []Tech {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	type hit struct {
		index int
		tech  Tech
	}
	var hits []hit
	seen := make(map[string]struct{})

	for _, term := range scanTerms() {
		var idx int
		if term.korean {
			idx = strings.Index(text, term.term)
		} else {
			loc := term.pattern.FindStringIndex(lower)
			if loc == nil {
				idx = -1
			} else {
				idx = loc[0]
			}
		}
		if idx < 0 {
			continue
		}
		key := strings.ToLower(term.canonical)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		hits = append(hits, hit{index: idx, tech: Tech{
			Original:      term.term,
			Normalized:    term.canonical,
			Category:      categoryOf(term.canonical),
			WasNormalized: term.canonical != term.term,
		}})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].index < hits[j].index })
	out := make([]Tech, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.tech)
	}
	return out
}

func categoryOf(canonical string) string {
	if cat, ok := canonicalTechs[canonical]; ok {
		return cat
	}
	return CategoryOther
}

var (
	lowerOnce      sync.Once
	lowerCanonical map[string]string
)

func canonicalByLower() map[string]string {
	lowerOnce.Do(func() {
		lowerCanonical = make(map[string]string, len(canonicalTechs))
		for name := range canonicalTechs {
			lowerCanonical[strings.ToLower(name)] = name
		}
	})
	return lowerCanonical
}

// scanTerm is one vocabulary entry for free-text scanning.
type scanTerm struct {
	term      string
	canonical string
	korean    bool
	pattern   *regexp.Regexp
}

var (
	scanOnce sync.Once
	scanList []scanTerm
)

// nonWord bounds English term matches so "java" does not fire inside
// "javascript". '+', '#', and '.' count as word characters (C++, C#,
// Next.js).
const nonWord = `[^a-z0-9+#.]`

func scanTerms() []scanTerm {
	scanOnce.Do(func() {
		add := func(term, canonical string, korean bool) {
			st := scanTerm{term: term, canonical: canonical, korean: korean}
			if !korean {
				quoted := regexp.QuoteMeta(strings.ToLower(term))
				st.pattern = regexp.MustCompile(`(^|` + nonWord + `)` + quoted + `($|` + nonWord + `)`)
			}
			scanList = append(scanList, st)
		}
		for name := range canonicalTechs {
			add(name, name, false)
		}
		for variant, canonical := range englishVariants {
			// Two-letter abbreviations are too ambiguous in prose.
			if len(variant) <= 2 {
				continue
			}
			add(variant, canonical, false)
		}
		for korean, canonical := range koreanTechNames {
			if len([]rune(korean)) < 2 {
				continue
			}
			add(korean, canonical, true)
		}
		// Longer terms first so "spring boot" wins over "spring".
		sort.SliceStable(scanList, func(i, j int) bool {
			return len(scanList[i].term) > len(scanList[j].term)
		})
	})
	return scanList
}
