package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// sketchRefCap bounds how much repeated SK references can contribute.
const sketchRefCap = 3

var (
	// SK-235, sk 235A, SK235
	sketchRe = regexp.MustCompile(`(?i)\bSK[-\s]?\d{1,4}[A-Z]?\b`)

	// References into the construction documents themselves.
	docRefRe = regexp.MustCompile(`(?i)\b(?:contract\s+(?:documents?|drawings?)|construction\s+(?:documents?|drawings?)|drawings?|sheets?|details?|plans?|elevations?|sections?|specs?|specifications?)\b`)
)

// Matchers holds the compiled vocabularies. Built once, immutable, safe to
// share across workers.
type Matchers struct {
	strong     *categoryMatcher
	medium     *categoryMatcher
	discipline *categoryMatcher
	weak       *categoryMatcher
	negator    *categoryMatcher
	positive   []*regexp.Regexp
}

// Counts are distinct-phrase counts per vocabulary for one document text,
// plus the auxiliary detector results.
type Counts struct {
	Strong     int
	Medium     int
	Discipline int
	Weak       int
	Negator    int

	// SketchRefs is an occurrence count (not deduplicated), capped at 3.
	SketchRefs int
	// PositiveActions is the number of distinct action patterns that matched.
	PositiveActions int
	// DocRef reports whether the text references the contract documents.
	DocRef bool
}

// Compile builds matchers from a vocabulary. Phrase lists become a single
// case-insensitive alternation with word boundaries; whitespace inside a
// phrase matches any whitespace run so line wrapping in extracted text does
// not break multi-word phrases.
func Compile(v Vocabulary) (*Matchers, error) {
	m := &Matchers{}
	var err error
	if m.strong, err = compileCategory("strong", v.Strong); err != nil {
		return nil, err
	}
	if m.medium, err = compileCategory("medium", v.Medium); err != nil {
		return nil, err
	}
	if m.discipline, err = compileCategory("discipline", v.Discipline); err != nil {
		return nil, err
	}
	if m.weak, err = compileCategory("weak", v.Weak); err != nil {
		return nil, err
	}
	if m.negator, err = compileCategory("negator", v.Negator); err != nil {
		return nil, err
	}
	for _, p := range v.PositiveActions {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile positive action %q: %w", p, err)
		}
		m.positive = append(m.positive, re)
	}
	return m, nil
}

// MustCompile is Compile for the built-in vocabulary, where a pattern error
// is a programming bug.
func MustCompile(v Vocabulary) *Matchers {
	m, err := Compile(v)
	if err != nil {
		panic(err)
	}
	return m
}

// Count runs every matcher over text and returns the distinct-phrase counts.
func (m *Matchers) Count(text string) Counts {
	c := Counts{
		Strong:     m.strong.countDistinct(text),
		Medium:     m.medium.countDistinct(text),
		Discipline: m.discipline.countDistinct(text),
		Weak:       m.weak.countDistinct(text),
		Negator:    m.negator.countDistinct(text),
		DocRef:     docRefRe.MatchString(text),
	}
	if n := len(sketchRe.FindAllString(text, -1)); n > sketchRefCap {
		c.SketchRefs = sketchRefCap
	} else {
		c.SketchRefs = n
	}
	for _, re := range m.positive {
		if re.MatchString(text) {
			c.PositiveActions++
		}
	}
	return c
}

// MatchedPhrases returns the distinct normalized phrases matched by the
// strong, medium, discipline, and weak vocabularies, in scan order. Negator
// phrases are excluded: they argue against the decision they annotate.
func (m *Matchers) MatchedPhrases(text string) []string {
	type hit struct {
		pos    int
		phrase string
	}
	var hits []hit
	for _, cm := range []*categoryMatcher{m.strong, m.medium, m.discipline, m.weak} {
		for _, loc := range cm.re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{pos: loc[0], phrase: normalizePhrase(text[loc[0]:loc[1]])})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]struct{}, len(hits))
	var out []string
	for _, h := range hits {
		if _, ok := seen[h.phrase]; ok {
			continue
		}
		seen[h.phrase] = struct{}{}
		out = append(out, h.phrase)
	}
	return out
}

type categoryMatcher struct {
	name string
	re   *regexp.Regexp
}

func compileCategory(name string, phrases []string) (*categoryMatcher, error) {
	if len(phrases) == 0 {
		// \b\B cannot match anywhere: an empty category matches nothing
		return &categoryMatcher{name: name, re: regexp.MustCompile(`\b\B`)}, nil
	}
	alts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		alts = append(alts, phrasePattern(p))
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile %s vocabulary: %w", name, err)
	}
	return &categoryMatcher{name: name, re: re}, nil
}

// phrasePattern quotes a phrase, with internal whitespace widened to \s+ and
// apostrophe variants unified.
func phrasePattern(phrase string) string {
	words := strings.Fields(phrase)
	parts := make([]string, 0, len(words))
	for _, w := range words {
		q := regexp.QuoteMeta(w)
		q = strings.ReplaceAll(q, `'`, `['’]`)
		parts = append(parts, q)
	}
	return strings.Join(parts, `\s+`)
}

func (c *categoryMatcher) countDistinct(text string) int {
	matches := c.re.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(matches))
	for _, raw := range matches {
		seen[normalizePhrase(raw)] = struct{}{}
	}
	return len(seen)
}

// normalizePhrase lowercases, collapses internal whitespace, and unifies
// apostrophes so "Revise  Drawing" and "revise drawing" count once.
func normalizePhrase(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.ReplaceAll(s, "’", "'")
}
