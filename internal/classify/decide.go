package classify

// Basis names the rule that determined a classification outcome. Retained on
// every catalog row for human audit.
type Basis string

const (
	BasisStrongSignal        Basis = "StrongSignal"
	BasisMediumCombo         Basis = "MediumCombo"
	BasisDisciplineAndSketch Basis = "DisciplineAndSketch"
	BasisWeakSignal          Basis = "WeakSignal"
	BasisNegatedOnly         Basis = "NegatedOnly"
	BasisInsufficientSignal  Basis = "InsufficientSignal"
)

// Decision is the classifier verdict for one document text.
type Decision struct {
	RequiresRevision bool
	Basis            Basis
	// MatchedKeywords is the evidence list, first-seen order, deduplicated.
	MatchedKeywords []string
}

// Decide applies the ordered rule cascade to the category counts. First
// matching rule wins. Total: every input maps to exactly one basis.
//
// Rules run from highest-precision evidence down, so a stronger signal
// anywhere in the document short-circuits weaker or contradicting ones.
func Decide(c Counts) (bool, Basis) {
	switch {
	case c.Strong == 0 && c.Medium == 0 && c.Discipline == 0 && c.Weak == 0 &&
		c.Negator == 0 && c.SketchRefs == 0 && c.PositiveActions == 0:
		return false, BasisInsufficientSignal
	case c.Negator > 0 && c.Strong == 0 && c.Medium == 0:
		// Explicit "no change" language dominates absent positive technical
		// evidence.
		return false, BasisNegatedOnly
	case c.Strong > 0:
		return true, BasisStrongSignal
	case c.Medium >= 2 || (c.Medium >= 1 && c.Discipline >= 1):
		// Coordination language alone is weak; repeated, or paired with
		// domain specificity, it becomes actionable.
		return true, BasisMediumCombo
	case c.Discipline >= 2 && (c.SketchRefs > 0 || c.PositiveActions > 0):
		// Heavy technical vocabulary plus a concrete sketch/action reference
		// implies a real change even without explicit revision language.
		return true, BasisDisciplineAndSketch
	case c.Weak > 0:
		return false, BasisWeakSignal
	default:
		return false, BasisInsufficientSignal
	}
}

// Classify is the full text path: count, decide, and collect evidence.
func (m *Matchers) Classify(text string) Decision {
	counts := m.Count(text)
	requires, basis := Decide(counts)
	return Decision{
		RequiresRevision: requires,
		Basis:            basis,
		MatchedKeywords:  m.MatchedPhrases(text),
	}
}
