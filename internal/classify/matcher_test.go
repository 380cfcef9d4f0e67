package classify

import (
	"reflect"
	"testing"
)

func defaultMatchers(t *testing.T) *Matchers {
	t.Helper()
	m, err := Compile(DefaultVocabulary())
	if err != nil {
		t.Fatalf("compile default vocabulary: %v", err)
	}
	return m
}

func TestCountDistinctPhrases(t *testing.T) {
	m := defaultMatchers(t)

	c := m.Count("Unclear. unclear? UNCLEAR!")
	if c.Medium != 1 {
		t.Errorf("medium = %d, want 1 (repeats of one phrase count once)", c.Medium)
	}

	c = m.Count("The layout is unclear and the spacing is not dimensioned.")
	if c.Medium != 2 {
		t.Errorf("medium = %d, want 2 distinct phrases", c.Medium)
	}
}

func TestCountWhitespaceFlexible(t *testing.T) {
	m := defaultMatchers(t)

	c := m.Count("clarification \t  needed before proceeding")
	if c.Medium != 1 {
		t.Errorf("medium = %d, want 1 across a whitespace run", c.Medium)
	}
}

func TestCountSketchRefCap(t *testing.T) {
	m := defaultMatchers(t)

	c := m.Count("See SK-1, SK-2, SK-3, SK-4 and sk 5.")
	if c.SketchRefs != 3 {
		t.Errorf("sketchRefs = %d, want capped at 3", c.SketchRefs)
	}

	c = m.Count("See SK-12 and SK-13.")
	if c.SketchRefs != 2 {
		t.Errorf("sketchRefs = %d, want 2 below the cap", c.SketchRefs)
	}
}

func TestCountDocRef(t *testing.T) {
	m := defaultMatchers(t)

	if c := m.Count("Refer to the contract drawings."); !c.DocRef {
		t.Error("docRef = false, want true")
	}
	if c := m.Count("No references here."); c.DocRef {
		t.Error("docRef = true, want false")
	}
}

func TestCountPositiveActions(t *testing.T) {
	m := defaultMatchers(t)

	c := m.Count("We will revise drawing S-301 and the change will be clouded.")
	if c.PositiveActions != 2 {
		t.Errorf("positiveActions = %d, want 2 distinct patterns", c.PositiveActions)
	}
}

func TestMatchedPhrasesDedupedInScanOrder(t *testing.T) {
	m := defaultMatchers(t)

	got := m.MatchedPhrases("Revise drawing due to discrepancy. Then revise   drawing again.")
	want := []string{"revise drawing", "discrepancy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("matched = %v, want %v", got, want)
	}
}

func TestMatchedPhrasesExcludeNegators(t *testing.T) {
	m := defaultMatchers(t)

	got := m.MatchedPhrases("No change required, clarification only.")
	if len(got) != 0 {
		t.Errorf("matched = %v, want none for negator-only text", got)
	}
}

func TestClassifyScenarios(t *testing.T) {
	m := defaultMatchers(t)

	tests := []struct {
		name    string
		text    string
		want    bool
		wantWhy Basis
	}{
		{
			name:    "strong revision language",
			text:    "There is a discrepancy between S-301 and the foundation plan. Please revise drawing accordingly.",
			want:    true,
			wantWhy: BasisStrongSignal,
		},
		{
			name:    "clarification only response",
			text:    "This response is for clarification only. No drawing change required.",
			want:    false,
			wantWhy: BasisNegatedOnly,
		},
		{
			name:    "two medium signals",
			text:    "The anchor bolt layout is unclear and the spacing is not dimensioned.",
			want:    true,
			wantWhy: BasisMediumCombo,
		},
		{
			name:    "discipline plus sketch reference",
			text:    "Provide steel angle at the concrete curb per SK-12.",
			want:    true,
			wantWhy: BasisDisciplineAndSketch,
		},
		{
			name:    "weak request only",
			text:    "Please confirm the door hardware schedule.",
			want:    false,
			wantWhy: BasisWeakSignal,
		},
		{
			name:    "empty text",
			text:    "",
			want:    false,
			wantWhy: BasisInsufficientSignal,
		},
		{
			name:    "unrelated prose",
			text:    "The meeting minutes were distributed on Monday.",
			want:    false,
			wantWhy: BasisInsufficientSignal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := m.Classify(tt.text)
			if d.RequiresRevision != tt.want || d.Basis != tt.wantWhy {
				t.Errorf("Classify(%q) = (%v, %s), want (%v, %s)",
					tt.text, d.RequiresRevision, d.Basis, tt.want, tt.wantWhy)
			}
		})
	}
}

func TestCompileEmptyCategoryMatchesNothing(t *testing.T) {
	m, err := Compile(Vocabulary{Version: "test", Strong: []string{"discrepancy"}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	c := m.Count("unclear coordination issue structural steel please confirm")
	if c.Medium != 0 || c.Discipline != 0 || c.Weak != 0 || c.Negator != 0 {
		t.Errorf("empty categories matched: %+v", c)
	}
	if c.Strong != 0 {
		t.Errorf("strong = %d, want 0", c.Strong)
	}
}

func TestCompileApostropheVariants(t *testing.T) {
	m, err := Compile(Vocabulary{Version: "test", Strong: []string{"owner's change"}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if c := m.Count("Per the owner’s change notice."); c.Strong != 1 {
		t.Errorf("strong = %d, want 1 for the curly apostrophe variant", c.Strong)
	}
}

func TestCompileRejectsBadPositivePattern(t *testing.T) {
	_, err := Compile(Vocabulary{Version: "test", PositiveActions: []string{"("}})
	if err == nil {
		t.Fatal("expected an error for an invalid pattern")
	}
}
