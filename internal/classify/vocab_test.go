package classify

import (
	"os"
	"path/filepath"
	"testing"
)

const validVocabJSON = `{
	"version": "test-1",
	"strong": ["revise drawing"],
	"medium": ["unclear"],
	"discipline": ["structural"],
	"weak": ["please confirm"],
	"negator": ["no change required"],
	"positive_actions": ["\\bwill\\s+be\\s+clouded\\b"]
}`

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadVocabulary(t *testing.T) {
	v, err := LoadVocabulary(writeVocab(t, validVocabJSON))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Version != "test-1" {
		t.Errorf("version = %q", v.Version)
	}
	if len(v.Strong) != 1 || v.Strong[0] != "revise drawing" {
		t.Errorf("strong = %v", v.Strong)
	}

	m, err := Compile(v)
	if err != nil {
		t.Fatalf("compile loaded vocabulary: %v", err)
	}
	if c := m.Count("Please revise drawing S-200; the note is unclear."); c.Strong != 1 || c.Medium != 1 {
		t.Errorf("counts = %+v", c)
	}
}

func TestLoadVocabularyRejectsMissingFields(t *testing.T) {
	if _, err := LoadVocabulary(writeVocab(t, `{"version": "x"}`)); err == nil {
		t.Fatal("expected a validation error for missing phrase lists")
	}
}

func TestLoadVocabularyRejectsBadTypes(t *testing.T) {
	bad := `{"version": "x", "strong": "not-a-list", "medium": [], "discipline": [], "weak": [], "negator": []}`
	if _, err := LoadVocabulary(writeVocab(t, bad)); err == nil {
		t.Fatal("expected a validation error for a non-array category")
	}
}

func TestLoadVocabularyMissingFile(t *testing.T) {
	if _, err := LoadVocabulary(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestDefaultVocabularyCompiles(t *testing.T) {
	if _, err := Compile(DefaultVocabulary()); err != nil {
		t.Fatalf("default vocabulary must compile: %v", err)
	}
}
