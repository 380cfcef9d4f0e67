package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed vocabulary.schema.json
var vocabularySchema string

// Vocabulary is the phrase table the matchers are compiled from. It is loaded
// once at startup and shared read-only across workers.
type Vocabulary struct {
	Version string `json:"version"`

	// Strong: unambiguous evidence a drawing change occurred or is required.
	Strong []string `json:"strong"`
	// Medium: ambiguity/coordination language.
	Medium []string `json:"medium"`
	// Discipline: structural/steel/concrete/foundation vocabulary that
	// signals engineering substance but not by itself a required change.
	Discipline []string `json:"discipline"`
	// Weak: generic request/reference language.
	Weak []string `json:"weak"`
	// Negator: explicit statements that no drawing change is needed.
	Negator []string `json:"negator"`

	// PositiveActions are regex patterns, each tested present/absent.
	PositiveActions []string `json:"positive_actions"`
}

// DefaultVocabulary is the curated built-in phrase table.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Version: "2025-08",
		Strong: []string{
			"discrepancy", "discrepancies",
			"revise drawing", "revise drawings", "revise the drawing",
			"revised drawing", "drawing revision",
			"dimension conflict", "dimension error",
			"conflict between", "conflicts with",
			"reissue", "reissued", "superseded",
			"new detail", "replace detail",
			"issued for revision", "will be clouded",
			"omission", "omitted from the drawings",
			"incorrect dimension", "does not fit",
		},
		Medium: []string{
			"clarification needed", "clarification required",
			"coordination issue", "coordination required", "coordination conflict",
			"connection not shown", "not shown on plan", "not shown on the drawings",
			"not indicated", "not specified", "not dimensioned",
			"unclear", "ambiguous",
			"does not match", "mismatch",
			"field condition", "as-built condition",
			"interference",
		},
		Discipline: []string{
			"structural", "steel", "concrete", "foundation", "footing",
			"rebar", "reinforcement", "reinforcing",
			"anchor bolt", "anchor bolts", "base plate", "embed plate",
			"shear wall", "moment frame", "grade beam", "slab on grade",
			"masonry", "joist", "girder", "column base",
			"weld", "bolted connection",
		},
		Weak: []string{
			"please confirm", "please advise", "please clarify", "please verify",
			"sheet reference", "refer to sheet", "see sheet", "see detail",
			"see specification", "per plans", "per drawings",
			"for your review", "request for information",
		},
		Negator: []string{
			"no drawing change required", "no drawing changes required",
			"no change required", "no changes required",
			"no change to drawings", "no changes to drawings",
			"no changes to the drawings", "no changes to contract documents",
			"no revision required", "clarification only",
			"for record only", "for information only",
			"no impact to drawings", "no impact to the drawings",
			"no action required",
			"does not affect the drawings", "does not affect drawings",
		},
		PositiveActions: []string{
			`\bcloud(?:ed|ing)?\s+(?:change\s+)?(?:on|in)\s+(?:sheet|set)\b`,
			`\brevis(?:e|ed|ion)\s+(?:drawing|sheet|plan|detail)s?\b`,
			`\bsee\s+attached\s+(?:sketch|sk)[- ]?\d+\b`,
			`\bissue\s+(?:an?\s*)?sk[- ]?\d+\b`,
			`\bdelta\s*#?\s*\d+\b`,
			`\b(?:add(?:ed)?|modify|relocate|move|shift)\s+(?:beam|column|wall|door|opening|footing|grid)\b`,
			`\b(?:reissued|re-?issued?)\s+(?:sheet|drawing)\b`,
			`\bwill\s+be\s+clouded\b`,
		},
	}
}

// LoadVocabulary reads a vocabulary JSON file and validates it against the
// embedded schema before use, so a malformed table fails the run at startup
// instead of silently matching nothing.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("vocabulary.schema.json", bytes.NewReader([]byte(vocabularySchema))); err != nil {
		return Vocabulary{}, fmt.Errorf("load vocabulary schema: %w", err)
	}
	schema, err := compiler.Compile("vocabulary.schema.json")
	if err != nil {
		return Vocabulary{}, fmt.Errorf("compile vocabulary schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Vocabulary{}, fmt.Errorf("validate vocabulary: %w", err)
	}

	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocabulary: %w", err)
	}
	return v, nil
}
