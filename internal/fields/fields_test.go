package fields

import (
	"reflect"
	"testing"
)

func TestRFINumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RFI 913 - Storm Pipe", "RFI-913"},
		{"RFI-913", "RFI-913"},
		{"RFI_913 LE Response", "RFI-913"},
		{"RFI#913", "RFI-913"},
		{"RFI913", "RFI-913"},
		{"rfi 007", "RFI-7"},
		{"RFI 001", "RFI-1"},
		{"Structural Sketches", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RFINumber(tt.in); got != tt.want {
			t.Errorf("RFINumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	if got := Title("Short question about anchor bolts. More text follows."); got != "Short question about anchor bolts" {
		t.Errorf("Title = %q", got)
	}
	if got := Title(""); got != "" {
		t.Errorf("Title(empty) = %q", got)
	}
	long := ""
	for i := 0; i < 40; i++ {
		long += "wordword "
	}
	if got := Title(long); len(got) > 180 {
		t.Errorf("Title length = %d, want capped at 180", len(got))
	}
}

func TestDates(t *testing.T) {
	text := "Date Submitted: 01/02/2024 reminder sent 01/02/2024 Date Responded: January 15, 2024"
	got := Dates(text)
	want := []string{"01/02/2024", "January 15, 2024"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dates = %v, want %v", got, want)
	}
	if d := DateSubmitted(text); d != "01/02/2024" {
		t.Errorf("DateSubmitted = %q", d)
	}
	if d := DateResponded(text); d != "January 15, 2024" {
		t.Errorf("DateResponded = %q", d)
	}
	if d := DateResponded("only one date 3/4/2024 here"); d != "" {
		t.Errorf("DateResponded with one date = %q, want empty", d)
	}
}

func TestParties(t *testing.T) {
	text := "To: General Contractor From: Structural Engineer Date: 01/02/2024"
	if got := ToParty(text); got != "General Contractor" {
		t.Errorf("ToParty = %q", got)
	}
	if got := FromParty(text); got != "Structural Engineer" {
		t.Errorf("FromParty = %q", got)
	}
	if got := ToParty("no labels here"); got != "" {
		t.Errorf("ToParty without label = %q, want empty", got)
	}
}

func TestQuestionResponse(t *testing.T) {
	text := "Question: Where does the storm pipe route at grid 4? Response: Route per SK-5, no drawing change."
	if got := Question(text); got != "Where does the storm pipe route at grid 4?" {
		t.Errorf("Question = %q", got)
	}
	if got := Response(text); got != "Route per SK-5, no drawing change." {
		t.Errorf("Response = %q", got)
	}
}

func TestDetailRefs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "mixed notations",
			in:   "See 8/S303 and Detail 5 on S401, also SK-235 and sk 12.",
			want: "8/S303, 5/S401, SK-235, SK-12",
		},
		{
			name: "sheet normalization",
			in:   "Detail 3 at A-501",
			want: "3/A501",
		},
		{
			name: "dedupe repeats",
			in:   "SK-235 shown twice: SK 235",
			want: "SK-235",
		},
		{
			name: "no references",
			in:   "plain prose with no sheets",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetailRefs(tt.in); got != tt.want {
				t.Errorf("DetailRefs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
