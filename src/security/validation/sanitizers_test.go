package validation

import "testing"

func TestSanitizeTextStripsHTML(t *testing.T) {
	got := SanitizeText(`<script>alert(1)</script>clean breakout`)
	if got != "clean breakout" {
		t.Fatalf("SanitizeText = %q", got)
	}
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1234", "'+1234"},
		{"-risk too high", "'-risk too high"},
		{"@handle", "'@handle"},
		{"plain note", "plain note"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeForFormulaInjection(tc.input); got != tc.want {
			t.Fatalf("SanitizeForFormulaInjection(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestStripUnprintable(t *testing.T) {
	got := StripUnprintable("note\x00with\x07control\tchars\n")
	if got != "notewithcontrol\tchars\n" {
		t.Fatalf("StripUnprintable = %q", got)
	}
}
