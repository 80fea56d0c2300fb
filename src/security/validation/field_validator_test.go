package validation

import (
	"errors"
	"testing"
)

func TestValidateInstrument(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"plain ticker", "AAPL", true},
		{"futures root", "ES", true},
		{"forex pair with slash", "EUR/USD", true},
		{"crypto with dash", "BTC-USD", true},
		{"dotted exchange suffix", "VOW3.DE", true},
		{"empty is allowed", "", true},
		{"whitespace only is allowed", "   ", true},
		{"embedded space", "E S", false},
		{"formula injection attempt", "=CMD()", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateInstrument(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("ValidateInstrument(%q) = %v, want nil", tc.input, err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("ValidateInstrument(%q) = nil, want error", tc.input)
				}
				if !errors.Is(err, ErrValidationFailed) {
					t.Fatalf("error %v does not wrap ErrValidationFailed", err)
				}
			}
		})
	}
}

func TestValidateDirection(t *testing.T) {
	for _, valid := range []string{"BUY", "SELL", "buy", " sell "} {
		if err := ValidateDirection(valid); err != nil {
			t.Fatalf("ValidateDirection(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "HOLD", "LONG"} {
		if err := ValidateDirection(invalid); err == nil {
			t.Fatalf("ValidateDirection(%q) = nil, want error", invalid)
		}
	}
}

func TestValidateOutcome(t *testing.T) {
	for _, valid := range []string{"", "WIN", "LOSS", "BREAKEVEN", "win"} {
		if err := ValidateOutcome(valid); err != nil {
			t.Fatalf("ValidateOutcome(%q) = %v, want nil", valid, err)
		}
	}
	if err := ValidateOutcome("DRAW"); err == nil {
		t.Fatal("ValidateOutcome(DRAW) = nil, want error")
	}
}

func TestValidateTimestampString(t *testing.T) {
	ts, err := ValidateTimestampString("2026-03-02T14:30:00Z", "opened_at")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.IsZero() {
		t.Fatal("parsed timestamp is zero")
	}

	for _, invalid := range []string{"", "2026-03-02", "02/03/2026 14:30"} {
		if _, err := ValidateTimestampString(invalid, "opened_at"); err == nil {
			t.Fatalf("ValidateTimestampString(%q) = nil, want error", invalid)
		}
	}
}

func TestValidateTimeZone(t *testing.T) {
	for _, valid := range []string{"", "UTC", "Europe/Lisbon", "America/New_York"} {
		if err := ValidateTimeZone(valid); err != nil {
			t.Fatalf("ValidateTimeZone(%q) = %v, want nil", valid, err)
		}
	}
	if err := ValidateTimeZone("Mars/Olympus_Mons"); err == nil {
		t.Fatal("ValidateTimeZone(Mars/Olympus_Mons) = nil, want error")
	}
}

func TestValidateCurrencyCode(t *testing.T) {
	for _, valid := range []string{"", "USD", "eur"} {
		if err := ValidateCurrencyCode(valid); err != nil {
			t.Fatalf("ValidateCurrencyCode(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"US", "DOLLAR", "U$D"} {
		if err := ValidateCurrencyCode(invalid); err == nil {
			t.Fatalf("ValidateCurrencyCode(%q) = nil, want error", invalid)
		}
	}
}
