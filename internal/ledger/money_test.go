package ledger

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantErr   bool
	}{
		{name: "integer", input: "5000", wantCents: 500000},
		{name: "dot separator", input: "12.34", wantCents: 1234},
		{name: "comma separator", input: "12,34", wantCents: 1234},
		{name: "third decimal rounds down", input: "12.344", wantCents: 1234},
		{name: "third decimal rounds up", input: "12.345", wantCents: 1235},
		{name: "zero is allowed", input: "0", wantCents: 0},
		{name: "leading dot", input: ".50", wantCents: 50},
		{name: "trailing dot", input: "7.", wantCents: 700},
		{name: "surrounding whitespace", input: "  42.00  ", wantCents: 4200},
		{name: "empty", input: "", wantErr: true},
		{name: "lone separator", input: ".", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "explicit plus", input: "+5", wantErr: true},
		{name: "letters", input: "12a.50", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
		{name: "overflow", input: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got.Cents != tt.wantCents {
				t.Errorf("ParseAmount(%q) = %d cents, want %d", tt.input, got.Cents, tt.wantCents)
			}
		})
	}
}

func TestMoneyUnits(t *testing.T) {
	m := Money{Cents: 1234}
	if got := m.Units(); got != 12.34 {
		t.Errorf("Units() = %v, want 12.34", got)
	}
}
