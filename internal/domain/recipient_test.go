package domain

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "local form", input: "0701234567", want: "+256701234567"},
		{name: "international form", input: "+256701234567", want: "+256701234567"},
		{name: "double zero prefix", input: "00256701234567", want: "+256701234567"},
		{name: "country code without plus", input: "256701234567", want: "+256701234567"},
		{name: "spaces and dashes", input: "+256 701-234-567", want: "+256701234567"},
		{name: "parentheses and dots", input: "(0701) 234.567", want: "+256701234567"},
		{name: "letters rejected", input: "07o1234567", wantErr: ErrInvalidPhone},
		{name: "too short", input: "0123", wantErr: ErrInvalidPhone},
		{name: "too long", input: "+2567012345678901234", wantErr: ErrInvalidPhone},
		{name: "empty", input: "", wantErr: ErrInvalidPhone},
		{name: "plus in the middle rejected", input: "070+1234567", wantErr: ErrInvalidPhone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input, "+256")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NormalizePhone(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	once, err := NormalizePhone("0701234567", "+256")
	if err != nil {
		t.Fatalf("first normalization failed: %v", err)
	}
	twice, err := NormalizePhone(once, "+256")
	if err != nil {
		t.Fatalf("second normalization failed: %v", err)
	}
	if once != twice {
		t.Errorf("normalization is not idempotent: %q != %q", once, twice)
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+256701234567", "+2567****567"},
		{"+14155552671", "+1415****671"},
		{"0701", "****"},
		{"", "****"},
	}

	for _, tt := range tests {
		if got := MaskPhone(tt.input); got != tt.want {
			t.Errorf("MaskPhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"jdoe@example.com", "j***@example.com"},
		{"a@b.co", "a***@b.co"},
		{"no-at-sign", "****"},
		{"@example.com", "****"},
	}

	for _, tt := range tests {
		if got := MaskEmail(tt.input); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"jdoe@example.com", "a.b+tag@sub.example.org"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", e, err)
		}
	}

	invalid := []string{"", "plainaddress", "missing@domain@twice.com", "John Doe <jdoe@example.com>"}
	for _, e := range invalid {
		if err := ValidateEmail(e); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("ValidateEmail(%q) = %v, want ErrInvalidEmail", e, err)
		}
	}
}
