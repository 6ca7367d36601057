package mpesa

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"0110123456", "254110123456"},
		{"+254110123456", "254110123456"},
		// No validation: malformed input passes through malformed
		{"12345", "12345"},
		{"", ""},
		{"0", "254"},
		{"+", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizePhone(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"0712345678", "+254712345678", "254712345678", "garbage"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		twice := NormalizePhone(once)
		if once != twice {
			t.Errorf("NormalizePhone not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
