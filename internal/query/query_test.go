package query

import "testing"

func TestExtractDurationHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect int
	}{
		{
			name:   "minutes",
			input:  "Assessment should be completed in 40 minutes",
			expect: 40,
		},
		{
			name:   "abbreviated minutes",
			input:  "budget is 30 mins per candidate",
			expect: 30,
		},
		{
			name:   "hours",
			input:  "the budget is about 1 hour for each test",
			expect: 60,
		},
		{
			name:   "bare hour suffix",
			input:  "tests within 2h please",
			expect: 120,
		},
		{
			name:   "no hint",
			input:  "I am hiring for Java developers",
			expect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractDurationHint(tt.input); got != tt.expect {
				t.Fatalf("ExtractDurationHint(%q) = %d, expected %d", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFallback(t *testing.T) {
	sq := Fallback("some raw query")

	if sq.Role != "Unknown" {
		t.Fatalf("expected Unknown role, got %q", sq.Role)
	}

	if len(sq.RequiredTestTypes) != 2 || sq.RequiredTestTypes[0] != "K" || sq.RequiredTestTypes[1] != "P" {
		t.Fatalf("expected K and P test types, got %v", sq.RequiredTestTypes)
	}

	if sq.SearchQuery != "some raw query" || sq.Raw != "some raw query" {
		t.Fatalf("expected raw query to be carried through, got %+v", sq)
	}
}
