package model

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		id        int64
		username  string
		firstName string
		lastName  string
		expected  string
	}{
		{1, "ana", "Ana", "Novak", "Ana"},
		{2, "bor", "", "Kos", "bor"},
		{3, "", "", "Kos", "Kos"},
		{4, "", "", "", "User 4"},
		// Whitespace-only names are ignored.
		{5, "  ", "   ", "", "User 5"},
		{6, " cene ", "", "", "cene"},
	}

	for _, tt := range tests {
		got := DisplayName(tt.id, tt.username, tt.firstName, tt.lastName)
		if got != tt.expected {
			t.Errorf("DisplayName(%d, %q, %q, %q) = %q, want %q",
				tt.id, tt.username, tt.firstName, tt.lastName, got, tt.expected)
		}
	}
}
