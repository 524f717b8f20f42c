package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{
			name:   "valid E.164 format",
			input:  "+244923456789",
			region: "AO",
			want:   "+244923456789",
		},
		{
			name:   "national number uses region",
			input:  "923 456 789",
			region: "AO",
			want:   "+244923456789",
		},
		{
			name:   "lowercase region",
			input:  "923456789",
			region: "ao",
			want:   "+244923456789",
		},
		{
			name:   "international number ignores region",
			input:  "+1 (650) 253-0000",
			region: "AO",
			want:   "+16502530000",
		},
		{
			name:   "leading and trailing spaces",
			input:  "  +244 923-456-789  ",
			region: "AO",
			want:   "+244923456789",
		},
		{
			name:   "empty string",
			input:  "",
			region: "AO",
			want:   "",
		},
		{
			name:   "only whitespace",
			input:  "   ",
			region: "AO",
			want:   "",
		},
		{
			name:   "letters",
			input:  "not-a-phone",
			region: "AO",
			want:   "",
		},
		{
			name:   "too short",
			input:  "+2441",
			region: "AO",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.region)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("923 456 789", "AO")
	if twice := NormalizePhone(once, "AO"); twice != once {
		t.Errorf("not idempotent: %q then %q", once, twice)
	}
}
