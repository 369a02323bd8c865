package agent

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean object is untouched",
			raw:  `{"name":"Apex Roofing"}`,
			want: `{"name":"Apex Roofing"}`,
		},
		{
			name: "markdown fence",
			raw:  "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "prose around object",
			raw:  `Here is the profile you asked for: {"industry": "Roofing"} Hope that helps!`,
			want: `{"industry": "Roofing"}`,
		},
		{
			name: "array fallback",
			raw:  "The services are:\n[\"Repair\", \"Replacement\"]",
			want: `["Repair", "Replacement"]`,
		},
		{
			name: "no json returns trimmed input",
			raw:  "  sorry, I cannot help with that  ",
			want: "sorry, I cannot help with that",
		},
		{
			name: "object preferred over array",
			raw:  `[1,2] then {"k":"v"}`,
			want: `{"k":"v"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.raw); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractJSON_Idempotent(t *testing.T) {
	clean := `{"costRange":"$6,000-$8,500","baseMinCost":6000}`
	once := ExtractJSON(clean)
	twice := ExtractJSON(once)
	if once != clean || twice != once {
		t.Errorf("not idempotent: %q -> %q -> %q", clean, once, twice)
	}
}
