package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Seaside Cottage  ",
			want:  "Seaside Cottage",
		},
		{
			name:  "multiple spaces between words",
			input: "Seaside    Cottage",
			want:  "Seaside Cottage",
		},
		{
			name:  "tabs and newlines",
			input: "Seaside\t\nCottage",
			want:  "Seaside Cottage",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Spa™ ",
			want:  "Café & Spa™",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trims edges",
			input: "  great stay!  ",
			want:  "great stay!",
		},
		{
			name:  "keeps line breaks",
			input: "line one\nline two",
			want:  "line one\nline two",
		},
		{
			name:  "strips control characters",
			input: "clean\x00\x08 text",
			want:  "clean text",
		},
		{
			name:  "whitespace only becomes empty",
			input: " \t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeComment(tt.input); got != tt.want {
				t.Errorf("NormalizeComment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
