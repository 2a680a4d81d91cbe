package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "contains null byte",
			input: "hel\x00lo",
			want:  "hello",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePostgresText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("héllo", 3); got != "hél" {
		t.Fatalf("expected %q, got %q", "hél", got)
	}
	if got := TruncateRunes("short", 10); got != "short" {
		t.Fatalf("expected unchanged value, got %q", got)
	}
	if got := TruncateRunes("anything", 0); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{
			name:  "collapses whitespace",
			input: "a  b\n\nc",
			limit: 50,
			want:  "a b c",
		},
		{
			name:  "truncates at word boundary",
			input: "the quick brown fox jumps",
			limit: 12,
			want:  "the quick...",
		},
		{
			name:  "short input unchanged",
			input: "hello",
			limit: 10,
			want:  "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Snippet(tt.input, tt.limit)
			if got != tt.want {
				t.Fatalf("unexpected snippet: got %q, want %q", got, tt.want)
			}
		})
	}
}
