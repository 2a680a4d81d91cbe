package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type claim struct {
		Subject string `json:"subject"`
		Value   string `json:"value,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  claim
	}{
		{
			name:  "valid json object",
			input: `{"subject":"narrator"}`,
			want:  claim{Subject: "narrator"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{subject: 'narrator'}`,
			want:  claim{Subject: "narrator"},
		},
		{
			name:  "trailing comma",
			input: `{"subject":"narrator",}`,
			want:  claim{Subject: "narrator"},
		},
		{
			name:  "missing endbracket",
			input: `{"subject":"narrator`,
			want:  claim{Subject: "narrator"},
		},
		{
			name:  "double-encoded",
			input: `"{\"subject\": \"narrator\"}"`,
			want:  claim{Subject: "narrator"},
		},
		{
			name:  "duplicate leading brace",
			input: `{{"subject":"narrator"}`,
			want:  claim{Subject: "narrator"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got claim
			if err := UnmarshalFlexible(tt.input, &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected result: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	var out struct {
		Subject string `json:"subject"`
	}
	if err := UnmarshalFlexible("", &out); err == nil {
		t.Fatal("expected error for empty input")
	}
}
