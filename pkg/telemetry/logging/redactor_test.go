package logging

import "testing"

func TestRedactString(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "query key first param",
			input: "https://api.os.uk/maps?key=ABC123&srs=3857",
			want:  "https://api.os.uk/maps?key=***&srs=3857",
		},
		{
			name:  "query key later param",
			input: "https://api.os.uk/maps?srs=3857&key=ABC123",
			want:  "https://api.os.uk/maps?srs=3857&key=***",
		},
		{
			name:  "bearer token",
			input: "Authorization: Bearer abc.def.ghi",
			want:  "Authorization: Bearer ***",
		},
		{
			name:  "no credentials untouched",
			input: "https://api.os.uk/maps?collection=ngd-base",
			want:  "https://api.os.uk/maps?collection=ngd-base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactArgs(t *testing.T) {
	r := NewRedactor()

	t.Run("sensitive key name blanks value", func(t *testing.T) {
		got := r.RedactArgs("api_key", "super-secret", "url", "/tiles")
		if got[1] != "***" {
			t.Errorf("api_key value = %v, want ***", got[1])
		}
		if got[3] != "/tiles" {
			t.Errorf("url value = %v, want untouched", got[3])
		}
	})

	t.Run("url value gets pattern redaction", func(t *testing.T) {
		got := r.RedactArgs("url", "https://x.test/a?key=SECRET")
		if got[1] != "https://x.test/a?key=***" {
			t.Errorf("url value = %v", got[1])
		}
	})

	t.Run("non-string values pass through", func(t *testing.T) {
		got := r.RedactArgs("status", 200)
		if got[1] != 200 {
			t.Errorf("status value = %v, want 200", got[1])
		}
	})
}
