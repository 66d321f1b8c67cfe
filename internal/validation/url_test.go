package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndNormalize(t *testing.T) {
	v := NewServiceURLValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain http",
			input: "http://localhost:4000",
			want:  "http://localhost:4000",
		},
		{
			name:  "https with path",
			input: "https://www.omdbapi.com/",
			want:  "https://www.omdbapi.com",
		},
		{
			name:  "scheme defaulted to https",
			input: "api.example.com",
			want:  "https://api.example.com",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  http://localhost:4000  ",
			want:  "http://localhost:4000",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "angle brackets",
			input:   "http://example.com/<script>",
			wantErr: true,
		},
		{
			// Scheme defaulting runs before scheme validation, so a non-http
			// scheme ends up treated as a hostname rather than rejected.
			name:  "non-http scheme gets prefixed",
			input: "ftp://example.com",
			want:  "https://ftp://example.com",
		},
		{
			name:    "no host",
			input:   "http://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAndNormalizeMaxLength(t *testing.T) {
	v := NewServiceURLValidator()
	long := "http://example.com/" + strings.Repeat("a", v.MaxLength)
	_, err := v.ValidateAndNormalize(long)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestValidateAndNormalizeLocalhostPolicy(t *testing.T) {
	v := NewServiceURLValidator()
	v.AllowLocalhost = false

	for _, input := range []string{
		"http://localhost:4000",
		"http://127.0.0.1:4000",
		"http://api.localhost",
	} {
		_, err := v.ValidateAndNormalize(input)
		assert.Error(t, err, "input %q", input)
	}

	got, err := v.ValidateAndNormalize("https://api.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", got)
}
