package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "https://slcount.netlify.app", "https://slcount.netlify.app"},
		{"surrounding whitespace", "  https://slcount.netlify.app  ", "https://slcount.netlify.app"},
		{"leading comma", ",https://slcount.netlify.app", "https://slcount.netlify.app"},
		{"trailing comma", "https://slcount.netlify.app,", "https://slcount.netlify.app"},
		{"commas and spaces", " ,https://slcount.netlify.app, ", "https://slcount.netlify.app"},
		{"editor scheme", "tw-editor://.", "tw-editor://."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOrigin(tt.in))
		})
	}
}

func TestOriginPolicyExactMatch(t *testing.T) {
	policy := NewOriginPolicy([]string{
		"https://slcount.netlify.app",
		"tw-editor://.",
	})

	assert.True(t, policy.Allowed("https://slcount.netlify.app"))
	assert.True(t, policy.Allowed(" ,https://slcount.netlify.app, "))
	assert.True(t, policy.Allowed("tw-editor://."))

	assert.False(t, policy.Allowed("https://evil.example"))
	assert.False(t, policy.Allowed("https://slcount.netlify.app.evil.example"))
	assert.False(t, policy.Allowed(""))
}
