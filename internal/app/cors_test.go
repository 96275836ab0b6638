package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"dash.siteforge.dev", "*.siteforge.app", "localhost:*"}

	allowed := []string{
		"https://dash.siteforge.dev",
		"https://acme.siteforge.app",
		"http://localhost:5173",
	}
	for _, origin := range allowed {
		assert.True(t, originAllowed(patterns, origin), "origin %q", origin)
	}

	denied := []string{
		"https://evil.example.com",
		"https://siteforge.dev",
		"https://dash.siteforge.dev.evil.com",
	}
	for _, origin := range denied {
		assert.False(t, originAllowed(patterns, origin), "origin %q", origin)
	}
}

func TestOriginAllowedBareHost(t *testing.T) {
	assert.True(t, originAllowed([]string{"dash.siteforge.dev"}, "dash.siteforge.dev"))
	assert.False(t, originAllowed(nil, "https://dash.siteforge.dev"))
}
