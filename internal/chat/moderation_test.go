package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeratorMatchesCaseInsensitiveSubstring(t *testing.T) {
	m := NewModerator([]string{"heck"})

	assert.True(t, m.ContainsBanned("heck"))
	assert.True(t, m.ContainsBanned("what the HECK"))
	assert.True(t, m.ContainsBanned("aheckb"), "substring inside a longer word still matches")
	assert.False(t, m.ContainsBanned("hello there"))
}

func TestModeratorFilterReplacesWholeMessage(t *testing.T) {
	m := NewModerator([]string{"heck"})

	assert.Equal(t, RedactedText, m.Filter("well HECK that hurt"))
	assert.Equal(t, "all good", m.Filter("all good"))
}

func TestLoadModeratorSkipsBlankLinesAndTrims(t *testing.T) {
	input := "  heck  \n\n\nDARN\n   \n"
	m, err := LoadModerator(strings.NewReader(input))
	require.NoError(t, err)

	assert.True(t, m.ContainsBanned("Heck"))
	assert.True(t, m.ContainsBanned("darn it"))
	assert.False(t, m.ContainsBanned(""), "blank terms must not match everything")
}

func TestModeratorEmptyListAllowsEverything(t *testing.T) {
	m := NewModerator(nil)
	assert.Equal(t, "anything goes", m.Filter("anything goes"))
}
