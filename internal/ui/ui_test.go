package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar(t *testing.T) {
	assert.Equal(t, 30, lipgloss.Width(Bar(2, 2, 30)))
	assert.Equal(t, 15, lipgloss.Width(Bar(1, 2, 30)))
	assert.Equal(t, 1, lipgloss.Width(Bar(0.01, 3, 30)), "small weights stay visible")
	assert.Empty(t, Bar(0, 2, 30))
	assert.Empty(t, Bar(1, 0, 30))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "memory-00…", Truncate("memory-0001-definition", 10))
	assert.Equal(t, "记忆…", Truncate("记忆编码与提取", 3))
}

func TestWriterStripsColorForPlainOutput(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	var buf bytes.Buffer
	_, err := fmt.Fprintln(Writer(&buf), Verdict(true), Table(
		[]string{"Card", "Weight"},
		[][]string{{"memory-0001", "0.80"}, {"memory-0002", "1.50"}},
		1,
	))
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.True(t, strings.HasPrefix(out, "✓ correct"))
	for _, s := range []string{"Card", "Weight", "memory-0002", "1.50"} {
		assert.Contains(t, out, s)
	}
}
