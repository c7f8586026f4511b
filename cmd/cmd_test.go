package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("RLPRO_CONFIG", "")
	t.Setenv("RLPRO_LLM_PROVIDER", "")
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "OLLAMA_HOST", "OPENAI_BASE_URL"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	return rootCmd.Execute()
}

func TestIngestGenerateGrade(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	src := filepath.Join(dir, "memory.txt")
	pages := []string{
		"1 Encoding\n\nEncoding turns input into memory traces. It needs attention.",
		"2 Retrieval\n\nRetrieval brings traces back. Testing strengthens them.",
	}
	require.NoError(t, os.WriteFile(src, []byte(strings.Join(pages, "\f")), 0o644))

	require.NoError(t, execute(t, "", "ingest", "--db", dbPath, src))
	require.NoError(t, execute(t, "", "cards", "generate", "--db", dbPath, "--no-llm", "memory"))

	ctx := context.Background()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	doc, err := st.GetDocument(ctx, "memory")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount)
	assert.Len(t, doc.Sections, 2)

	segs, err := st.ListSegments(ctx, "memory")
	require.NoError(t, err)
	require.NotEmpty(t, segs)

	cards, err := st.ListCards(ctx, "memory")
	require.NoError(t, err)
	require.Len(t, cards, len(segs))
	for _, c := range cards {
		assert.True(t, c.IsFallback())
	}
	require.NoError(t, st.Close())

	target := cards[0]
	require.NoError(t, execute(t, "", "grade", "--db", dbPath, target.ID, target.Answer))

	st, err = store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	weights, err := st.LoadWeights(ctx)
	require.NoError(t, err)
	var found bool
	for _, e := range weights {
		if e.ID == target.ID {
			found = true
			assert.InDelta(t, 0.8, e.Weight, 1e-9)
		}
	}
	assert.True(t, found)

	attempts, err := st.ListAttempts(ctx, "")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].IsCorrect)
	assert.Equal(t, target.ID, attempts[0].CardID)
}

func TestPracticeStopsOnQuit(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	src := filepath.Join(dir, "notes.txt")
	// A line on every page is page furniture, so each page needs its own text.
	pages := []string{
		"Spacing spreads practice over time. It helps retention.",
		"Interleaving mixes related topics. It sharpens discrimination.",
	}
	require.NoError(t, os.WriteFile(src, []byte(strings.Join(pages, "\f")), 0o644))

	require.NoError(t, execute(t, "", "ingest", "--db", dbPath, src))
	require.NoError(t, execute(t, "", "cards", "generate", "--db", dbPath, "--no-llm", "notes"))
	require.NoError(t, execute(t, "something unrelated\nq\n", "practice", "--db", dbPath))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	segs, err := st.ListSegments(context.Background(), "notes")
	require.NoError(t, err)
	require.NotEmpty(t, segs)
	assert.Contains(t, segs[0].Text, "Spacing spreads practice")

	attempts, err := st.ListAttempts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].IsCorrect)
	assert.InDelta(t, 1.5, attempts[0].WeightAfter, 1e-9)
}
