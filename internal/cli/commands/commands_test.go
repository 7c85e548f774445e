package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/tablesnap/internal/cli/config"
	"github.com/leapstack-labs/tablesnap/internal/cli/testutil"
	"github.com/leapstack-labs/tablesnap/internal/snap"
	"github.com/leapstack-labs/tablesnap/pkg/table"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupProject chdirs into a test project and loads a config with the given
// output mode. a.csv and b.csv are added next to the shared fixtures.
func setupProject(t *testing.T, outputMode string) string {
	t.Helper()
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x,y\n1,2\n3,4\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("p;q\n5;6\n"), 0o600))

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Setenv("TABLESNAP_OUTPUT", outputMode)
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	return dir
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewRenderCommand(t *testing.T) {
	cmd := NewRenderCommand()

	assert.Equal(t, "render <input>...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"out", "out-dir", "jobs", "watch"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("out").Shorthand)
}

func TestNewPreviewCommand(t *testing.T) {
	cmd := NewPreviewCommand()

	assert.Equal(t, "preview <input>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	for _, flag := range []string{"addr", "max-body-bytes"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history [id]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("limit"))
}

func TestRender_WritesImagesAndHistory(t *testing.T) {
	dir := setupProject(t, "json")

	out, err := execute(t, NewRenderCommand(), "a.csv")
	require.NoError(t, err)

	var outcomes []renderOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 1)
	assert.Equal(t, "a.csv", outcomes[0].Source)
	assert.Equal(t, 2, outcomes[0].Columns)
	assert.Equal(t, 2, outcomes[0].Rows)
	assert.NotEmpty(t, outcomes[0].ID)

	_, err = os.Stat(filepath.Join(dir, config.DefaultOutDir, "a.png"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, config.DefaultHistoryPath))
	require.NoError(t, err)
}

func TestRender_OutRequiresSingleInput(t *testing.T) {
	setupProject(t, "json")

	_, err := execute(t, NewRenderCommand(), "a.csv", "b.csv", "-o", "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out requires exactly one input")
}

func TestRender_ExplicitOut(t *testing.T) {
	dir := setupProject(t, "markdown")

	out, err := execute(t, NewRenderCommand(), "a.csv", "-o", "nested/custom.png")
	require.NoError(t, err)
	assert.Contains(t, out, "custom.png")
	assert.Contains(t, out, "| a.csv |")

	_, err = os.Stat(filepath.Join(dir, "nested", "custom.png"))
	require.NoError(t, err)
}

func TestRender_PartialFailure(t *testing.T) {
	setupProject(t, "json")

	out, err := execute(t, NewRenderCommand(), "a.csv", "missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 inputs failed")

	var outcomes []renderOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 2)
	assert.Empty(t, outcomes[0].Error)
	assert.Contains(t, outcomes[1].Error, "missing.csv")
}

func TestRender_WatchNeedsLocalInput(t *testing.T) {
	setupProject(t, "json")
	cmdCtx := &CommandContext{
		Cfg:      config.Defaults(),
		Logger:   config.GetLogger(context.Background()),
		Renderer: testutil.NewTestRendererJSON().Renderer,
	}
	jobs := []snap.Job{{Source: "https://example.com/a.csv", Output: "a.png"}}

	err := watchRender(context.Background(), cmdCtx, newRunner(cmdCtx, nil), jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch requires at least one local input")
}

func TestBuildJobs(t *testing.T) {
	jobs := buildJobs([]string{"data/a.csv", "https://x.test/b.tsv"}, "", "out")
	assert.Equal(t, []snap.Job{
		{Source: "data/a.csv", Output: filepath.Join("out", "a.png")},
		{Source: "https://x.test/b.tsv", Output: filepath.Join("out", "b.png")},
	}, jobs)

	jobs = buildJobs([]string{"a.csv"}, "chosen.png", "out")
	assert.Equal(t, "chosen.png", jobs[0].Output)
}

func TestRenderAll_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var jobs []snap.Job
	for _, name := range []string{"one", "two", "three", "four"} {
		src := filepath.Join(dir, name+".csv")
		require.NoError(t, os.WriteFile(src, []byte("h\n"+name), 0o600))
		jobs = append(jobs, snap.Job{Source: src, Output: filepath.Join(dir, name+".png")})
	}

	outcomes := renderAll(context.Background(), snap.NewRunner(nil, nil, nil), jobs, snap.Options{}, 2)
	require.Len(t, outcomes, 4)
	for i, o := range outcomes {
		assert.Equal(t, jobs[i].Source, o.Source)
		assert.Empty(t, o.Error)
		assert.Equal(t, 1, o.Rows)
	}
}

func TestReportRender_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()

	require.NoError(t, reportRender(tr.Renderer, []renderOutcome{
		{Source: "a.csv", Output: "a.png", Width: 40, Height: 30},
		{Source: "b.csv", Output: "b.png", Error: "boom"},
	}))
	assert.Equal(t, "✓ a.csv → a.png 40x30\n✗ b.csv boom\n", tr.Output())
	testutil.AssertNoANSI(t, tr.Output())
}

func TestReportRender_Markdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()

	require.NoError(t, reportRender(tr.Renderer, []renderOutcome{
		{Source: "a.csv", Output: "a.png", Width: 40, Height: 30},
	}))
	assert.Contains(t, tr.Output(), "| a.csv | a.png | 40x30 | ok |")
	testutil.AssertValidMarkdown(t, tr.Output())
}

func TestPreview_JSON(t *testing.T) {
	setupProject(t, "json")
	t.Setenv("TABLESNAP_SEPARATOR", ";")
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	out, err := execute(t, NewPreviewCommand(), "b.csv")
	require.NoError(t, err)

	var got PreviewOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, PreviewOutput{
		Source:    "b.csv",
		Separator: ";",
		Columns:   []string{"p", "q"},
		Rows:      []PreviewRow{{Line: 2, Values: []string{"5", "6"}}},
	}, got)
}

func TestPreview_Markdown(t *testing.T) {
	setupProject(t, "markdown")

	out, err := execute(t, NewPreviewCommand(), "a.csv")
	require.NoError(t, err)
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, "# a.csv")
	assert.Contains(t, out, "- **Rows:** 2")
	assert.Contains(t, out, "| 3 | 4 |")
}

func TestPreview_Missing(t *testing.T) {
	setupProject(t, "json")

	_, err := execute(t, NewPreviewCommand(), "nope.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load nope.csv")
}

func TestPreview_SharedFixture(t *testing.T) {
	setupProject(t, "json")

	out, err := execute(t, NewPreviewCommand(), testutil.CommaFile)
	require.NoError(t, err)

	var got PreviewOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"name", "age"}, got.Columns)
	assert.Len(t, got.Rows, 2)
}

func TestPreviewOutput_EmptyTable(t *testing.T) {
	got := previewOutput("empty.csv", table.Parse("", table.ParseOptions{}))
	assert.Equal(t, []string{}, got.Columns)
	assert.Empty(t, got.Rows)
}

func TestHistory_ListAndShow(t *testing.T) {
	setupProject(t, "json")

	_, err := execute(t, NewRenderCommand(), "a.csv")
	require.NoError(t, err)
	_, err = execute(t, NewRenderCommand(), "a.csv")
	require.NoError(t, err)

	out, err := execute(t, NewHistoryCommand(), "--limit", "1")
	require.NoError(t, err)

	var entries []struct {
		ID     string `json:"id"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Source)

	out, err = execute(t, NewHistoryCommand(), entries[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, entries[0].ID)
}

func TestHistory_Disabled(t *testing.T) {
	setupProject(t, "json")
	t.Setenv("TABLESNAP_HISTORY_ENABLED", "false")
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	_, err = execute(t, NewHistoryCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestHistory_NegativeLimit(t *testing.T) {
	setupProject(t, "json")

	_, err := execute(t, NewHistoryCommand(), "--limit=-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--limit must not be negative")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("1234567890"))
	assert.Equal(t, "abc", shortID("abc"))
}
