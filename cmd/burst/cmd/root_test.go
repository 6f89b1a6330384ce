package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/burst/internal/config"
	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/storage"
)

const exportHTML = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3>Dev</H3>
    <DL><p>
        <DT><A HREF="https://go.dev" ADD_DATE="1700000000">Go</A>
        <DT><A HREF="https://github.com" ADD_DATE="1700000001">GitHub</A>
    </DL><p>
    <DT><H3>Reading</H3>
    <DL><p>
        <DT><A HREF="https://go.dev" ADD_DATE="1700000002">The Go Programming Language</A>
    </DL><p>
</DL><p>`

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

// setupHome points the config at a temp dir and returns the data file path.
func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	dataPath := filepath.Join(dir, "bookmarks.json")
	c := config.DefaultConfig()
	c.DataPath = dataPath
	cfgFile := filepath.Join(dir, "config.yaml")
	assert.NilError(t, config.Save(cfgFile, &c))
	t.Setenv(config.EnvPath, cfgFile)
	return dataPath
}

// run executes the CLI with fresh flag values.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func importSample(t *testing.T) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "bookmarks.html")
	assert.NilError(t, os.WriteFile(file, []byte(exportHTML), 0644))

	out, err := run(t, "import", file)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Imported 3 bookmarks, 2 folders"))
}

func findByTitle(t *testing.T, dataPath, title string) *model.Node {
	t.Helper()
	raw, err := storage.NewJSONStorage(dataPath).GetTree(context.Background())
	assert.NilError(t, err)
	for _, n := range model.FlattenAll(model.Normalize(raw)) {
		if n.Title == title {
			return n
		}
	}
	t.Fatalf("no node titled %q", title)
	return nil
}

func TestCLI_DupesByURL(t *testing.T) {
	setupHome(t)
	importSample(t)

	out, err := run(t, "dupes")

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "https://go.dev"))
	assert.Assert(t, is.Contains(out, "The Go Programming Language"))
	assert.Assert(t, is.Contains(out, "Reading"))
	assert.Assert(t, !bytes.Contains([]byte(out), []byte("https://github.com")))
}

func TestCLI_DupesByTitleFindsNone(t *testing.T) {
	setupHome(t)
	importSample(t)

	out, err := run(t, "dupes", "--by", "title")

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "No duplicates"))
}

func TestCLI_DupesInvalidKey(t *testing.T) {
	setupHome(t)

	_, err := run(t, "dupes", "--by", "tags")

	assert.ErrorIs(t, err, model.ErrInvalidKey)
}

func TestCLI_Search(t *testing.T) {
	setupHome(t)
	importSample(t)

	out, err := run(t, "search", "github")

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "GitHub"))
	assert.Assert(t, is.Contains(out, "Dev"))
}

func TestCLI_SearchUnknownStrategy(t *testing.T) {
	setupHome(t)

	_, err := run(t, "search", "go", "--strategy", "regex")

	assert.ErrorContains(t, err, "unknown search strategy")
}

func TestCLI_TreeAndSort(t *testing.T) {
	setupHome(t)
	importSample(t)

	out, err := run(t, "tree", "--sort", "alpha")

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Dev"))
	assert.Assert(t, is.Contains(out, "Reading"))

	_, err = run(t, "tree", "--sort", "random")
	assert.ErrorContains(t, err, "unknown sort mode")
}

func TestCLI_EditAndRemove(t *testing.T) {
	dataPath := setupHome(t)
	importSample(t)

	gh := findByTitle(t, dataPath, "GitHub")
	_, err := run(t, "edit", gh.ID, "--title", "GitHub Home")
	assert.NilError(t, err)
	assert.Equal(t, findByTitle(t, dataPath, "GitHub Home").ID, gh.ID)

	_, err = run(t, "edit", gh.ID)
	assert.ErrorContains(t, err, "nothing to change")

	reading := findByTitle(t, dataPath, "Reading")
	_, err = run(t, "rm", reading.ID, "--yes")
	assert.NilError(t, err)

	out, err := run(t, "dupes")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "No duplicates"))
}

func TestCLI_Export(t *testing.T) {
	setupHome(t)
	importSample(t)
	target := filepath.Join(t.TempDir(), "out.html")

	out, err := run(t, "export", target)

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Exported 3 bookmarks, 2 folders"))
	data, err := os.ReadFile(target)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), `HREF="https://github.com"`))
}

func TestCLI_RemoveUnmodifiableRejected(t *testing.T) {
	dataPath := setupHome(t)
	managed := `[{"id":"1","title":"Managed","unmodifiable":"managed","children":[
		{"id":"2","title":"Intranet","url":"https://intranet"}]}]`
	assert.NilError(t, os.WriteFile(dataPath, []byte(managed), 0644))

	_, err := run(t, "rm", "1", "--yes")

	assert.ErrorIs(t, err, storage.ErrUnmodifiable)
	assert.Assert(t, findByTitle(t, dataPath, "Managed") != nil)
}

func TestCLI_LogFile(t *testing.T) {
	setupHome(t)
	logPath := filepath.Join(t.TempDir(), "burst.log")

	_, err := run(t, "tree", "--log-file", logPath, "--log-level", "debug")

	assert.NilError(t, err)
	data, err := os.ReadFile(logPath)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), "tree loaded"))
}

func TestCLI_EditReportsFolder(t *testing.T) {
	dataPath := setupHome(t)
	importSample(t)
	gh := findByTitle(t, dataPath, "GitHub")

	out, err := run(t, "edit", gh.ID, "--url", "https://github.com/nikbrunner")

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Dev"))
}
