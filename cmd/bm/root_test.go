package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmark/internal/model"
)

type cli struct {
	t  *testing.T
	db string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("BM_ANTHROPIC_API_KEY", "")
	t.Setenv("BM_REDIS_ADDR", "")
	return &cli{t: t, db: filepath.Join(home, "bm.db")}
}

// run executes one command line against the test database.
func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--db", c.db}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	assert.NilError(c.t, err, "bm %s", strings.Join(args, " "))
	return out
}

func (c *cli) list(args ...string) []model.Bookmark {
	c.t.Helper()
	var bookmarks []model.Bookmark
	out := c.mustRun(append([]string{"ls", "--json"}, args...)...)
	assert.NilError(c.t, json.Unmarshal([]byte(out), &bookmarks), out)
	return bookmarks
}

func TestRootCmd_Metadata(t *testing.T) {
	root := newRootCmd()

	assert.Equal(t, root.Use, "bm [query]")
	assert.Assert(t, root.Short != "")

	for _, name := range []string{"add", "ls", "find", "rename", "tag", "fav", "mv", "rm", "folder", "import", "export", "chat", "cull"} {
		cmd, _, err := root.Find([]string{name})
		assert.NilError(t, err, name)
		assert.Equal(t, cmd.Name(), name)
	}
}

func TestCmd_FlagDefaults(t *testing.T) {
	root := newRootCmd()

	tests := []struct {
		path []string
		flag string
		want string
	}{
		{[]string{"ls"}, "sort", "default"},
		{[]string{"ls"}, "json", "false"},
		{[]string{"rm"}, "yes", "false"},
		{[]string{"cull"}, "dry-run", "false"},
		{[]string{"add"}, "folder", ""},
		{[]string{"import", "json"}, "folder", ""},
	}
	for _, tt := range tests {
		cmd, _, err := root.Find(tt.path)
		assert.NilError(t, err)
		f := cmd.Flags().Lookup(tt.flag)
		assert.Assert(t, f != nil, "%v --%s", tt.path, tt.flag)
		assert.Equal(t, f.DefValue, tt.want, "%v --%s", tt.path, tt.flag)
	}
}

func TestCLI_AddAndList(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("add", "https://github.com", "GitHub", "--tag", "code,git", "--favorite")
	assert.Assert(t, is.Contains(out, "Added"))
	c.mustRun("add", "https://go.dev/doc")

	bookmarks := c.list("--sort", "a-z")
	assert.Assert(t, is.Len(bookmarks, 2))
	assert.Equal(t, bookmarks[0].Title, "GitHub")
	assert.Assert(t, bookmarks[0].Favorite)
	assert.DeepEqual(t, bookmarks[0].Tags, []string{"code", "git"})
	// without a title the host is used
	assert.Equal(t, bookmarks[1].Title, "go.dev")

	text := c.mustRun("ls", "--search", "github")
	assert.Assert(t, is.Contains(text, "GitHub"))
	assert.Assert(t, !strings.Contains(text, "go.dev"), text)
	assert.Assert(t, is.Contains(text, "Other"))
}

func TestCLI_AddRejectsInvalidURL(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "add", "not a url", "Broken")
	assert.Assert(t, err != nil)
	assert.Assert(t, is.Len(c.list(), 0))
}

func TestCLI_ListUnknownSort(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "ls", "--sort", "sideways")
	assert.ErrorContains(t, err, "unknown sort mode")
}

func TestCLI_Folders(t *testing.T) {
	c := newCLI(t)

	c.mustRun("folder", "add", "Development", "--color", "blue")
	c.mustRun("add", "https://github.com", "GitHub")
	c.mustRun("add", "https://go.dev", "Go")

	ids := func() []string {
		var out []string
		for _, b := range c.list("--sort", "a-z") {
			out = append(out, b.ID)
		}
		return out
	}()

	out := c.mustRun("mv", ids[0], "development")
	assert.Assert(t, is.Contains(out, "Moved 1 bookmark(s)"))

	folders := c.mustRun("folder", "ls")
	assert.Assert(t, is.Contains(folders, "Development"))
	assert.Assert(t, is.Contains(folders, "blue"))

	inDev := c.list("--folder", "Development")
	assert.Assert(t, is.Len(inDev, 1))
	assert.Equal(t, inDev[0].Title, "GitHub")

	// an unknown folder name is created on the fly
	c.mustRun("mv", ids[1], "Reading")
	assert.Assert(t, is.Len(c.list("--folder", "reading"), 1))

	// deleting a folder leaves its bookmarks under Other
	c.mustRun("folder", "rm", "Development")
	assert.Assert(t, is.Len(c.list(), 2))
	_, err := c.run("", "ls", "--folder", "Development")
	assert.ErrorContains(t, err, "no folder")
}

func TestCLI_EditBookmark(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "https://github.com", "GitHub")
	id := c.list()[0].ID

	c.mustRun("rename", id[:6], "GitHub", "Home")
	c.mustRun("tag", id, "code", " code", "oss")
	out := c.mustRun("fav", id)
	assert.Assert(t, is.Contains(out, "a favorite"))

	b := c.list()[0]
	assert.Equal(t, b.Title, "GitHub Home")
	assert.DeepEqual(t, b.Tags, []string{"code", "oss"})
	assert.Assert(t, b.Favorite)

	out = c.mustRun("fav", id)
	assert.Assert(t, is.Contains(out, "no longer"))
	assert.Assert(t, !c.list()[0].Favorite)

	_, err := c.run("", "rename", "zzzz", "Nope")
	assert.ErrorContains(t, err, "no bookmark")
}

func TestCLI_Remove(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "https://github.com", "GitHub")
	c.mustRun("add", "https://go.dev", "Go")
	c.mustRun("add", "https://go.dev", "Go again")
	id := c.list("--search", "GitHub")[0].ID

	out, err := c.run("n\n", "rm", id)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Aborted"))
	assert.Assert(t, is.Len(c.list(), 3))

	out, err = c.run("y\n", "rm", id)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Deleted 1 bookmark(s)"))

	out, err = c.run("n\n", "rm", "--url", "https://go.dev")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Delete 2 bookmark(s)?"))
	assert.Assert(t, is.Contains(out, "Aborted"))
	assert.Assert(t, is.Len(c.list(), 2))

	out, err = c.run("y\n", "rm", "--url", "https://go.dev")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Deleted 2 bookmark(s)"))
	assert.Assert(t, is.Len(c.list(), 0))
}

func TestCLI_RemoveByURLWithYes(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "https://dup.com", "Dup")

	out, err := c.run("", "rm", "--url", "https://dup.com")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Aborted"), "no answer declines")
	assert.Assert(t, is.Len(c.list(), 1))

	out = c.mustRun("rm", "--url", "--yes", "https://dup.com")
	assert.Assert(t, is.Contains(out, "Deleted 1 bookmark(s)"))
	assert.Assert(t, is.Len(c.list(), 0))
}

func TestCLI_ImportExport(t *testing.T) {
	c := newCLI(t)
	c.mustRun("folder", "add", "Tools")

	payload := `[{"title":"Hammer","url":"https://tools.example.com/hammer"},{"title":"Saw","url":"https://tools.example.com/saw"}]`
	out, err := c.run(payload, "import", "json", "-", "--folder", "Tools")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Imported 2 bookmarks"))
	assert.Assert(t, is.Len(c.list("--folder", "Tools"), 2))

	_, err = c.run(`{"title":`, "import", "json", "-")
	assert.Assert(t, err != nil)

	html := c.mustRun("export", "-")
	assert.Assert(t, is.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Assert(t, is.Contains(html, "Tools"))
	assert.Assert(t, is.Contains(html, `HREF="https://tools.example.com/saw"`))

	path := filepath.Join(t.TempDir(), "export.html")
	out = c.mustRun("export", path)
	assert.Assert(t, is.Contains(out, "Exported 2 bookmarks, 1 folders"))

	fresh := &cli{t: t, db: filepath.Join(t.TempDir(), "other.db")}
	out = fresh.mustRun("import", "html", path)
	assert.Assert(t, is.Contains(out, "Imported 2 bookmarks, 1 new folders"))
	assert.Assert(t, is.Len(fresh.list("--folder", "Tools"), 2))

	out = fresh.mustRun("import", "html", path)
	assert.Assert(t, is.Contains(out, "2 duplicates skipped"))
}

func TestCLI_Find(t *testing.T) {
	c := newCLI(t)
	c.mustRun("add", "https://github.com", "GitHub")
	c.mustRun("add", "https://go.dev", "Go Docs")

	assert.Equal(t, c.mustRun("find", "gthb"), "https://github.com\n")
	assert.Equal(t, c.mustRun("docs"), "https://go.dev\n")
	assert.Assert(t, is.Contains(c.mustRun("find", "xyz123"), "No bookmarks found"))
}

func TestCLI_ChatWithoutKey(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "chat", "hello")
	assert.ErrorContains(t, err, "assistant is not configured")
}

func TestCLI_Cull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newCLI(t)
	c.mustRun("add", srv.URL+"/ok", "Alive")
	c.mustRun("add", srv.URL+"/gone", "Dead")

	out := c.mustRun("cull", "--dry-run")
	assert.Assert(t, is.Contains(out, "1 healthy, 1 dead, 0 unreachable"))
	assert.Assert(t, is.Len(c.list(), 2))

	out = c.mustRun("cull", "--yes")
	assert.Assert(t, is.Contains(out, "Deleted 1 bookmark(s)"))

	left := c.list()
	assert.Assert(t, is.Len(left, 1))
	assert.Equal(t, left[0].Title, "Alive")
}
