package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/634252452/Sheets2Website/internal/cli"
	"github.com/634252452/Sheets2Website/internal/config"
)

const testPagesCSV = `id,type,title,summary,content,creation_date,tags,category
home,page,Home,Welcome,<p>hello from the sheet</p>,,,
about,page,About,,<p>about us</p>,,,
p1,post,First Post,One,<p>one</p>,2024-01-10,go,Tech
../evil,page,Evil,,<p>x</p>,,,
`

// sheetServer serves a Site sheet that points at a Pages sheet on the same
// server, both as published CSV URLs.
type sheetServer struct {
	*httptest.Server
	pagesHits atomic.Int32
}

func newSheetServer(t *testing.T) *sheetServer {
	t.Helper()
	s := &sheetServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/site", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "title,webpages_csv_url,webpages_cache_version\nTest Site,%s/pages?output=csv,v7\n", s.URL)
	})
	mux.HandleFunc("/pages", func(w http.ResponseWriter, _ *http.Request) {
		s.pagesHits.Add(1)
		fmt.Fprint(w, testPagesCSV)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *sheetServer) siteURL() string { return s.URL + "/site?output=csv" }

// setupEnv isolates the test from the caller's environment and points the
// file cache at a temp dir.
func setupEnv(t *testing.T, siteURL string) string {
	t.Helper()
	cacheDir := t.TempDir()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SITE_SHEET_URL", siteURL)
	t.Setenv("SITE_SHEET_CSV", "")
	t.Setenv("SITE_CONFIG_FILE", "")
	t.Setenv("CACHE_BACKEND", "file")
	t.Setenv("CACHE_DIR", cacheDir)
	return cacheDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalize(t *testing.T) {
	// A broken environment must not matter to a command that needs no config.
	t.Setenv("LOG_LEVEL", "loud")

	out, err := run(t, "normalize", "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?tqx=out:csv&sheet=Sheet1\n", out)
}

func TestNormalize_Invalid(t *testing.T) {
	_, err := run(t, "normalize", "not a sheet!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sheet URL")
}

func TestFetch_Site(t *testing.T) {
	srv := newSheetServer(t)
	setupEnv(t, srv.siteURL())

	out, err := run(t, "fetch")
	require.NoError(t, err)

	var got struct {
		PagesURL  string              `json:"pagesUrl"`
		Version   string              `json:"version"`
		FromCache bool                `json:"fromCache"`
		Site      map[string]string   `json:"site"`
		Pages     []map[string]string `json:"pages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, srv.URL+"/pages?output=csv", got.PagesURL)
	assert.Equal(t, "v7", got.Version)
	assert.False(t, got.FromCache)
	assert.Equal(t, "Test Site", got.Site["title"])
	require.Len(t, got.Pages, 4)
	assert.Equal(t, "home", got.Pages[0]["id"])

	// Second run is served from the file cache.
	out, err = run(t, "fetch")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.FromCache)
	assert.Equal(t, int32(1), srv.pagesHits.Load())
}

func TestFetch_SingleSheet(t *testing.T) {
	srv := newSheetServer(t)
	setupEnv(t, "")

	out, err := run(t, "fetch", srv.URL+"/pages?output=csv")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 4)
	assert.Equal(t, "About", rows[1]["title"])
}

func TestFetch_NoSiteSheet(t *testing.T) {
	setupEnv(t, "")

	_, err := run(t, "fetch")
	require.ErrorIs(t, err, config.ErrSiteSheetMissing)
}

func TestExport(t *testing.T) {
	srv := newSheetServer(t)
	setupEnv(t, srv.siteURL())
	outDir := filepath.Join(t.TempDir(), "public")

	out, err := run(t, "export", "--out", outDir, "--theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 5 pages")

	for _, name := range []string{"index.html", "home.html", "about.html", "p1.html", "posts.html", "static/base.css", "static/dark.css"} {
		assert.FileExists(t, filepath.Join(outDir, filepath.FromSlash(name)))
	}
	assert.NoFileExists(t, filepath.Join(filepath.Dir(outDir), "evil.html"))

	index, err := os.ReadFile(filepath.Join(outDir, "index.html"))
	require.NoError(t, err)
	html := string(index)
	assert.Contains(t, html, "<p>hello from the sheet</p>")
	assert.Contains(t, html, `href="about.html"`)
	assert.Contains(t, html, `href="static/dark.css"`)
	assert.NotContains(t, html, `action="/theme"`)

	posts, err := os.ReadFile(filepath.Join(outDir, "posts.html"))
	require.NoError(t, err)
	assert.Contains(t, string(posts), "First Post")
}

func TestExport_UnknownTheme(t *testing.T) {
	srv := newSheetServer(t)
	setupEnv(t, srv.siteURL())

	_, err := run(t, "export", "--out", t.TempDir(), "--theme", "neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")
}

func TestCacheStatusAndClear(t *testing.T) {
	srv := newSheetServer(t)
	setupEnv(t, srv.siteURL())

	out, err := run(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "is empty")

	_, err = run(t, "fetch")
	require.NoError(t, err)

	out, err = run(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "pagesSheet")
	assert.Contains(t, out, "v7")

	out, err = run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Equal(t, "cleared 1 cached sheet\n", out)

	out, err = run(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "is empty")
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t, "")
	t.Setenv("CACHE_BACKEND", "redis")

	_, err := run(t, "cache", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_BACKEND")
}

func TestFetch_SingleSheetColumns(t *testing.T) {
	srv := newSheetServer(t)
	setupEnv(t, "")
	pagesURL := srv.URL + "/pages?output=csv"

	out, err := run(t, "fetch", pagesURL, "--headers")
	require.NoError(t, err)
	assert.Equal(t, "id\ntype\ntitle\nsummary\ncontent\ncreation_date\ntags\ncategory\n", out)

	out, err = run(t, "fetch", pagesURL, "--column", "id")
	require.NoError(t, err)
	assert.Equal(t, "home\nabout\np1\n../evil\n", out)

	_, err = run(t, "fetch", pagesURL, "--column", "missing")
	require.Error(t, err)

	_, err = run(t, "fetch", "--column", "id")
	require.Error(t, err)
}
