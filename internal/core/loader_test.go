package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/634252452/Sheets2Website/internal/cache"
	"github.com/634252452/Sheets2Website/internal/kv"
	"github.com/634252452/Sheets2Website/internal/sheets"
)

// fakeSheets serves canned CSV bodies by URL and counts requests.
type fakeSheets struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  map[string]int
	gate   chan struct{} // when set, Fetch blocks until closed
}

func newFakeSheets(site, pages string) *fakeSheets {
	return &fakeSheets{
		bodies: map[string]string{
			sheets.ExportURL("site-id"):  site,
			sheets.ExportURL("pages-id"): pages,
		},
		calls: make(map[string]int),
	}
}

func (f *fakeSheets) Fetch(ctx context.Context, url string) (string, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	body, ok := f.bodies[url]
	if !ok {
		return "", &sheets.FetchError{URL: url, Status: 404}
	}
	return body, nil
}

func (f *fakeSheets) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sheets.ExportURL(id)]
}

func (f *fakeSheets) setSite(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[sheets.ExportURL("site-id")] = body
}

const (
	siteV1 = "title,webpages_csv_url,webpages_cache_version\nBlog,pages-id,v1\n"
	pages1 = "id,type,title\nhome,page,Home\np1,post,First\n"
)

func newTestLoader(f sheets.Fetcher) (*Loader, *cache.Cache) {
	c := cache.New(kv.NewMemoryStore())
	return NewLoader(f, c, "site-id", LoaderOptions{}), c
}

func TestLoader_Load(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	l, _ := newTestLoader(f)

	snap, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Blog", snap.Site.Title())
	assert.Equal(t, []string{"home", "p1"}, ids(snap.Pages))
	assert.Equal(t, "v1", snap.Version)
	assert.Equal(t, sheets.ExportURL("pages-id"), snap.PagesURL)
	assert.False(t, snap.FromCache)
	assert.NotEqual(t, [16]byte{}, [16]byte(snap.LoadID))
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestLoader_PagesSheetIsCachedSiteSheetIsNot(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	l, _ := newTestLoader(f)
	ctx := context.Background()

	_, err := l.Load(ctx)
	require.NoError(t, err)
	snap, err := l.Load(ctx)
	require.NoError(t, err)

	assert.True(t, snap.FromCache)
	assert.Equal(t, 2, f.count("site-id"))
	assert.Equal(t, 1, f.count("pages-id"))
	assert.Equal(t, []string{"home", "p1"}, ids(snap.Pages))
}

func TestLoader_VersionChangeRefetches(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	l, _ := newTestLoader(f)
	ctx := context.Background()

	_, err := l.Load(ctx)
	require.NoError(t, err)

	f.setSite("title,webpages_csv_url,webpages_cache_version\nBlog,pages-id,v2\n")
	snap, err := l.Load(ctx)
	require.NoError(t, err)

	assert.False(t, snap.FromCache)
	assert.Equal(t, "v2", snap.Version)
	assert.Equal(t, 2, f.count("pages-id"))
}

func TestLoader_MissingVersionUsesDefault(t *testing.T) {
	f := newFakeSheets("title,pages_csv_url\nBlog,pages-id\n", pages1)
	c := cache.New(kv.NewMemoryStore())
	l := NewLoader(f, c, "site-id", LoaderOptions{DefaultVersion: "v9"})

	snap, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v9", snap.Version)

	_, ok := c.Get(context.Background(), DefaultPagesKey, "v9")
	assert.True(t, ok, "pages sheet cached under the default version")
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		siteRef string
		site    string
		wantIs  error
	}{
		{"no site ref", "", siteV1, sheets.ErrSheetURLRequired},
		{"placeholder", sheets.PlaceholderSheetID, siteV1, sheets.ErrPlaceholderSheetURL},
		{"no pages url", "site-id", "title\nBlog\n", ErrPagesURLMissing},
		{"empty site sheet", "site-id", "", ErrPagesURLMissing},
		{"bad pages url", "site-id", "webpages_csv_url\nnot a sheet!\n", sheets.ErrInvalidSheetURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeSheets(tt.site, pages1)
			l := NewLoader(f, nil, tt.siteRef, LoaderOptions{})
			_, err := l.Load(context.Background())
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestLoader_FetchFailure(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	delete(f.bodies, sheets.ExportURL("pages-id"))
	l, _ := newTestLoader(f)

	_, err := l.Load(context.Background())
	var fe *sheets.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 404, fe.Status)
	assert.Equal(t, "FETCH001", MapError(err).Code)
}

func TestLoader_SetSiteRef(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	f.bodies[sheets.ExportURL("other-id")] = "title,webpages_csv_url\nOther,pages-id\n"
	l, _ := newTestLoader(f)

	l.SetSiteRef("https://docs.google.com/spreadsheets/d/other-id/edit#gid=0")
	snap, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Other", snap.Site.Title())
}

func TestLoader_ConcurrentLoadsShareOneFetch(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	f.gate = make(chan struct{})
	l, _ := newTestLoader(f)

	const n = 8
	var (
		wg      sync.WaitGroup
		started atomic.Int32
		results = make([]*Snapshot, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Add(1)
			snap, err := l.Load(context.Background())
			assert.NoError(t, err)
			results[i] = snap
		}(i)
	}
	for started.Load() < n {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, 1, f.count("site-id"))
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, results[0].LoadID, r.LoadID)
	}
}

func TestLoader_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	f.gate = make(chan struct{})
	l, _ := newTestLoader(f)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := l.Load(ctxA)
		errA <- err
	}()
	time.Sleep(10 * time.Millisecond)

	type result struct {
		snap *Snapshot
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		snap, err := l.Load(context.Background())
		resB <- result{snap, err}
	}()
	time.Sleep(10 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(f.gate)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "Blog", b.snap.Site.Title())
	assert.Equal(t, 1, f.count("site-id"))
}

func TestFetchCSVWithCache(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	l, c := newTestLoader(f)
	ctx := context.Background()
	url := sheets.ExportURL("pages-id")

	t1, hit, err := l.FetchCSVWithCache(ctx, url, "k", "a")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, t1, 2)

	t2, hit, err := l.FetchCSVWithCache(ctx, url, "k", "a")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, t1.Equal(t2))
	assert.Equal(t, 1, f.count("pages-id"))

	c.Clear(ctx)
	_, hit, err = l.FetchCSVWithCache(ctx, url, "k", "a")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestApp_Refresh(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	l, _ := newTestLoader(f)
	app := NewApp(l)
	ctx := context.Background()

	_, err := app.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)

	first, err := app.Refresh(ctx)
	require.NoError(t, err)
	got, err := app.Snapshot()
	require.NoError(t, err)
	assert.Same(t, first, got)
	assert.NoError(t, app.LastError())

	// a failed refresh keeps the previous snapshot
	f.setSite("title\nBroken\n")
	_, err = app.Refresh(ctx)
	assert.ErrorIs(t, err, ErrPagesURLMissing)
	got, err = app.Snapshot()
	require.NoError(t, err)
	assert.Same(t, first, got)
	assert.ErrorIs(t, app.LastError(), ErrPagesURLMissing)
}

func TestApp_Refresh_CancelledCallerIsNotALoadError(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	f.gate = make(chan struct{})
	defer close(f.gate)
	l, _ := newTestLoader(f)
	app := NewApp(l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := app.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, app.LastError())
}

func TestApp_SnapshotCarriesLoadError(t *testing.T) {
	f := newFakeSheets("title\nBroken\n", pages1)
	l, _ := newTestLoader(f)
	app := NewApp(l)

	_, err := app.Refresh(context.Background())
	require.Error(t, err)

	_, err = app.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, err, ErrPagesURLMissing)
	assert.Equal(t, "SITE001", MapError(err).Code)
}

func TestApp_StartRefreshScheduler(t *testing.T) {
	var fetches atomic.Int32
	f := newFakeSheets(siteV1, pages1)
	counting := sheets.FetcherFunc(func(ctx context.Context, url string) (string, error) {
		fetches.Add(1)
		return f.Fetch(ctx, url)
	})
	l, _ := newTestLoader(counting)
	app := NewApp(l)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.StartRefreshScheduler(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return f.count("site-id") >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	_, err := app.Snapshot()
	assert.NoError(t, err)
	assert.Positive(t, fetches.Load())
}

func TestApp_StartRefreshScheduler_RunsOnceWithoutInterval(t *testing.T) {
	f := newFakeSheets(siteV1, pages1)
	l, _ := newTestLoader(f)
	app := NewApp(l)

	app.StartRefreshScheduler(context.Background(), 0)

	assert.Equal(t, 1, f.count("site-id"))
	_, err := app.Snapshot()
	assert.NoError(t, err)
}

func TestApp_SchedulerSurvivesErrors(t *testing.T) {
	failing := sheets.FetcherFunc(func(ctx context.Context, url string) (string, error) {
		return "", errors.New("CSV fetch failed for x: connection refused")
	})
	app := NewApp(NewLoader(failing, nil, "site-id", LoaderOptions{}))
	app.StartRefreshScheduler(context.Background(), 0)

	_, err := app.Snapshot()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Equal(t, "FETCH003", MapError(app.LastError()).Code)
}
