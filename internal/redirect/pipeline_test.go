package redirect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"variaredirect/internal/database"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/downloads/downloaders"
	"variaredirect/internal/models"
	"variaredirect/internal/repo"
	"variaredirect/internal/sandbox"
	"variaredirect/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aria2Call is one request seen by the fake aria2 server.
type aria2Call struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type fakeAria2 struct {
	mu    sync.Mutex
	calls []aria2Call
	reply string
}

func (f *fakeAria2) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	var c aria2Call
	_ = json.Unmarshal(b, &c)

	f.mu.Lock()
	f.calls = append(f.calls, c)
	reply := f.reply
	f.mu.Unlock()

	_, _ = io.WriteString(w, reply)
}

func (f *fakeAria2) setReply(reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeAria2) Calls() []aria2Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]aria2Call(nil), f.calls...)
}

type notes struct {
	mu  sync.Mutex
	got []models.Notification
}

func (n *notes) Notify(_ context.Context, note models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, note)
	return nil
}

func (n *notes) All() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notification(nil), n.got...)
}

type triggers struct {
	mu      sync.Mutex
	reasons []string
}

func (t *triggers) Trigger(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reasons = append(t.reasons, reason)
}

type fixture struct {
	p        *Pipeline
	aria     *fakeAria2
	notes    *notes
	triggers *triggers
	store    *repo.Store
}

func newFixture(t *testing.T, mutate func(*models.Settings)) *fixture {
	t.Helper()

	d, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	store := repo.InitStores(d.DB)

	aria := &fakeAria2{reply: `{"id":"x","jsonrpc":"2.0","result":"gid-1"}`}
	srv := httptest.NewServer(aria)
	t.Cleanup(srv.Close)

	s := models.DefaultSettings()
	s.RPCURL = srv.URL
	s.FilterMode = models.FilterModeBlocklist
	s.BlockList = []string{"example.com"}
	s.MinDownloadSize = 0
	if mutate != nil {
		mutate(&s)
	}
	require.NoError(t, store.SettingsStore().SetSettings(context.Background(), s))

	f := &fixture{aria: aria, notes: &notes{}, triggers: &triggers{}, store: store}
	f.p = New(Deps{
		Store:     store,
		Session:   session.NewStore(),
		RPC:       downloaders.NewAria2RPC("", 0),
		Notifier:  f.notes,
		Evaluator: sandbox.NewEvaluator(time.Second),
		Probe:     f.triggers,
	})
	f.p.Now = func() time.Time { return time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local) }
	return f
}

func (f *fixture) record(t *testing.T, id string) (*models.DownloadRecord, bool) {
	t.Helper()
	rec, found, err := f.store.DownloadStore().GetRecord(context.Background(), id)
	require.NoError(t, err)
	return rec, found
}

func addURIOptions(t *testing.T, c aria2Call) map[string]any {
	t.Helper()
	require.Equal(t, "aria2.addUri", c.Method)
	require.Len(t, c.Params, 2)
	var opts map[string]any
	require.NoError(t, json.Unmarshal(c.Params[1], &opts))
	return opts
}

func TestAllowedDownloadRedirects(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.p.Session.SetTempCookie("sid=1")

	out := f.p.HandleDownload(context.Background(), models.DownloadEvent{
		ID: "1", URL: "https://good.com/file.zip", Filename: "file.zip", TotalBytes: 500000,
	})
	assert.Equal(t, models.ActionRedirected, out.Action)
	assert.Equal(t, "gid-1", out.GID)

	calls := f.aria.Calls()
	require.Len(t, calls, 1)
	opts := addURIOptions(t, calls[0])
	assert.Equal(t, "file.zip", opts["out"])
	assert.NotContains(t, opts, "dir")
	assert.Equal(t, []any{"User-Agent: Varia-Redirect-Extension/1.0", "Cookie: sid=1"}, opts["header"])

	_, found := f.record(t, "1")
	assert.False(t, found, "accepted download should be erased from history")
	assert.Empty(t, f.p.Session.TempCookie())
	assert.Empty(t, f.notes.All())
}

func TestBlockedDomainSkips(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.p.Session.SetTempCookie("sid=1")

	out := f.p.HandleDownload(context.Background(), models.DownloadEvent{
		ID: "2", URL: "https://example.com/file.zip", Filename: "file.zip", TotalBytes: 500000,
	})
	assert.Equal(t, models.ActionSkipped, out.Action)
	assert.Equal(t, errs.KindPolicyRejected, out.Kind)
	assert.Empty(t, f.aria.Calls())

	rec, found := f.record(t, "2")
	require.True(t, found)
	assert.Equal(t, models.RecordCreated, rec.State)
	assert.Equal(t, "sid=1", f.p.Session.TempCookie(), "no dispatch attempt, cookie kept")
}

func TestDisabledNeverDispatches(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(s *models.Settings) { s.Enabled = false })

	for _, u := range []string{"https://good.com/a.zip", "https://other.org/b.iso", "notaurl"} {
		out := f.p.HandleDownload(context.Background(), models.DownloadEvent{URL: u, Filename: "a.zip"})
		assert.Equal(t, models.ActionSkipped, out.Action)
	}
	assert.Empty(t, f.aria.Calls())
}

func TestScriptOverridesDirAndFilename(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(s *models.Settings) {
		s.DownloadDirectory = "/data"
		s.OrganizeByDate = true
		s.CustomFilterScript = `function filter(d) { return {skip: false, dir: "Movies", filename: "x.mkv"}; }`
	})

	out := f.p.HandleDownload(context.Background(), models.DownloadEvent{
		ID: "3", URL: "https://good.com/file.zip", Referrer: "https://good.com/", Filename: "file.zip",
	})
	require.Equal(t, models.ActionRedirected, out.Action)

	opts := addURIOptions(t, f.aria.Calls()[0])
	assert.Equal(t, "x.mkv", opts["out"])
	assert.Equal(t, "Movies/2024-03-05", opts["dir"])
	assert.Equal(t, []any{"User-Agent: Varia-Redirect-Extension/1.0", "Referer: https://good.com/"}, opts["header"])
}

func TestCustomSkip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(s *models.Settings) {
		s.CustomFilterScript = `function filter(d) { return {skip: d.fileSize < 1000}; }`
	})

	out := f.p.HandleDownload(context.Background(), models.DownloadEvent{ID: "4", URL: "https://good.com/a", Filename: "a", TotalBytes: 10})
	assert.Equal(t, models.ActionSkipped, out.Action)
	assert.Empty(t, out.Kind)
	assert.Empty(t, f.aria.Calls())
	assert.Empty(t, f.notes.All())
}

func TestCustomFilterErrorNotifies(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(s *models.Settings) {
		s.CustomFilterScript = `function filter(d) { return {dir: "x"}; }`
	})
	f.p.Session.SetTempCookie("sid=1")

	out := f.p.HandleDownload(context.Background(), models.DownloadEvent{ID: "5", URL: "https://good.com/a.zip", Filename: "a.zip"})
	assert.Equal(t, models.ActionFailed, out.Action)
	assert.Equal(t, errs.KindSandboxShape, out.Kind)
	assert.Empty(t, f.aria.Calls())

	got := f.notes.All()
	require.Len(t, got, 1)
	assert.Equal(t, "filter-fail-5", got[0].ID)

	rec, found := f.record(t, "5")
	require.True(t, found)
	assert.Equal(t, models.RecordCreated, rec.State)
}

// TestRemoteErrorKeepsDownload checks a remote error leaves the download alone.
func TestRemoteErrorKeepsDownload(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.aria.setReply(`{"id":"x","jsonrpc":"2.0","error":{"code":1,"message":"no handler"}}`)
	f.p.Session.SetTempCookie("sid=1")

	out := f.p.HandleDownload(context.Background(), models.DownloadEvent{ID: "6", URL: "https://good.com/a.zip", Filename: "a.zip"})
	assert.Equal(t, models.ActionFailed, out.Action)
	assert.Equal(t, errs.KindRPCRemote, out.Kind)

	rec, found := f.record(t, "6")
	require.True(t, found)
	assert.Equal(t, models.RecordCreated, rec.State)

	got := f.notes.All()
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "no handler")
	assert.Empty(t, f.p.Session.TempCookie())
}

func TestMissingRPCURL(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(s *models.Settings) { s.RPCURL = "" })

	out := f.p.HandleDownload(context.Background(), models.DownloadEvent{ID: "7", URL: "https://good.com/a.zip", Filename: "a.zip"})
	assert.Equal(t, models.ActionFailed, out.Action)
	assert.Equal(t, errs.KindConfigurationMissing, out.Kind)
	assert.Len(t, f.notes.All(), 1)
}

func TestTestCustomFilter(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	resp := f.p.TestCustomFilter(ctx, models.FilterTestRequest{
		Type:   "TEST_CUSTOM_FILTER",
		Script: `function filter(d) { return {skip: false, filename: d.filename}; }`,
	})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "test-document.pdf", resp.Result.FilenameOverride())

	resp = f.p.TestCustomFilter(ctx, models.FilterTestRequest{
		Script:   `function filter(d) { return {skip: d.mime === "video/mp4"}; }`,
		TestData: &models.FilterView{Mime: "video/mp4"},
	})
	require.True(t, resp.Success)
	assert.True(t, resp.Result.Skip)

	resp = f.p.TestCustomFilter(ctx, models.FilterTestRequest{Script: `function filter(d) { throw new Error("bad"); }`})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "bad")
	assert.Equal(t, errs.KindSandboxEvaluation, resp.Kind)

	resp = f.p.TestCustomFilter(ctx, models.FilterTestRequest{Script: "   "})
	assert.False(t, resp.Success)
	assert.Equal(t, "Script is empty", resp.Error)

	resp = f.p.TestCustomFilter(ctx, models.FilterTestRequest{Type: "OTHER", Script: "x"})
	assert.False(t, resp.Success)
	assert.Empty(t, f.notes.All(), "test path never notifies")
}

func TestUpdateSettingsTriggersProbeOnURLChange(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.p.AddListItem(ctx, models.SetBlockList, " HTTPS://Ads.Test/path ")
	require.NoError(t, err)
	assert.Empty(t, f.triggers.reasons)

	s, err := f.p.SetValue(ctx, models.SetRPCURL, "http://other:6800/jsonrpc")
	require.NoError(t, err)
	assert.Equal(t, "http://other:6800/jsonrpc", s.RPCURL)
	assert.Equal(t, []any{"example.com", "ads.test"}, toAny(s.BlockList))
	assert.Len(t, f.triggers.reasons, 1)
}

func TestSetValue(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	s, err := f.p.SetValue(ctx, models.SetMinDownloadSize, "5")
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.MinDownloadSize)

	s, err = f.p.SetValue(ctx, models.SetDownloadDirectory, "2024")
	require.NoError(t, err)
	assert.Equal(t, "2024", s.DownloadDirectory)

	s, err = f.p.SetValue(ctx, models.SetPersistentHeaders, `[{"key":"X-A","value":"1"}]`)
	require.NoError(t, err)
	assert.Equal(t, []models.HeaderItem{{Key: "X-A", Value: "1"}}, s.PersistentHeaders)

	_, err = f.p.SetValue(ctx, models.SetEnabled, "maybe")
	require.Error(t, err)
	_, err = f.p.SetValue(ctx, models.SetFilterMode, "denylist")
	require.Error(t, err)
	_, err = f.p.SetValue(ctx, "nope", "1")
	require.Error(t, err)

	s, err = f.p.Settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024", s.DownloadDirectory)
	assert.True(t, s.Enabled)
}

func TestHeaderAndListEdits(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	s, err := f.p.AddHeader(ctx, models.HeaderItem{Key: " X-Token ", Value: "a"})
	require.NoError(t, err)
	assert.Equal(t, models.HeaderItem{Key: "X-Token", Value: "a"}, s.PersistentHeaders[1])

	s, err = f.p.RemoveHeader(ctx, "User-Agent")
	require.NoError(t, err)
	assert.Len(t, s.PersistentHeaders, 1)

	s, err = f.p.AddListItem(ctx, models.SetDisallowedExtensions, "ISO")
	require.NoError(t, err)
	assert.Contains(t, s.DisallowedExtensions, ".iso")

	s, err = f.p.RemoveListItem(ctx, models.SetDisallowedExtensions, ".EXE")
	require.NoError(t, err)
	assert.NotContains(t, s.DisallowedExtensions, ".exe")

	_, err = f.p.AddListItem(ctx, models.SetPersistentHeaders, "x")
	require.Error(t, err)
	_, err = f.p.AddHeader(ctx, models.HeaderItem{Key: " "})
	require.Error(t, err)

	s, err = f.p.ResetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), s)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
