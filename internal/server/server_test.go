package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"variaredirect/internal/database"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/downloads/downloaders"
	"variaredirect/internal/models"
	"variaredirect/internal/notify"
	"variaredirect/internal/probe"
	"variaredirect/internal/redirect"
	"variaredirect/internal/repo"
	"variaredirect/internal/sandbox"
	"variaredirect/internal/session"

	"github.com/browserutils/kooky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCookies struct {
	cookies []*kooky.Cookie
}

func (f *fakeCookies) CookiesFor(_ context.Context, _ string) ([]*kooky.Cookie, error) {
	return f.cookies, nil
}

// aria2Stub answers getVersion with a version and everything else with a gid.
func aria2Stub(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Method string `json:"method"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Method == "aria2.getVersion" {
		_, _ = io.WriteString(w, `{"id":"icon-test","jsonrpc":"2.0","result":{"version":"1.37.0","enabledFeatures":["HTTPS"]}}`)
		return
	}
	_, _ = io.WriteString(w, `{"id":"`+req.ID+`","jsonrpc":"2.0","result":"2089b05ecca3d829"}`)
}

type testEnv struct {
	srv     *httptest.Server
	aria    *httptest.Server
	store   *repo.Store
	session *session.Store
	probe   *probe.Probe
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	d, err := database.InitDB(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	store := repo.InitStores(d.DB)

	aria := httptest.NewServer(http.HandlerFunc(aria2Stub))
	t.Cleanup(aria.Close)

	s := models.DefaultSettings()
	s.RPCURL = aria.URL
	s.MinDownloadSize = 0
	require.NoError(t, store.SettingsStore().SetSettings(context.Background(), s))

	sess := session.NewStore()
	rpc := downloaders.NewAria2RPC("", 0)
	pr := probe.New(rpc, store.SettingsStore(), sess, time.Millisecond)

	p := redirect.New(redirect.Deps{
		Store:     store,
		Session:   sess,
		RPC:       rpc,
		Notifier:  notify.Feed{Store: store.NotificationStore()},
		Evaluator: sandbox.NewEvaluator(time.Second),
		Probe:     pr,
	})

	srv := httptest.NewServer(NewRouter(&Server{
		Pipeline:  p,
		Store:     store,
		Session:   sess,
		Probe:     pr,
		Cookies:   &fakeCookies{cookies: []*kooky.Cookie{{Cookie: http.Cookie{Name: "sid", Value: "abc", Domain: ".files.test"}}}},
		KeepAlive: 10 * time.Millisecond,
	}))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, aria: aria, store: store, session: sess, probe: pr}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+"/api/v1"+path, rdr)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestDownloadRedirected(t *testing.T) {
	e := newTestEnv(t)
	e.session.SetTempCookie("sid=abc")

	resp := e.do(t, http.MethodPost, "/downloads", models.DownloadEvent{
		ID:       "dl-1",
		URL:      "https://files.test/a.zip",
		Filename: "/home/u/Downloads/a.zip",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[models.Outcome](t, resp)
	assert.Equal(t, models.ActionRedirected, out.Action)
	assert.Equal(t, "2089b05ecca3d829", out.GID)

	// Redirected downloads are erased from history.
	resp = e.do(t, http.MethodGet, "/downloads/dl-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, e.session.TempCookie())
}

func TestDownloadSkippedKeepsRecord(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/downloads", models.DownloadEvent{
		ID:  "dl-2",
		URL: "https://example.com/a.zip",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[models.Outcome](t, resp)
	assert.Equal(t, models.ActionSkipped, out.Action)

	resp = e.do(t, http.MethodGet, "/downloads/dl-2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[models.DownloadRecord](t, resp)
	assert.Equal(t, models.RecordCreated, rec.State)
}

func TestDownloadBadBody(t *testing.T) {
	e := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/v1/downloads", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFailureIsListedInNotifications(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPut, "/settings", map[string]any{"rpcUrl": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/downloads", models.DownloadEvent{ID: "dl-3", URL: "https://files.test/b.zip"})
	out := decode[models.Outcome](t, resp)
	assert.Equal(t, models.ActionFailed, out.Action)

	resp = e.do(t, http.MethodGet, "/notifications?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := decode[[]models.Notification](t, resp)
	require.Len(t, notes, 1)
	assert.Equal(t, consts.NotifyRedirectFailedTitle, notes[0].Title)

	resp = e.do(t, http.MethodGet, "/notifications?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodGet, "/settings?keys=filterMode,%20enabled,", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]any](t, resp)
	assert.Equal(t, map[string]any{"filterMode": "blocklist", "enabled": true}, doc)

	resp = e.do(t, http.MethodPost, "/settings/lists/allowList", listItemRequest{Item: "GitHub.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = decode[map[string]any](t, resp)
	assert.Equal(t, []any{"github.com"}, doc["allowList"])

	resp = e.do(t, http.MethodPost, "/settings/lists/persistentHeaders", listItemRequest{Key: "X-Token", Value: "t"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s, err := e.store.SettingsStore().GetSettings(context.Background())
	require.NoError(t, err)
	assert.Contains(t, s.PersistentHeaders, models.HeaderItem{Key: "X-Token", Value: "t"})

	resp = e.do(t, http.MethodDelete, "/settings/lists/persistentHeaders?key=X-Token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s, err = e.store.SettingsStore().GetSettings(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, s.PersistentHeaders, models.HeaderItem{Key: "X-Token", Value: "t"})

	resp = e.do(t, http.MethodDelete, "/settings/lists/allowList?item=github.com", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = decode[map[string]any](t, resp)
	assert.Equal(t, []any{}, doc["allowList"])

	resp = e.do(t, http.MethodPost, "/settings/lists/nope", listItemRequest{Item: "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionCookieEndpoints(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/session/cookie", cookieRequest{Cookie: "a=1"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/session", nil)
	view := decode[sessionView](t, resp)
	assert.True(t, view.HasCookie)

	resp = e.do(t, http.MethodPost, "/session/cookie", cookieRequest{FromBrowser: true, URL: "https://cdn.files.test/x"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "sid=abc", e.session.TempCookie())
	assert.Equal(t, "cdn.files.test", e.session.Snapshot().CurrentTabDomain)

	resp = e.do(t, http.MethodPost, "/session/cookie", cookieRequest{FromBrowser: true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, "/session", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, e.session.TempCookie())
}

func TestConnectClearsCookieOnClose(t *testing.T) {
	e := newTestEnv(t)
	e.session.SetTempCookie("sid=abc")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.srv.URL+"/api/v1/session/connect?domain=Files.Test", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": keepalive\n", line)
	assert.Equal(t, "files.test", e.session.Snapshot().CurrentTabDomain)
	assert.Equal(t, "sid=abc", e.session.TempCookie())

	cancel()
	assert.Eventually(t, func() bool {
		return e.session.TempCookie() == ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFilterTestEndpoint(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/filters/test", models.FilterTestRequest{
		Type:   consts.MsgTestCustomFilter,
		Script: `function filter(d) { return { skip: d.fileSize < 10 }; }`,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.FilterTestResponse](t, resp)
	require.True(t, got.Success, got.Error)
	require.NotNil(t, got.Result)
}

func TestStatusEndpoint(t *testing.T) {
	e := newTestEnv(t)

	st := e.probe.Check(context.Background())
	require.True(t, st.Connected, st.Error)

	resp := e.do(t, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[probe.Status](t, resp)
	assert.True(t, got.Connected)
	assert.Equal(t, "1.37.0", got.Version)
	assert.True(t, e.session.IsConnected())
}

func TestSplitKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, splitKeys(" a,,b , "))
	assert.Empty(t, splitKeys(","))
}
