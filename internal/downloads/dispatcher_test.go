package downloads

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/downloads/downloaders"
	"variaredirect/internal/models"
	"variaredirect/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRPC struct {
	gid      string
	err      error
	calls    int
	endpoint string
	uri      string
	params   models.Params
}

func (f *fakeRPC) AddURI(_ context.Context, endpoint, uri string, params models.Params) (string, error) {
	f.calls++
	f.endpoint, f.uri, f.params = endpoint, uri, params
	return f.gid, f.err
}

func (f *fakeRPC) GetVersion(context.Context, string) (downloaders.Version, error) {
	return downloaders.Version{}, nil
}

type fakeRecords struct {
	ops       []string
	cancelErr error
}

func (f *fakeRecords) Cancel(_ context.Context, id string) error {
	f.ops = append(f.ops, "cancel:"+id)
	return f.cancelErr
}

func (f *fakeRecords) Erase(_ context.Context, id string) error {
	f.ops = append(f.ops, "erase:"+id)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []models.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, n)
	return nil
}

// countingSession counts cookie clears.
type countingSession struct {
	*session.Store
	clears int
}

func (c *countingSession) ClearTempCookie() {
	c.clears++
	c.Store.ClearTempCookie()
}

func newFixture(rpc *fakeRPC) (*Dispatcher, *fakeRecords, *countingSession, *fakeNotifier) {
	records := &fakeRecords{}
	sess := &countingSession{Store: session.NewStore()}
	sess.SetTempCookie("sid=1")
	notifier := &fakeNotifier{}
	return NewDispatcher(rpc, records, sess, notifier), records, sess, notifier
}

func request() Request {
	return Request{
		Event: models.DownloadEvent{
			ID:       "17",
			URL:      "https://good.com/file.zip",
			Referrer: "https://good.com/page",
			Filename: "file.zip",
		},
		RPCURL:            "http://localhost:6801/jsonrpc",
		PersistentHeaders: []models.HeaderItem{{Key: "User-Agent", Value: "UA"}, {Key: "X-Token", Value: "t"}},
		Cookie:            "sid=1",
		Params:            models.Params{Out: "file.zip", Dir: "dl"},
	}
}

func TestDispatchAccepted(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{gid: "abc"}
	d, records, sess, notifier := newFixture(rpc)

	gid, err := d.Dispatch(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "abc", gid)

	assert.Equal(t, 1, rpc.calls)
	assert.Equal(t, "http://localhost:6801/jsonrpc", rpc.endpoint)
	assert.Equal(t, "https://good.com/file.zip", rpc.uri)
	assert.Equal(t, []string{
		"User-Agent: UA",
		"X-Token: t",
		"Referer: https://good.com/page",
		"Cookie: sid=1",
	}, rpc.params.Header)
	assert.Equal(t, "dl", rpc.params.Dir)

	assert.Equal(t, []string{"cancel:17", "erase:17"}, records.ops)
	assert.Empty(t, notifier.notes)
	assert.Equal(t, 1, sess.clears)
	assert.Empty(t, sess.TempCookie())
}

// TestDispatchRemoteError covers a well-formed error response.
func TestDispatchRemoteError(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{err: &errs.RemoteError{Code: 1, Message: "no handler"}}
	d, records, sess, notifier := newFixture(rpc)

	_, err := d.Dispatch(context.Background(), request())
	require.ErrorIs(t, err, errs.ErrRPCRemote)

	assert.Empty(t, records.ops, "original download must be left untouched")
	require.Len(t, notifier.notes, 1)
	assert.True(t, strings.Contains(notifier.notes[0].Message, "no handler"), notifier.notes[0].Message)
	assert.Equal(t, 1, sess.clears)
	assert.Empty(t, sess.TempCookie())
}

func TestDispatchTransportError(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{err: errors.Join(errs.ErrRPCTransport, errors.New("connection refused"))}
	d, records, sess, notifier := newFixture(rpc)

	_, err := d.Dispatch(context.Background(), request())
	require.ErrorIs(t, err, errs.ErrRPCTransport)
	assert.Empty(t, records.ops)
	require.Len(t, notifier.notes, 1)
	assert.Contains(t, notifier.notes[0].Message, "connection refused")
	assert.Equal(t, 1, sess.clears)
}

// TestDispatchNullResult keeps the original download when aria2 answers
// without a GID.
func TestDispatchNullResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":"x","result":null}`)
	}))
	t.Cleanup(srv.Close)

	records := &fakeRecords{}
	sess := &countingSession{Store: session.NewStore()}
	sess.SetTempCookie("sid=1")
	notifier := &fakeNotifier{}
	d := NewDispatcher(downloaders.NewAria2RPC("", 0), records, sess, notifier)

	req := request()
	req.RPCURL = srv.URL
	gid, err := d.Dispatch(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrRPCTransport)
	assert.Empty(t, gid)

	assert.Empty(t, records.ops, "original download must be left untouched")
	require.Len(t, notifier.notes, 1)
	assert.Equal(t, 1, sess.clears)
	assert.Empty(t, sess.TempCookie())
}

func TestDispatchReconcileIsBestEffort(t *testing.T) {
	t.Parallel()

	rpc := &fakeRPC{gid: "abc"}
	d, records, _, notifier := newFixture(rpc)
	records.cancelErr = errors.New("already gone")

	_, err := d.Dispatch(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, []string{"cancel:17", "erase:17"}, records.ops)
	assert.Empty(t, notifier.notes)
}

func TestBuildHeadersOrder(t *testing.T) {
	t.Parallel()

	persistent := []models.HeaderItem{{Key: "B", Value: "2"}, {Key: " ", Value: "dropped"}, {Key: "A", Value: "1"}}

	assert.Equal(t, []string{"B: 2", "A: 1", "Referer: r", "Cookie: c"}, BuildHeaders(persistent, "r", "c"))
	assert.Equal(t, []string{"B: 2", "A: 1", "Cookie: c"}, BuildHeaders(persistent, "", "c"))
	assert.Equal(t, []string{"B: 2", "A: 1"}, BuildHeaders(persistent, "", ""))
	assert.Empty(t, BuildHeaders(nil, "", ""))
	assert.NotNil(t, BuildHeaders(nil, "", ""))
}
