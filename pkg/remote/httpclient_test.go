package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStrSucceedsOnFirstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newHTTPClient()
	text, err := c.requestStr(context.Background(), "test", []string{srv.URL}, "/path", http.MethodGet, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestRequestStrRotatesOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dead := "http://127.0.0.1:1"
	c := newHTTPClient()
	text, err := c.requestStr(context.Background(), "test", []string{dead, srv.URL}, "/path", http.MethodGet, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestRequestStrReturnsImmediatelyOnRemoteError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad request"))
	}))
	defer srv.Close()

	c := newHTTPClient()
	_, err := c.requestStr(context.Background(), "test", []string{srv.URL, srv.URL}, "/path", http.MethodGet, url.Values{})
	require.Error(t, err)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.Status)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "a remote error must not trigger rotation to other servers")
}

func TestRequestStrAllServersFailed(t *testing.T) {
	c := newHTTPClient()
	_, err := c.requestStr(context.Background(), "test", []string{"http://127.0.0.1:1", "http://127.0.0.1:2"}, "/path", http.MethodGet, url.Values{})
	require.Error(t, err)
	var allFailed *ErrAllServersFailed
	require.ErrorAs(t, err, &allFailed)
	assert.Equal(t, 2, allFailed.Attempts)
}

func TestSendRequestGetUsesQueryString(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newHTTPClient()
	_, err := c.sendRequest(context.Background(), srv.URL, http.MethodGet, url.Values{"a": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "a=1", gotQuery)
}

func TestSendRequestPostUsesFormBody(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotBody = r.Form.Get("a")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newHTTPClient()
	_, err := c.sendRequest(context.Background(), srv.URL, http.MethodPost, url.Values{"a": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "1", gotBody)
}

func TestSendRequestSetsRequestID(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("RequestId")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newHTTPClient()
	_, err := c.sendRequest(context.Background(), srv.URL, http.MethodGet, url.Values{})
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}
