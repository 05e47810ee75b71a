package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

func TestRegisterInstancePostsExpectedFields(t *testing.T) {
	var gotPath, gotMethod string
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, r.ParseForm())
		form = r.Form
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	remote := NewHTTPNamingRemote([]string{srv.URL}, 54951)
	inst := model.NewInstance("orders", "DEFAULT_GROUP", "DEFAULT", "10.0.0.1", 8080)

	err := remote.RegisterInstance(context.Background(), "public", "tok", inst)
	require.NoError(t, err)

	assert.Equal(t, instancePath, gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "public", form.Get("namespaceId"))
	assert.Equal(t, "DEFAULT_GROUP@@orders", form.Get("serviceName"))
	assert.Equal(t, "10.0.0.1", form.Get("ip"))
	assert.Equal(t, "8080", form.Get("port"))
	assert.Equal(t, "tok", form.Get("accessToken"))
}

func TestDeregisterInstanceUsesDelete(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	remote := NewHTTPNamingRemote([]string{srv.URL}, 54951)
	inst := model.NewInstance("orders", "DEFAULT_GROUP", "DEFAULT", "10.0.0.1", 8080)

	err := remote.DeregisterInstance(context.Background(), "public", "", inst)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestQueryInstancesParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "orders", r.URL.Query().Get("serviceName"))
		w.Write([]byte(`{"name":"DEFAULT_GROUP@@orders","hosts":[{"ip":"10.0.0.1","port":8080}]}`))
	}))
	defer srv.Close()

	remote := NewHTTPNamingRemote([]string{srv.URL}, 54951)
	info, err := remote.QueryInstances(context.Background(), "public", "", "orders", "DEFAULT_GROUP", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "DEFAULT_GROUP@@orders", info.ServiceName)
	require.Len(t, info.Hosts, 1)
	assert.Equal(t, "10.0.0.1", info.Hosts[0].IP)
}

func TestBeatEncodesBeatInfoAsJSON(t *testing.T) {
	var gotBeat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotBeat = r.Form.Get("beat")
		w.Write([]byte(`{"clientBeatInterval":5000}`))
	}))
	defer srv.Close()

	remote := NewHTTPNamingRemote([]string{srv.URL}, 54951)
	req := &model.BeatRequest{
		NamespaceID: "public",
		ServiceName: "DEFAULT_GROUP@@orders",
		BeatInfo:    model.BeatInfo{IP: "10.0.0.1", Port: 8080, ServiceName: "DEFAULT_GROUP@@orders"},
	}

	ack, err := remote.Beat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), ack.ClientBeatInterval)
	assert.Contains(t, gotBeat, "10.0.0.1")
}

func TestLoginPostsCredentials(t *testing.T) {
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotUser = r.Form.Get("username")
		gotPass = r.Form.Get("password")
		w.Write([]byte(`{"accessToken":"abc","tokenTtl":18000}`))
	}))
	defer srv.Close()

	remote := NewHTTPNamingRemote([]string{srv.URL}, 54951)
	token, err := remote.Login(context.Background(), "nacos", "secret")
	require.NoError(t, err)
	assert.Equal(t, "nacos", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "abc", token.AccessToken)
}
