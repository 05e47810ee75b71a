package naming

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezi-yuan/nacos-naming-go/pkg/cache"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

func newEndpointFromURL(t *testing.T, rawURL string) ServerEndpoint {
	t.Helper()
	// httptest URLs are always "http://127.0.0.1:PORT"; ServerEndpoint.String()
	// must reproduce exactly that so the remote's pre-rendered base URL matches.
	host, port := splitHostPort(t, rawURL)
	return ServerEndpoint{Scheme: "http", Host: host, Port: port, ContextPath: ""}
}

func splitHostPort(t *testing.T, rawURL string) (string, uint16) {
	t.Helper()
	const prefix = "http://"
	require.True(t, len(rawURL) > len(prefix) && rawURL[:len(prefix)] == prefix)
	rest := rawURL[len(prefix):]
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i] == ':' {
			p, err := strconv.Atoi(rest[i+1:])
			require.NoError(t, err)
			return rest[:i], uint16(p)
		}
	}
	t.Fatalf("no port in test server url %q", rawURL)
	return "", 0
}

func newTestClient(t *testing.T, srv *httptest.Server) *NamingClient {
	t.Helper()
	endpoint := newEndpointFromURL(t, srv.URL)
	cfg := Config{
		NamespaceID: "public",
		ServerList:  []ServerEndpoint{endpoint},
		CacheDir:    filepath.Join(t.TempDir(), "failover"),
	}
	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(client.Shutdown)
	return client
}

func TestServerEndpointString(t *testing.T) {
	e := ServerEndpoint{Scheme: "http", Host: "127.0.0.1", Port: 8848, ContextPath: "nacos"}
	assert.Equal(t, "http://127.0.0.1:8848/nacos", e.String())
}

func TestNewRejectsEmptyServerList(t *testing.T) {
	_, err := New(context.Background(), Config{CacheDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrNoHealthyServer)
}

func TestRegisterInstanceStartsBeatTask(t *testing.T) {
	var registerCalls, beatCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ns/instance", func(w http.ResponseWriter, r *http.Request) {
		registerCalls++
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ns/instance/beat", func(w http.ResponseWriter, r *http.Request) {
		beatCalls++
		w.Write([]byte(`{"clientBeatInterval":60000}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv)

	inst, err := client.RegisterInstance(context.Background(), "orders", "", "", "10.0.0.1", 8080, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "DEFAULT_GROUP@@orders", inst.ServiceName)
	assert.Equal(t, int32(1), registerCalls)

	time.Sleep(50 * time.Millisecond)
	assert.GreaterOrEqual(t, beatCalls, int32(1), "register must start a heartbeat task")
}

func TestSelectInstancesQueriesOnCacheMiss(t *testing.T) {
	var queryCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ns/instance/list", func(w http.ResponseWriter, r *http.Request) {
		queryCalls++
		info := model.ServiceInfo{
			ServiceName: "DEFAULT_GROUP@@orders",
			Hosts: []model.Instance{
				{ServiceName: "DEFAULT_GROUP@@orders", IP: "10.0.0.1", Port: 8080, Enabled: true, Weight: 1, Healthy: true},
				{ServiceName: "DEFAULT_GROUP@@orders", IP: "10.0.0.2", Port: 8080, Enabled: true, Weight: 1, Healthy: false},
			},
		}
		encoded, _ := json.Marshal(info)
		w.Write(encoded)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv)

	instances, err := client.SelectInstances(context.Background(), "orders", "", nil, true)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "10.0.0.1", instances[0].IP)
	assert.Equal(t, int32(1), queryCalls)

	instances, err = client.SelectInstances(context.Background(), "orders", "", nil, false)
	require.NoError(t, err)
	assert.Len(t, instances, 2, "cache hit must not re-query the remote")
	assert.Equal(t, int32(1), queryCalls)
}

func TestDeregisterInstanceStopsBeatBeforeRemoteCall(t *testing.T) {
	var registerCalls, deregisterCalls, beatCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ns/instance", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			registerCalls++
		case http.MethodDelete:
			deregisterCalls++
		}
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ns/instance/beat", func(w http.ResponseWriter, r *http.Request) {
		beatCalls++
		w.Write([]byte(`{"clientBeatInterval":60000}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv)

	inst, err := client.RegisterInstance(context.Background(), "orders", "", "", "10.0.0.1", 8080, 0, nil)
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)

	err = client.DeregisterInstance(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, int32(1), deregisterCalls)

	beatsAtDeregister := beatCalls
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, beatsAtDeregister, beatCalls, "no further beats after deregister")
}

func TestSubscribeReturnsClosableHandle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ns/instance/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"DEFAULT_GROUP@@orders","hosts":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv)

	var received []model.Instance
	sub, err := client.Subscribe(context.Background(), "orders", "", nil, cache.ServiceChangeListenerFunc(
		func(ctx context.Context, key string, hosts []model.Instance) {
			received = hosts
		}))
	require.NoError(t, err)
	require.NotNil(t, sub)
	sub.Close()
	_ = received
}
