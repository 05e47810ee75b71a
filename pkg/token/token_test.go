package token

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

type fakeLoginer struct {
	calls   int32
	tokens  []model.Token
	errs    []error
	callIdx int32
}

func (f *fakeLoginer) Login(ctx context.Context, username, password string) (model.Token, error) {
	i := atomic.AddInt32(&f.calls, 1) - 1
	if int(i) < len(f.errs) && f.errs[i] != nil {
		return model.Token{}, f.errs[i]
	}
	if int(i) < len(f.tokens) {
		return f.tokens[i], nil
	}
	return model.Token{}, errors.New("no more canned responses")
}

func TestNewAccessTokenHolderNoCredentialsNeverLogsIn(t *testing.T) {
	f := &fakeLoginer{}
	h := NewAccessTokenHolder(context.Background(), f, "", "")
	defer h.Shutdown()

	assert.Equal(t, "", h.Token())
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.calls))
}

func TestNewAccessTokenHolderSynchronousLogin(t *testing.T) {
	f := &fakeLoginer{tokens: []model.Token{{AccessToken: "abc", TokenTTL: 18000}}}
	h := NewAccessTokenHolder(context.Background(), f, "nacos", "secret")
	defer h.Shutdown()

	assert.Equal(t, "abc", h.Token())
}

func TestAccessTokenHolderInitialLoginFailureLeavesEmptyToken(t *testing.T) {
	f := &fakeLoginer{errs: []error{errors.New("boom")}, tokens: []model.Token{{}, {AccessToken: "later", TokenTTL: 18000}}}
	h := NewAccessTokenHolder(context.Background(), f, "nacos", "secret")
	defer h.Shutdown()

	assert.Equal(t, "", h.Token())
}

func TestTokenInvalidBelowSentinelReturnsEmpty(t *testing.T) {
	f := &fakeLoginer{tokens: []model.Token{{AccessToken: "abc", TokenTTL: 5}}}
	h := NewAccessTokenHolder(context.Background(), f, "nacos", "secret")
	defer h.Shutdown()

	assert.Equal(t, "", h.Token(), "a token at or below the validity sentinel must not be presented")
}

func TestShutdownIsIdempotentAndStopsLoop(t *testing.T) {
	f := &fakeLoginer{tokens: []model.Token{{AccessToken: "abc", TokenTTL: 1}}}
	h := NewAccessTokenHolder(context.Background(), f, "nacos", "secret")

	h.Shutdown()
	require.NotPanics(t, func() { h.Shutdown() })

	time.Sleep(10 * time.Millisecond)
	callsAfterShutdown := atomic.LoadInt32(&f.calls)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, callsAfterShutdown, atomic.LoadInt32(&f.calls), "no further logins after shutdown")
}
