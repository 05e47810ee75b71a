// Package token manages the access token used to authenticate naming
// requests: a synchronous login at construction, followed by a background
// refresh loop that re-authenticates at half the token's TTL.
package token

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/metrics"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

// loginer is the narrow slice of remote.NamingRemote the holder needs.
// Declared locally so this package never imports pkg/remote; pkg/remote's
// TokenSource is satisfied by *AccessTokenHolder without either package
// depending on the other.
type loginer interface {
	Login(ctx context.Context, username, password string) (model.Token, error)
}

const errorRetryInterval = 6 * time.Second

// AccessTokenHolder owns the current access token and keeps it refreshed
// in the background. When no credentials are configured it holds a
// permanently empty token and never starts the refresh loop, so callers
// see an always-absent token rather than having to special-case auth.
type AccessTokenHolder struct {
	remote   loginer
	username string
	password string

	mu    sync.RWMutex
	token model.Token

	cancel context.CancelFunc
	done   chan struct{}
	logger zerolog.Logger
}

// NewAccessTokenHolder performs a synchronous login (when credentials are
// non-empty) and starts the background refresh loop. A failed initial
// login is logged, not returned: the holder simply starts with an empty
// token and lets the refresh loop retry.
func NewAccessTokenHolder(ctx context.Context, remote loginer, username, password string) *AccessTokenHolder {
	h := &AccessTokenHolder{
		remote:   remote,
		username: username,
		password: password,
		done:     make(chan struct{}),
		logger:   log.WithComponent("token"),
	}

	if username == "" && password == "" {
		close(h.done)
		return h
	}

	wait := errorRetryInterval
	if tok, err := remote.Login(ctx, username, password); err != nil {
		h.logger.Error().Err(err).Msg("failed to obtain initial access token")
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
	} else {
		h.token = tok
		metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
		metrics.TokenTTLSeconds.Set(float64(tok.TokenTTL))
		wait = time.Duration(tok.TokenTTL/2) * time.Second
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	go h.refreshLoop(loopCtx, wait)
	return h
}

// Token returns the current access token, or "" if none is held (no
// credentials configured, no successful login yet, or a token whose TTL
// fails model.Token.Valid). It implements remote.TokenSource.
func (h *AccessTokenHolder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.token.Valid() {
		return ""
	}
	return h.token.AccessToken
}

func (h *AccessTokenHolder) refreshLoop(ctx context.Context, wait time.Duration) {
	defer close(h.done)
	for {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		tok, err := h.remote.Login(ctx, h.username, h.password)

		wait = errorRetryInterval
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to refresh access token, retrying later")
			metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		} else {
			h.mu.Lock()
			h.token = tok
			h.mu.Unlock()
			metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
			metrics.TokenTTLSeconds.Set(float64(tok.TokenTTL))
			wait = time.Duration(tok.TokenTTL/2) * time.Second
			h.logger.Debug().Dur("wait", wait).Msg("obtained new access token")
		}
	}
}

// Shutdown stops the refresh loop and waits for it to exit. Safe to call
// even when no credentials were configured (the loop never started).
func (h *AccessTokenHolder) Shutdown() {
	if h.cancel != nil {
		h.cancel()
	}
	<-h.done
}
