package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/metrics"
)

const (
	clientVersion = "nacos-naming-go:1"
	userAgent     = "nacos-naming-go/1.0"
)

// httpClient is the low-level requester shared by every HTTPNamingRemote
// operation: it owns the pooled transport, the default header set, and the
// server-rotation-on-transport-failure algorithm.
type httpClient struct {
	inner *http.Client
}

func newHTTPClient() *httpClient {
	return &httpClient{
		inner: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   6 * time.Second,
					KeepAlive: 10 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 3,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// requestJSON issues requestStr and decodes the response body as JSON.
func (c *httpClient) requestJSON(ctx context.Context, operation string, base []string, path, method string, data url.Values, out any) error {
	text, err := c.requestStr(ctx, operation, base, path, method, data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// requestStr performs the server-rotation algorithm: start at a random
// index into base, try each server in turn on transport failure, and
// return the first successful body. A non-200 status is an authoritative
// remote error and is returned immediately without rotating.
func (c *httpClient) requestStr(ctx context.Context, operation string, base []string, path, method string, data url.Values) (string, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.RemoteRequestDuration, operation)

	n := len(base)
	index := rand.Intn(n)
	var lastErr error
	for attempt := 0; attempt < n; attempt++ {
		target := base[index] + path
		text, err := c.sendRequest(ctx, target, method, data)
		if err == nil {
			metrics.RemoteRequestsTotal.WithLabelValues(operation, "success").Inc()
			return text, nil
		}

		if _, ok := err.(*RemoteError); ok {
			metrics.RemoteRequestsTotal.WithLabelValues(operation, "remote_error").Inc()
			return "", err
		}

		log.Logger.Error().Err(err).Str("server", target).Str("operation", operation).
			Msg("naming server request failed, rotating")
		metrics.RemoteRequestsTotal.WithLabelValues(operation, "transport_error").Inc()
		metrics.RemoteServerRotations.Inc()
		lastErr = err
		index = (index + 1) % n
	}

	return "", fmt.Errorf("%w: %v", &ErrAllServersFailed{Attempts: n}, lastErr)
}

func (c *httpClient) sendRequest(ctx context.Context, target, method string, data url.Values) (string, error) {
	var req *http.Request
	var err error

	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, target+"?"+data.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, target, strings.NewReader(data.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return "", err
	}

	requestID := uuid.NewString()
	requestLogger := log.WithRequestID(requestID)

	req.Header.Set("Client-Version", clientVersion)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip,deflate,sdch")
	req.Header.Set("Requester", "Keep-Alive")
	req.Header.Set("Request-Module", "naming")
	req.Header.Set("RequestId", requestID)

	resp, err := c.inner.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &RemoteError{Status: resp.StatusCode, Body: string(body)}
	}

	requestLogger.Debug().Str("url", target).Str("resp", string(body)).Msg("naming server response")
	return string(body), nil
}
