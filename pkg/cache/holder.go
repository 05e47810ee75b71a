// Package cache holds the in-memory map of discovered services
// (ServiceHolder), diffs updates into logical add/remove notifications for
// registered listeners, and mirrors every snapshot to an on-disk failover
// directory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/metrics"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

// ServiceHolder is the client's authoritative local view of discovered
// services. It is safe for concurrent use.
type ServiceHolder struct {
	mu              sync.RWMutex
	services        map[string]model.ServiceInfo
	callbacks       map[string][]ServiceChangeListener
	cacheDir        string
	updateWhenEmpty bool
	logger          zerolog.Logger
}

// NewServiceHolder creates the cache directory if missing and, when
// loadAtStart is true, hydrates the in-memory map from it.
func NewServiceHolder(cacheDir string, updateWhenEmpty, loadAtStart bool) (*ServiceHolder, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	h := &ServiceHolder{
		services:        make(map[string]model.ServiceInfo),
		callbacks:       make(map[string][]ServiceChangeListener),
		cacheDir:        cacheDir,
		updateWhenEmpty: updateWhenEmpty,
		logger:          log.WithComponent("cache"),
	}

	if loadAtStart {
		if err := h.loadFromDisk(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *ServiceHolder) loadFromDisk() error {
	entries, err := os.ReadDir(h.cacheDir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(h.cacheDir, entry.Name()))
		if err != nil {
			h.logger.Error().Err(err).Str("file", entry.Name()).Msg("failed to read failover cache file")
			continue
		}
		var info model.ServiceInfo
		if err := json.Unmarshal(content, &info); err != nil {
			h.logger.Error().Err(err).Str("file", entry.Name()).Msg("failed to parse failover cache file")
			continue
		}
		h.services[entry.Name()] = info
	}
	return nil
}

// GetServiceInfo returns a copy of the cached entry for service_name under
// the given clusters (joined in the caller's order), and whether it was
// present. No staleness check is performed; callers decide what to do with
// an expired entry.
func (h *ServiceHolder) GetServiceInfo(serviceName string, clusters []string) (model.ServiceInfo, bool) {
	key := model.GenerateKey(serviceName, strings.Join(clusters, ","))
	h.mu.RLock()
	defer h.mu.RUnlock()
	info, ok := h.services[key]
	return info, ok
}

// UpdateServiceInfo replaces the cached entry for info's key, diffs the new
// host list against the previous one, fans the result out to every
// registered listener (awaited in registration order), and persists the
// new snapshot to disk. A persistence failure is logged, not returned.
//
// When updateWhenEmpty is false, an update whose Hosts is empty is ignored
// if the existing entry is non-empty, so a transient server glitch cannot
// blank a good snapshot.
func (h *ServiceHolder) UpdateServiceInfo(ctx context.Context, info model.ServiceInfo) {
	key := info.GetKey()
	serviceLogger := log.WithService(info.ServiceName)

	h.mu.Lock()
	old, hadOld := h.services[key]
	if !h.updateWhenEmpty && len(info.Hosts) == 0 && hadOld && len(old.Hosts) > 0 {
		h.mu.Unlock()
		metrics.CacheUpdatesTotal.WithLabelValues("suppressed").Inc()
		serviceLogger.Debug().Str("key", key).Msg("ignoring empty service update")
		return
	}
	h.services[key] = info
	metrics.CacheServicesTotal.Set(float64(len(h.services)))
	listeners := append([]ServiceChangeListener(nil), h.callbacks[key]...)
	var oldHosts []model.Instance
	if hadOld {
		oldHosts = old.Hosts
	}
	h.mu.Unlock()

	delivered := diffInstances(oldHosts, info.Hosts)
	metrics.CacheUpdatesTotal.WithLabelValues("applied").Inc()

	for _, listener := range listeners {
		listener.Changed(ctx, key, delivered)
		serviceLogger.Debug().Str("key", key).Msg("service change notified")
	}

	if err := h.persist(key, info); err != nil {
		metrics.CachePersistFailuresTotal.Inc()
		serviceLogger.Warn().Err(err).Str("key", key).Msg("failed to write failover cache file")
	}
}

func (h *ServiceHolder) persist(key string, info model.ServiceInfo) error {
	content, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(h.cacheDir, key), content, 0o644)
}

// diffInstances computes the sequence delivered to listeners: new hosts
// pass through as-is; an old host absent from new is appended with
// Enabled=false (logical removal). An empty or absent old list delivers
// new unchanged.
func diffInstances(old, new []model.Instance) []model.Instance {
	if len(old) == 0 {
		return new
	}

	delivered := append([]model.Instance(nil), new...)
	for _, oldInstance := range old {
		if instanceIn(new, oldInstance) {
			continue
		}
		removed := oldInstance
		removed.Enabled = false
		delivered = append(delivered, removed)
	}
	return delivered
}

func instanceIn(hosts []model.Instance, target model.Instance) bool {
	for _, h := range hosts {
		if h.Key() == target.Key() {
			return true
		}
	}
	return false
}

// RegisterSubscribe appends listener to the callback list for the key
// composed from serviceName and clustersCSV. Duplicate registrations fire
// multiple times; callers that need idempotence must deduplicate.
func (h *ServiceHolder) RegisterSubscribe(serviceName, clustersCSV string, listener ServiceChangeListener) {
	key := model.GenerateKey(serviceName, clustersCSV)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks[key] = append(h.callbacks[key], listener)
}

// Snapshot returns a copy of the full service map, used by the push
// receiver's dump reply.
func (h *ServiceHolder) Snapshot() map[string]model.ServiceInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]model.ServiceInfo, len(h.services))
	for k, v := range h.services {
		out[k] = v
	}
	return out
}
