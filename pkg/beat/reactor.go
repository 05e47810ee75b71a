// Package beat implements the heartbeat reactor: one cancellable
// goroutine per registered instance that periodically beats it alive and
// self-tunes its period from the registry's ack.
package beat

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/metrics"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

const initialPeriod = 5 * time.Second

// beater is the slice of remote.NamingRemote the reactor needs.
type beater interface {
	Beat(ctx context.Context, req *model.BeatRequest) (model.BeatAck, error)
	RegisterInstance(ctx context.Context, namespaceID, token string, instance model.Instance) error
}

// tokens is the slice of token.AccessTokenHolder the reactor needs.
type tokens interface {
	Token() string
}

// HeartBeatReactor keeps a set of registered instances alive by beating
// each on its own self-tuned period until its task is removed or the
// reactor is shut down.
type HeartBeatReactor struct {
	remote beater
	tokens tokens

	mu   sync.Mutex
	task map[string]context.CancelFunc
}

func NewHeartBeatReactor(remote beater, tokens tokens) *HeartBeatReactor {
	return &HeartBeatReactor{
		remote: remote,
		tokens: tokens,
		task:   make(map[string]context.CancelFunc),
	}
}

func buildKey(instance model.Instance) string {
	return instance.ServiceName + "#" + instance.IP + "#" + strconv.Itoa(int(instance.Port))
}

// AddTask starts beating instance under namespaceID. Calling it again for
// the same instance key (service/ip/port) is a no-op: the existing
// task keeps running unchanged.
func (r *HeartBeatReactor) AddTask(ctx context.Context, namespaceID string, instance model.Instance) {
	key := buildKey(instance)

	r.mu.Lock()
	if _, exists := r.task[key]; exists {
		r.mu.Unlock()
		return
	}
	taskCtx, cancel := context.WithCancel(ctx)
	r.task[key] = cancel
	metrics.BeatTasksActive.Inc()
	r.mu.Unlock()

	beatInfo := model.BeatInfo{
		IP:          instance.IP,
		Port:        instance.Port,
		Weight:      instance.Weight,
		ServiceName: instance.ServiceName,
		Cluster:     instance.ClusterName,
		Metadata:    instance.Metadata,
	}
	encoded, err := json.Marshal(beatInfo)
	if err != nil {
		log.WithInstance(key).Error().Err(err).Msg("beat_info cannot serialize, not starting task")
		r.mu.Lock()
		delete(r.task, key)
		metrics.BeatTasksActive.Dec()
		r.mu.Unlock()
		return
	}

	req := &model.BeatRequest{
		NamespaceID: namespaceID,
		ServiceName: instance.ServiceName,
		Beat:        string(encoded),
		BeatInfo:    beatInfo,
		Period:      initialPeriod,
	}

	go r.run(taskCtx, namespaceID, instance, req)
}

func (r *HeartBeatReactor) run(ctx context.Context, namespaceID string, instance model.Instance, req *model.BeatRequest) {
	key := buildKey(instance)
	taskLogger := log.WithInstance(key)

	defer func() {
		r.mu.Lock()
		delete(r.task, key)
		metrics.BeatTasksActive.Dec()
		r.mu.Unlock()
	}()

	for {
		req.AccessToken = r.tokens.Token()
		ack, err := r.remote.Beat(ctx, req)

		switch {
		case err != nil:
			taskLogger.Error().Err(err).Msg("failed to send beat")
			metrics.BeatsTotal.WithLabelValues("failure").Inc()
		case ack.Code != nil && *ack.Code == model.RespCodeResourceNotFound:
			taskLogger.Warn().Msg("instance unknown to registry, re-registering")
			metrics.BeatsTotal.WithLabelValues("resource_not_found").Inc()
			metrics.BeatReregistrationsTotal.Inc()
			if err := r.remote.RegisterInstance(ctx, namespaceID, req.AccessToken, instance); err != nil {
				taskLogger.Error().Err(err).Msg("failed to re-register after resource_not_found ack")
			}
		default:
			metrics.BeatsTotal.WithLabelValues("success").Inc()
			if ack.ClientBeatInterval > 2000 {
				req.Period = time.Duration(ack.ClientBeatInterval-2000) * time.Millisecond
			}
		}

		taskLogger.Debug().Dur("period", req.Period).Msg("beat sent, sleeping")

		timer := time.NewTimer(req.Period)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RemoveTask cancels the beat loop for instance, if one is running. It
// reports whether a task actually existed for instance's key.
func (r *HeartBeatReactor) RemoveTask(instance model.Instance) bool {
	key := buildKey(instance)
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.task[key]
	if !ok {
		return false
	}
	cancel()
	delete(r.task, key)
	return true
}

// Shutdown cancels every running beat loop.
func (r *HeartBeatReactor) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, cancel := range r.task {
		cancel()
		delete(r.task, key)
	}
}
