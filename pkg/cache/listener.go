package cache

import (
	"context"

	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

// ServiceChangeListener is notified whenever a subscribed service's
// instance list changes. Implementations must not block indefinitely: a
// slow listener delays every other listener for the same key and the
// update path that invoked it.
type ServiceChangeListener interface {
	Changed(ctx context.Context, key string, hosts []model.Instance)
}

// ServiceChangeListenerFunc adapts a plain function to ServiceChangeListener.
type ServiceChangeListenerFunc func(ctx context.Context, key string, hosts []model.Instance)

func (f ServiceChangeListenerFunc) Changed(ctx context.Context, key string, hosts []model.Instance) {
	f(ctx, key, hosts)
}
