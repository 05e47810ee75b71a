// Package remote implements the stateless HTTP transport against a pool of
// nacos-style registry servers: login, instance CRUD, instance/service
// queries, heartbeats, and the subscribe polling loop.
package remote

import (
	"context"

	"github.com/sezi-yuan/nacos-naming-go/pkg/cache"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

// TokenSource is the minimal view of an access-token holder that the
// remote transport needs. It is a narrow interface (rather than an import
// of pkg/token) so this package and pkg/token never import each other.
type TokenSource interface {
	// Token returns the current access token, or "" if none is held or
	// the held token is not valid.
	Token() string
}

// NamingRemote is every operation the client issues against the registry.
// All service names passed in are already in grouped form
// ("{group}@@{name}"); groupName is carried separately only because the
// wire protocol has its own redundant groupName field.
type NamingRemote interface {
	Login(ctx context.Context, username, password string) (model.Token, error)

	RegisterInstance(ctx context.Context, namespaceID, token string, instance model.Instance) error
	DeregisterInstance(ctx context.Context, namespaceID, token string, instance model.Instance) error
	UpdateInstance(ctx context.Context, namespaceID, token string, instance model.Instance) error

	QueryInstances(ctx context.Context, namespaceID, token, serviceName, groupName string, clusters []string, healthyOnly bool) (model.ServiceInfo, error)
	QueryService(ctx context.Context, namespaceID, token, serviceName string) (model.Service, error)
	QueryAllServices(ctx context.Context, namespaceID, token, groupName string, selector *model.ExpressionSelector, pageNum, pageSize uint32) ([]model.Service, error)

	Beat(ctx context.Context, req *model.BeatRequest) (model.BeatAck, error)

	// Subscribe starts a background poll of QueryInstances every 9 seconds,
	// feeding each result into holder, until ctx is canceled.
	Subscribe(ctx context.Context, namespaceID string, tokens TokenSource, serviceName, groupName string, clusters []string, holder *cache.ServiceHolder) error
	Unsubscribe(ctx context.Context, namespaceID, token, serviceName, groupName string, clusters []string) error
}
