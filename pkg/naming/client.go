// Package naming provides NamingClient, the facade composing the remote
// transport, token holder, service cache, heartbeat reactor, and push
// receiver into the library's public surface.
package naming

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sezi-yuan/nacos-naming-go/pkg/beat"
	"github.com/sezi-yuan/nacos-naming-go/pkg/cache"
	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
	"github.com/sezi-yuan/nacos-naming-go/pkg/push"
	"github.com/sezi-yuan/nacos-naming-go/pkg/remote"
	"github.com/sezi-yuan/nacos-naming-go/pkg/token"
)

// Subscription is the handle returned by Subscribe. Closing it cancels
// the background polling loop feeding the subscribed service's updates
// into the cache.
type Subscription struct {
	cancel context.CancelFunc
}

// Close stops the subscription's polling loop. Safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
}

// NamingClient is the public entry point: construct one per application
// process (or per registry it must talk to), use it for the lifetime of
// that usage, and call Shutdown when done.
type NamingClient struct {
	cfg Config

	remote   *remote.HTTPNamingRemote
	tokens   *token.AccessTokenHolder
	holder   *cache.ServiceHolder
	reactor  *beat.HeartBeatReactor
	receiver *push.Receiver

	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
}

// New constructs a NamingClient: it creates the cache directory (hydrating
// from disk if LoadAtStart), starts the UDP push receiver, performs the
// initial login and starts the token refresh loop if credentials are
// configured, and wires the heartbeat reactor. The returned client owns
// all of these; call Shutdown to tear them down.
func New(ctx context.Context, cfg Config) (*NamingClient, error) {
	cfg = cfg.WithDefaults()
	if len(cfg.ServerList) == 0 {
		return nil, ErrNoHealthyServer
	}

	holder, err := cache.NewServiceHolder(cfg.CacheDir, cfg.UpdateWhenEmpty, cfg.LoadAtStart)
	if err != nil {
		return nil, err
	}

	clientCtx, cancel := context.WithCancel(ctx)

	receiverPort := push.PickPort()
	httpRemote := remote.NewHTTPNamingRemote(cfg.serverAddresses(), receiverPort)

	receiver, err := push.NewReceiver(clientCtx, receiverPort, holder)
	if err != nil {
		cancel()
		return nil, err
	}

	tokens := token.NewAccessTokenHolder(clientCtx, httpRemote, cfg.Username, cfg.Password)
	reactor := beat.NewHeartBeatReactor(httpRemote, tokens)
	logger := log.WithComponent("naming")

	logger.Info().Str("namespace", cfg.NamespaceID).Strs("servers", cfg.serverAddresses()).
		Uint16("push_port", receiver.Port()).Msg("naming client initialized")

	return &NamingClient{
		cfg:      cfg,
		remote:   httpRemote,
		tokens:   tokens,
		holder:   holder,
		reactor:  reactor,
		receiver: receiver,
		ctx:      clientCtx,
		cancel:   cancel,
		logger:   logger,
	}, nil
}

func (c *NamingClient) groupedName(name, group string) string {
	return model.GroupedServiceName(name, c.resolveGroup(group))
}

func (c *NamingClient) resolveGroup(group string) string {
	if group == "" {
		return c.cfg.Group
	}
	return group
}

// RegisterInstance builds an instance from name/group/clusterName/ip/port
// (an empty group or clusterName falls back to the client's configured
// default; weight <= 0 keeps the default weight 1; nil metadata keeps an
// empty map), registers it and, on success, starts a heartbeat task for it.
func (c *NamingClient) RegisterInstance(ctx context.Context, name, group, clusterName, ip string, port uint16, weight float64, metadata map[string]string) (model.Instance, error) {
	if group == "" {
		group = c.cfg.Group
	}
	if clusterName == "" {
		clusterName = c.cfg.Cluster
	}

	instance := model.NewInstance(name, group, clusterName, ip, port)
	if weight > 0 {
		instance.Weight = weight
	}
	if metadata != nil {
		instance.Metadata = metadata
	}

	serviceLogger := log.WithService(instance.ServiceName)
	if err := c.remote.RegisterInstance(ctx, c.cfg.NamespaceID, c.tokens.Token(), instance); err != nil {
		serviceLogger.Error().Err(err).Str("ip", ip).Msg("failed to register instance")
		return model.Instance{}, err
	}
	serviceLogger.Info().Str("ip", ip).Uint16("port", port).Msg("instance registered")

	c.reactor.AddTask(ctx, c.cfg.NamespaceID, instance)
	return instance, nil
}

// DeregisterInstance stops the instance's heartbeat task before issuing
// the remote deregistration, so beating stops immediately even if the
// remote call itself fails. An instance this client never registered (and
// so never started a task for) is still deregistered remotely; a tool
// cleaning up another process's registration is a legitimate caller.
func (c *NamingClient) DeregisterInstance(ctx context.Context, instance model.Instance) error {
	serviceLogger := log.WithService(instance.ServiceName)
	if !c.reactor.RemoveTask(instance) {
		serviceLogger.Debug().Str("ip", instance.IP).Msg("deregistering an instance this client never registered")
	}

	if err := c.remote.DeregisterInstance(ctx, c.cfg.NamespaceID, c.tokens.Token(), instance); err != nil {
		serviceLogger.Error().Err(err).Str("ip", instance.IP).Msg("failed to deregister instance")
		return err
	}
	serviceLogger.Info().Str("ip", instance.IP).Msg("instance deregistered")
	return nil
}

// SelectInstances returns the instances of name/group/clusters matching
// enabled=true, weight>0, and (if healthyOnly) healthy=true. It serves
// from the cache when present, querying the remote only on a cache miss.
func (c *NamingClient) SelectInstances(ctx context.Context, name, group string, clusters []string, healthyOnly bool) ([]model.Instance, error) {
	resolvedGroup := c.resolveGroup(group)
	grouped := model.GroupedServiceName(name, resolvedGroup)

	info, ok := c.holder.GetServiceInfo(grouped, clusters)
	if !ok {
		queried, err := c.remote.QueryInstances(ctx, c.cfg.NamespaceID, c.tokens.Token(), grouped, resolvedGroup, clusters, healthyOnly)
		if err != nil {
			return nil, err
		}
		c.holder.UpdateServiceInfo(ctx, queried)
		info, ok = c.holder.GetServiceInfo(grouped, clusters)
		if !ok {
			return nil, ErrCacheMiss
		}
	}

	filtered := make([]model.Instance, 0, len(info.Hosts))
	for _, inst := range info.Hosts {
		if !inst.Enabled || inst.Weight <= 0 {
			continue
		}
		if healthyOnly && !inst.Healthy {
			continue
		}
		filtered = append(filtered, inst)
	}
	return filtered, nil
}

// Subscribe starts the remote's 9-second polling loop for name/group/
// clusters and registers listener against the cache. The returned
// Subscription's Close stops the polling loop; Shutdown stops it too.
func (c *NamingClient) Subscribe(ctx context.Context, name, group string, clusters []string, listener cache.ServiceChangeListener) (*Subscription, error) {
	resolvedGroup := c.resolveGroup(group)
	grouped := model.GroupedServiceName(name, resolvedGroup)

	pollCtx, cancel := context.WithCancel(ctx)
	context.AfterFunc(c.ctx, cancel)
	if err := c.remote.Subscribe(pollCtx, c.cfg.NamespaceID, c.tokens, grouped, resolvedGroup, clusters, c.holder); err != nil {
		cancel()
		return nil, err
	}

	clustersCSV := ""
	for i, cl := range clusters {
		if i > 0 {
			clustersCSV += ","
		}
		clustersCSV += cl
	}
	c.holder.RegisterSubscribe(grouped, clustersCSV, listener)

	return &Subscription{cancel: cancel}, nil
}

// Unsubscribe is a deprecated wire-level no-op kept for parity with the
// registry protocol; new callers should use the Subscription handle
// returned from Subscribe to stop a poll.
func (c *NamingClient) Unsubscribe(ctx context.Context, name, group string, clusters []string) error {
	resolvedGroup := c.resolveGroup(group)
	grouped := model.GroupedServiceName(name, resolvedGroup)
	return c.remote.Unsubscribe(ctx, c.cfg.NamespaceID, c.tokens.Token(), grouped, resolvedGroup, clusters)
}

// QueryService returns registry-level metadata for name/group.
func (c *NamingClient) QueryService(ctx context.Context, name, group string) (model.Service, error) {
	grouped := c.groupedName(name, group)
	return c.remote.QueryService(ctx, c.cfg.NamespaceID, c.tokens.Token(), grouped)
}

// QueryAllServices returns a page of registry-level service metadata,
// optionally filtered server-side by selector.
func (c *NamingClient) QueryAllServices(ctx context.Context, group string, selector *model.ExpressionSelector, pageNum, pageSize uint32) ([]model.Service, error) {
	if group == "" {
		group = c.cfg.Group
	}
	return c.remote.QueryAllServices(ctx, c.cfg.NamespaceID, c.tokens.Token(), group, selector, pageNum, pageSize)
}

// Shutdown tears down the receiver, the heartbeat reactor, and the token
// holder, in that order.
func (c *NamingClient) Shutdown() {
	c.cancel()
	c.reactor.Shutdown()
	c.tokens.Shutdown()
	c.logger.Info().Str("namespace", c.cfg.NamespaceID).Msg("naming client shut down")
}
