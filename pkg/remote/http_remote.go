package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sezi-yuan/nacos-naming-go/pkg/cache"
	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
)

const (
	loginPath    = "/v1/auth/users/login"
	instancePath = "/v1/ns/instance"
	servicePath  = "/v1/ns/service"
)

// HTTPNamingRemote is the NamingRemote implementation that speaks the
// registry's HTTP/form/JSON wire protocol.
type HTTPNamingRemote struct {
	client       *httpClient
	addresses    []string
	receiverPort uint16
	clientIP     string
}

// NewHTTPNamingRemote builds a remote bound to the given pre-rendered
// server base URLs. receiverPort is the UDP push-receiver port this
// process is listening on; it is reported to the registry via
// QueryInstances so push notifications can find their way back.
func NewHTTPNamingRemote(addresses []string, receiverPort uint16) *HTTPNamingRemote {
	ip, err := LocalIP()
	if err != nil {
		log.Logger.Warn().Err(err).Msg("falling back to loopback for client ip")
		ip = "127.0.0.1"
	}

	r := &HTTPNamingRemote{
		client:       newHTTPClient(),
		addresses:    addresses,
		receiverPort: receiverPort,
		clientIP:     ip,
	}
	log.Logger.Info().Strs("servers", addresses).Str("client_ip", ip).Uint16("receiver_port", receiverPort).
		Msg("http naming remote initialized")
	return r
}

func (r *HTTPNamingRemote) Login(ctx context.Context, username, password string) (model.Token, error) {
	data := url.Values{"username": {username}, "password": {password}}
	var token model.Token
	err := r.client.requestJSON(ctx, "login", r.addresses, loginPath, http.MethodPost, data, &token)
	return token, err
}

func (r *HTTPNamingRemote) RegisterInstance(ctx context.Context, namespaceID, token string, instance model.Instance) error {
	data, err := instanceForm(namespaceID, token, instance)
	if err != nil {
		return err
	}
	_, err = r.client.requestStr(ctx, "register_instance", r.addresses, instancePath, http.MethodPost, data)
	return err
}

func (r *HTTPNamingRemote) DeregisterInstance(ctx context.Context, namespaceID, token string, instance model.Instance) error {
	data := url.Values{
		"namespaceId": {namespaceID},
		"serviceName": {instance.ServiceName},
		"clusterName": {instance.ClusterName},
		"ip":          {instance.IP},
		"port":        {strconv.Itoa(int(instance.Port))},
		"ephemeral":   {strconv.FormatBool(instance.Ephemeral)},
	}
	if token != "" {
		data.Set("accessToken", token)
	}
	_, err := r.client.requestStr(ctx, "deregister_instance", r.addresses, instancePath, http.MethodDelete, data)
	return err
}

func (r *HTTPNamingRemote) UpdateInstance(ctx context.Context, namespaceID, token string, instance model.Instance) error {
	data, err := instanceForm(namespaceID, token, instance)
	if err != nil {
		return err
	}
	_, err = r.client.requestStr(ctx, "update_instance", r.addresses, instancePath, http.MethodPut, data)
	return err
}

func instanceForm(namespaceID, token string, instance model.Instance) (url.Values, error) {
	metadata, err := json.Marshal(instance.Metadata)
	if err != nil {
		return nil, err
	}
	data := url.Values{
		"namespaceId": {namespaceID},
		"serviceName": {instance.ServiceName},
		"groupName":   {instance.GroupName},
		"clusterName": {instance.ClusterName},
		"ip":          {instance.IP},
		"port":        {strconv.Itoa(int(instance.Port))},
		"weight":      {strconv.FormatFloat(instance.Weight, 'f', -1, 64)},
		"healthy":     {strconv.FormatBool(instance.Healthy)},
		"enabled":     {strconv.FormatBool(instance.Enabled)},
		"ephemeral":   {strconv.FormatBool(instance.Ephemeral)},
		"metadata":    {string(metadata)},
	}
	if token != "" {
		data.Set("accessToken", token)
	}
	return data, nil
}

func (r *HTTPNamingRemote) QueryInstances(ctx context.Context, namespaceID, token, serviceName, groupName string, clusters []string, healthyOnly bool) (model.ServiceInfo, error) {
	data := url.Values{
		"namespaceId": {namespaceID},
		"serviceName": {serviceName},
		"groupName":   {groupName},
		"clusters":    {strings.Join(clusters, ",")},
		"udpPort":     {strconv.Itoa(int(r.receiverPort))},
		"clientIP":    {r.clientIP},
		"healthyOnly": {strconv.FormatBool(healthyOnly)},
	}
	if token != "" {
		data.Set("accessToken", token)
	}

	var info model.ServiceInfo
	err := r.client.requestJSON(ctx, "query_instances", r.addresses, instancePath+"/list", http.MethodGet, data, &info)
	return info, err
}

func (r *HTTPNamingRemote) QueryService(ctx context.Context, namespaceID, token, serviceName string) (model.Service, error) {
	data := url.Values{
		"namespaceId": {namespaceID},
		"serviceName": {serviceName},
	}
	if token != "" {
		data.Set("accessToken", token)
	}

	var svc model.Service
	err := r.client.requestJSON(ctx, "query_service", r.addresses, servicePath, http.MethodGet, data, &svc)
	return svc, err
}

func (r *HTTPNamingRemote) QueryAllServices(ctx context.Context, namespaceID, token, groupName string, selector *model.ExpressionSelector, pageNum, pageSize uint32) ([]model.Service, error) {
	data := url.Values{
		"namespaceId": {namespaceID},
		"groupName":   {groupName},
		"pageNo":      {strconv.Itoa(int(pageNum))},
		"pageSize":    {strconv.Itoa(int(pageSize))},
	}
	if token != "" {
		data.Set("accessToken", token)
	}
	if selector != nil {
		encoded, err := json.Marshal(selector)
		if err != nil {
			return nil, err
		}
		data.Set("selector", string(encoded))
	}

	var services []model.Service
	err := r.client.requestJSON(ctx, "query_all_service", r.addresses, servicePath+"/list", http.MethodGet, data, &services)
	return services, err
}

func (r *HTTPNamingRemote) Beat(ctx context.Context, req *model.BeatRequest) (model.BeatAck, error) {
	beatInfo, err := json.Marshal(req.BeatInfo)
	if err != nil {
		return model.BeatAck{}, err
	}
	data := url.Values{
		"namespaceId": {req.NamespaceID},
		"serviceName": {req.ServiceName},
		"beat":        {string(beatInfo)},
	}
	if req.AccessToken != "" {
		data.Set("accessToken", req.AccessToken)
	}

	var ack model.BeatAck
	err = r.client.requestJSON(ctx, "beat", r.addresses, instancePath+"/beat", http.MethodPut, data, &ack)
	return ack, err
}

func (r *HTTPNamingRemote) Subscribe(ctx context.Context, namespaceID string, tokens TokenSource, serviceName, groupName string, clusters []string, holder *cache.ServiceHolder) error {
	poll := func() {
		info, err := r.QueryInstances(ctx, namespaceID, tokens.Token(), serviceName, groupName, clusters, false)
		if err != nil {
			log.Logger.Error().Err(err).Str("service", serviceName).Msg("failed to poll subscribed service")
			return
		}
		holder.UpdateServiceInfo(ctx, info)
	}

	go func() {
		poll()
		ticker := time.NewTicker(9 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()
	return nil
}

// Unsubscribe is a no-op at the wire level; the poll started by Subscribe
// is torn down by canceling the context passed to it, not by this call.
func (r *HTTPNamingRemote) Unsubscribe(ctx context.Context, namespaceID, token, serviceName, groupName string, clusters []string) error {
	return nil
}
