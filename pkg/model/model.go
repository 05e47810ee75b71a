// Package model defines the wire and data types exchanged between the
// naming client and a nacos-style registry: instances, service snapshots,
// heartbeats, tokens, and push packets.
package model

import (
	"strconv"
	"time"

	"github.com/sezi-yuan/nacos-naming-go/pkg/constants"
)

// Instance is a single service endpoint registered with the registry.
type Instance struct {
	ID          string            `json:"id,omitempty"`
	IP          string            `json:"ip"`
	Port        uint16            `json:"port"`
	Weight      float64           `json:"weight"`
	Healthy     bool              `json:"healthy"`
	Enabled     bool              `json:"enabled"`
	Ephemeral   bool              `json:"ephemeral"`
	ServiceName string            `json:"serviceName"`
	GroupName   string            `json:"-"`
	ClusterName string            `json:"clusterName"`
	Metadata    map[string]string `json:"metadata"`
}

// NewInstance builds an Instance with the client library's conventional
// defaults (weight 1, healthy/enabled/ephemeral true), composing
// ServiceName as "{group}@@{name}" the way every instance operation
// expects it.
func NewInstance(serviceName, groupName, clusterName, ip string, port uint16) Instance {
	return Instance{
		ServiceName: GroupedServiceName(serviceName, groupName),
		GroupName:   groupName,
		ClusterName: clusterName,
		IP:          ip,
		Port:        port,
		Weight:      1,
		Healthy:     true,
		Enabled:     true,
		Ephemeral:   true,
		Metadata:    map[string]string{},
	}
}

// NewInstanceWithDefaults builds an Instance under DefaultGroup/DefaultCluster.
func NewInstanceWithDefaults(serviceName, ip string, port uint16) Instance {
	return NewInstance(serviceName, constants.DefaultGroup, constants.DefaultCluster, ip, port)
}

// Key identifies an instance within a service's host list, independent of
// health/weight/metadata, for use in the cache's diff algorithm. Identity
// is (service_name, ip, port, cluster_name).
func (i Instance) Key() string {
	return i.ServiceName + "#" + i.ClusterName + "#" + i.IP + ":" + strconv.Itoa(int(i.Port))
}

// GroupedServiceName composes the registry-facing service name. Every
// instance operation performs this composition exactly once, at the
// facade boundary, so inner components never see a bare service name.
func GroupedServiceName(serviceName, groupName string) string {
	return groupName + constants.ServiceInfoSplitter + serviceName
}

// ServiceInfo is a cached snapshot of a service's instance list as
// returned by the registry or delivered by a push notification.
type ServiceInfo struct {
	ServiceName             string     `json:"name"`
	Clusters                string     `json:"clusters"`
	CacheMillis             uint64     `json:"cacheMillis"`
	Hosts                   []Instance `json:"hosts"`
	LastRefTime             uint64     `json:"lastRefTime"`
	Checksum                string     `json:"checksum"`
	AllIPs                  bool       `json:"allIPs"`
	ReachProtectionThreshold bool      `json:"reachProtectionThreshold"`
}

// GetKey returns the cache key for this snapshot.
func (s ServiceInfo) GetKey() string {
	return GenerateKey(s.ServiceName, s.Clusters)
}

// GenerateKey builds a cache key from a service name and comma-joined
// cluster list. A service name alone is used verbatim when no clusters
// are specified.
func GenerateKey(name, clusters string) string {
	if clusters != "" {
		return name + constants.ServiceInfoSplitter + clusters
	}
	return name
}

// Expired reports whether this snapshot is older than its own CacheMillis
// TTL, relative to wall-clock time.
func (s ServiceInfo) Expired() bool {
	refTime := time.UnixMilli(int64(s.LastRefTime))
	return time.Since(refTime) > time.Duration(s.CacheMillis)*time.Millisecond
}

// BeatInfo is the heartbeat payload embedded (as a JSON string) in a
// BeatRequest's Beat field.
type BeatInfo struct {
	IP          string            `json:"ip"`
	Port        uint16            `json:"port"`
	Weight      float64           `json:"weight"`
	ServiceName string            `json:"serviceName"`
	Cluster     string            `json:"cluster"`
	Metadata    map[string]string `json:"metadata"`
}

// BeatRequest is sent periodically by the heartbeat reactor. AccessToken
// and Period are request-construction fields, not part of the wire form.
type BeatRequest struct {
	NamespaceID string        `json:"namespaceId"`
	ServiceName string        `json:"serviceName"`
	Beat        string        `json:"beat"`
	AccessToken string        `json:"-"`
	BeatInfo    BeatInfo      `json:"-"`
	Period      time.Duration `json:"-"`
}

// RespCode is the registry's response status, carried on a BeatAck.
type RespCode int

const (
	RespCodeOK               RespCode = 10200
	RespCodeResourceNotFound RespCode = 20404
	RespCodeNoNeedRetry      RespCode = 21600
)

// BeatAck is the registry's response to a heartbeat.
type BeatAck struct {
	ClientBeatInterval uint64    `json:"clientBeatInterval"`
	Code               *RespCode `json:"code,omitempty"`
	LightBeatEnabled   *bool     `json:"lightBeatEnabled,omitempty"`
}

// Token is an access token issued by the registry's login endpoint.
// TokenTTL is in seconds.
type Token struct {
	AccessToken string `json:"accessToken"`
	TokenTTL    uint64 `json:"tokenTtl"`
}

// Valid reports whether this is a real token rather than the zero value
// returned when no credentials are configured or a login attempt failed;
// 10000 is a sentinel well below any registry's actual token lifetime.
func (t Token) Valid() bool {
	return t.TokenTTL > 10000
}

// ExpressionSelector filters QueryAllServices results on the server side.
type ExpressionSelector struct {
	Type       string `json:"type"`
	Expression string `json:"expression"`
}

// Service is registry-level metadata about a service, as opposed to its
// instance list (see ServiceInfo).
type Service struct {
	Name                 string            `json:"name"`
	GroupName            string            `json:"groupName"`
	AppName              string            `json:"appName"`
	ProtectionThreshold  float32           `json:"protectionThreshold"`
	Metadata             map[string]string `json:"metadata"`
}

// PushPacket is the UDP push protocol's envelope: "dom"/"service" carry a
// ServiceInfo JSON-encoded in Data, "dump" carries nothing inbound and an
// encoded service map outbound.
type PushPacket struct {
	Type        string `json:"type"`
	LastRefTime uint64 `json:"lastRefTime"`
	Data        string `json:"data"`
}
