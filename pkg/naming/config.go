package naming

import (
	"fmt"

	"github.com/sezi-yuan/nacos-naming-go/pkg/constants"
)

// ServerEndpoint is one registry server, rendered to a base URL.
type ServerEndpoint struct {
	Scheme      string
	Host        string
	Port        uint16
	ContextPath string
}

// String renders the endpoint as "scheme://host:port/context_path", or as
// "scheme://host:port" when ContextPath is empty. An empty Scheme renders
// as constants.DefaultServerScheme.
func (e ServerEndpoint) String() string {
	scheme := e.Scheme
	if scheme == "" {
		scheme = constants.DefaultServerScheme
	}
	if e.ContextPath == "" {
		return fmt.Sprintf("%s://%s:%d", scheme, e.Host, e.Port)
	}
	return fmt.Sprintf("%s://%s:%d/%s", scheme, e.Host, e.Port, e.ContextPath)
}

// Config is the immutable construction-time configuration for a NamingClient.
type Config struct {
	NamespaceID     string
	Group           string
	Cluster         string
	ServerList      []ServerEndpoint
	CacheDir        string
	LoadAtStart     bool
	UpdateWhenEmpty bool
	Username        string
	Password        string
}

// WithDefaults fills in the registry's conventional defaults for any
// zero-valued field, mirroring how a constructor-time config is expected
// to arrive with namespace/group/cluster usually left unset.
func (c Config) WithDefaults() Config {
	if c.NamespaceID == "" {
		c.NamespaceID = constants.DefaultNamespace
	}
	if c.Group == "" {
		c.Group = constants.DefaultGroup
	}
	if c.Cluster == "" {
		c.Cluster = constants.DefaultCluster
	}
	if c.CacheDir == "" {
		c.CacheDir = constants.DefaultFailoverDir
	}
	return c
}

// serverAddresses renders every configured endpoint to a base URL string,
// in the order they were provided.
func (c Config) serverAddresses() []string {
	addrs := make([]string, len(c.ServerList))
	for i, e := range c.ServerList {
		addrs[i] = e.String()
	}
	return addrs
}
