// Package constants holds the default values and wire constants shared
// across the naming client's packages.
package constants

const (
	// DefaultNamespace is the namespace used when a naming.Config leaves
	// NamespaceID empty.
	DefaultNamespace = "public"

	// DefaultGroup is the group used when a caller does not specify one.
	DefaultGroup = "DEFAULT_GROUP"

	// DefaultCluster is the cluster used when a caller does not specify one.
	DefaultCluster = "DEFAULT"

	// DefaultServerScheme is the URL scheme assumed for a ServerEndpoint
	// that does not specify one.
	DefaultServerScheme = "http"

	// DefaultServerContext is the path segment nacos-style servers mount
	// their naming API under.
	DefaultServerContext = "nacos"

	// DefaultFailoverDir is the directory segment, relative to a working
	// directory, conventionally used for the failover cache.
	DefaultFailoverDir = "naming/failover"

	// ServiceInfoSplitter separates a service name from its cluster list
	// in a cache key, and a group from a service name in a grouped name.
	ServiceInfoSplitter = "@@"
)

// Push packet types carried on PushPacket.Type.
const (
	PushTypeDom     = "dom"
	PushTypeService = "service"
	PushTypeDump    = "dump"
)
