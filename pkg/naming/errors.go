package naming

import "errors"

var (
	// ErrNoHealthyServer is returned when a Config carries an empty
	// server list; the naming client cannot be constructed without at
	// least one registry endpoint.
	ErrNoHealthyServer = errors.New("naming: no server configured")

	// ErrCacheMiss is returned by SelectInstances when neither the
	// local cache nor a fresh remote query yields an entry for the
	// requested service.
	ErrCacheMiss = errors.New("naming: no cached or remote data for service")
)
