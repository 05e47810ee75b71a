package remote

import (
	"errors"
	"net"
)

// LocalIP returns the first non-loopback, non-multicast, non-unspecified
// address found on the host, for use as the client_ip field query_instances
// reports to the registry's push target resolution.
func LocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() || ip.IsMulticast() || ip.IsUnspecified() {
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", errors.New("no non-loopback local ip address found")
}
