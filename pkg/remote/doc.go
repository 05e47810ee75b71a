/*
Package remote implements NamingRemote, the client's transport to a
nacos-style registry over its HTTP/form/JSON wire protocol.

# Server rotation

Every call picks a random starting index into the configured server list
and walks forward on failure:

	index := rand.Intn(len(servers))
	for attempt := 0; attempt < len(servers); attempt++ {
		resp, err := send(servers[index])
		if err == nil {
			return resp, nil
		}
		if isRemoteError(err) {
			return nil, err   // the server answered; rotating won't help
		}
		index = (index + 1) % len(servers)
	}
	return nil, ErrAllServersFailed

A transport-level failure (dial/timeout/connection reset) rotates to the
next server. A well-formed non-200 response does not: the server is
reachable and has already given an authoritative answer, so retrying
elsewhere would not change it.

# TokenSource

NamingRemote takes a TokenSource, not a concrete token holder, so this
package does not depend on whatever manages login and refresh. The
token package implements it; the two avoid importing each other.
*/
package remote
