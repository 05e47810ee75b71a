/*
Package naming is the library's public entry point.

NamingClient composes the remote transport, token holder, service
cache, heartbeat reactor, and push receiver behind six operations:
RegisterInstance, DeregisterInstance, SelectInstances, Subscribe,
Unsubscribe, and the registry-metadata reads QueryService/
QueryAllServices. Every name passed to one of these is combined with a
group into the grouped form "{group}@@{name}" exactly once, at this
boundary — nothing below pkg/naming ever sees a bare service name.

Construction fails on a missing server list, on a cache directory that
cannot be created (or, with LoadAtStart, read), and on a push port that
cannot be bound. Absent credentials and an unreachable registry at
startup do not fail construction: the client starts without a token.

Shutdown tears subsystems down in a fixed order: the background
contexts are canceled first (stopping the push receiver and any
in-flight subscription polls), then the heartbeat reactor, then the
token refresh loop.
*/
package naming
