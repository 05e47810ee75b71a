/*
Package push implements the UDP side-channel the registry uses to push
service changes without waiting for the client's next poll.

A Receiver binds a UDP socket (conventionally in [54951, 55950], picked
by PickPort and reported to the registry via QueryInstances' udpPort
field) and loops: read a datagram, gzip-decode it, JSON-decode it into a
PushPacket, act on its type, and send back a small ack packet to the
sender.

	"dom" / "service"  -> decode Data as a ServiceInfo, feed it to the
	                      cache the same way a poll response would, ack
	                      with type "push-ack"
	"dump"             -> ack with type "dump-ack" carrying the full
	                      cached service map JSON-encoded in Data
	anything else      -> ack with type "unknown-ack" and no data

A read or decode failure is logged and the loop continues; it never
tears itself down except via context cancellation.
*/
package push
