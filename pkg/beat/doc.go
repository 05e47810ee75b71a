/*
Package beat implements the heartbeat reactor.

Each registered instance gets its own goroutine, keyed by
"{service_name}#{ip}#{port}", holding a context.CancelFunc in a
shared map guarded by a mutex. The loop beats on a period that starts at
5 seconds and re-tunes itself from every successful ack:

	period = ack.client_beat_interval - 2000ms

A transport or remote error never stops the loop; it logs and retries on
the existing period. An ack carrying code 20404 (resource not found)
means the registry lost the instance across a restart — the loop
re-registers once and continues beating rather than giving up.
*/
package beat
