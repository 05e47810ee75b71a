/*
Package cache provides ServiceHolder, the client's authoritative local
view of discovered services.

# Architecture

	┌─────────────── SERVICE CACHE ───────────────┐
	│                                               │
	│  update_service_info(info)                   │
	│         │                                    │
	│         ▼                                    │
	│  ┌──────────────┐   diff old/new hosts       │
	│  │ service_map  │──────────┐                  │
	│  └──────────────┘          ▼                  │
	│         │            ┌───────────┐            │
	│         │            │ listeners │ (in order)  │
	│         │            └───────────┘            │
	│         ▼                                      │
	│  ┌──────────────────────────┐                 │
	│  │ cache_dir/{key}  (JSON)  │                  │
	│  └──────────────────────────┘                 │
	└───────────────────────────────────────────────┘

A cache key is the service's grouped name, optionally suffixed with
"@@{clusters_csv}" when a query scoped to specific clusters. The failover
file name IS the cache key, including its "@@" separator — this is load-
bearing: the directory must remain externally inspectable one file per key.

# Diff semantics

update_service_info does not deliver the raw new host list to listeners.
It diffs against whatever was previously cached under the same key: any
host present before but missing now is re-delivered with Enabled=false so
listeners can derive removals without keeping their own host-set state.
Listeners therefore see one combined list per update, never a separate
add/remove event.

# Empty-update suppression

A ServiceHolder constructed with updateWhenEmpty=false drops an incoming
update whose Hosts is empty when the existing entry for that key is
non-empty. This exists because transient registry errors sometimes answer
queries with a momentarily empty instance list; without suppression a
single bad response would blank an otherwise-good cached snapshot.
*/
package cache
