/*
Package redistore is a namespaced key-value facade over a shared Redis with two
coordination primitives: per-key leases and timeout notifications.

It is meant as the storage layer of a cache whose entries must be refreshed
exactly once when they go stale, by any one of many replicas sharing the same
Redis.

# Leases

A lease is an exclusive, time-bounded claim on a key. A failed attempt is
either contention (*domain.AlreadyLeasedError, match with
errors.Is(err, domain.ErrAlreadyLeased)) or an infrastructure failure
(*domain.LeaseError wrapping the cause). A lease that is never released
expires on its own.

# Timeouts

A Timer writes a "trigger" key <namespace>:<key>:trigger with a TTL and
listens for Redis keyspace notifications on
__keyspace@<db>__:<namespace>:*:trigger. When Redis expires the trigger, the
timer reports the logical key through OnTimeout. Notifications must be
enabled on the server ("notify-keyspace-events" containing K and x); New does
that unless Config.Preconfigured is set.

Delivery is at-least-once and nothing is replayed while the subscriber
connection is down. Timeout handlers must be idempotent.

# Usage

	store, err := redistore.New(ctx, redistore.Config{
		Addr:      "localhost:6379",
		Namespace: "cache",
	})
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	refresh, err := store.CreateTimer(ctx, "refresh")
	if err != nil {
		log.Fatal(err)
	}
	leaseFn := store.CreateLease(30 * time.Second)

	refresh.OnTimeout(func(key string) {
		release, err := leaseFn(ctx, key)
		if err != nil {
			return // another replica is refreshing, or Redis is down
		}
		defer release(ctx)
		// recompute and SetProp the entry, then re-arm
		_ = refresh.SetTimeout(ctx, key, time.Minute)
	})
*/
package redistore
