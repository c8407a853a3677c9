/*
Package ports defines the contracts between the coordination layer and the
datastore adapters.

Adapters under pkg/adapters implement these interfaces; the lease package only
depends on them, so a different lock primitive can be injected without
touching lease classification.
*/
package ports
