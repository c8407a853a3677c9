/*
Package events provides the small observer-registration contract used by the
listener, timer and store to publish events such as expired, timeout and error.

Callbacks run synchronously on the emitting goroutine, in the order they were
registered. A callback that blocks delays every callback after it.
*/
package events
