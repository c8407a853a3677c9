/*
Package domain holds the error taxonomy shared by the keyspace, timer and
lease packages.

Configuration problems are reported as *ConfigError at construction time.
Lease acquisition reports contention as *AlreadyLeasedError and any other
failure as *LeaseError wrapping the cause.
*/
package domain
