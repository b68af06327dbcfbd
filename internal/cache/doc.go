// Package cache holds the most recent toolchain detection results.
//
// The Manager owns a single slot. Values are copied on the way in and on the
// way out, so callers can never mutate the cached state, and every update
// replaces the whole value under a lock so concurrent readers never observe a
// half-applied change.
package cache
