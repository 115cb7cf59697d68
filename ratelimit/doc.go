// Package ratelimit provides a sliding-window rate limiter for outbound
// embedding requests.
//
// The limiter bounds the number of permits granted in any window-sized
// interval, not per fixed calendar window. Acquire blocks until enough of
// the window has drained, honoring context cancellation while it waits.
package ratelimit
