// Package transport provides the blocking TCP byte streams hotpotato roles
// talk over, and a Poller that waits for the next readable one among a fixed
// set.
//
// Conns are never read through a buffer. Readiness is reported by the kernel
// for the socket itself, so anything buffered in userspace would be invisible
// to the Poller.
package transport
