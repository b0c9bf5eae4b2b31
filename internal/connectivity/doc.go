// Package connectivity keeps the node attached to its broker without ever
// blocking the cooperative main loop for longer than one bounded broker
// handshake.
//
// Two layered state machines are polled once per tick:
//
//  1. LinkState: the network interface. Reconnection is a fire-and-forget
//     request retried on a fixed delay; its result is observed by probing
//     on later ticks.
//  2. SessionState: the broker session. It is only attempted while the link
//     is up, connects synchronously, and retries with capped exponential
//     backoff (5s, 10s, 20s, 40s, 60s, 60s, ...).
//
// Coordinator ties both together with the discovery and telemetry
// publishers. Discovery descriptors are republished once per unbroken
// session. Time is always passed in; nothing here sleeps.
package connectivity
