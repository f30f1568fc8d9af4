// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client implements the merit box client session.

A Session talks to the server over two independent channels: the HTTP
request path (read, increment, admin operations) and a WebSocket push
subscription that keeps the displayed value in sync. Losing the push
channel never blocks interaction - requests keep working while the
session redials in the background with doubling backoff.

# Usage

	sess := client.New(client.Options{
		BaseURL: "http://localhost:3000",
		OnUpdate: func(e models.MeritEvent) { render(e.TotalMerit) },
	})
	if err := sess.Start(ctx); err != nil {
		// previously displayed value (zero) is unchanged
	}
	defer sess.Close()

	total, err := sess.Increment(ctx)

# State Machines

Two independent states, inspectable via States():

	Disconnected → Connecting → Connected   (push channel)
	Loading → Ready                          (initial fetch)

# Reconciliation

Every pushed merit event replaces the local value unconditionally; the
client performs no merge logic. Increment events that this session did
not cause may fire OnRemoteBump for a transient visual emphasis - the
detection is a heuristic and carries no correctness contract.

# Increment Guard

One increment may be in flight at a time. Further calls return
ErrIncrementInFlight and are ignored (no queueing). The guard is
released on completion or failure, so a failed call can be retried
immediately.

# Errors

Admin operations report the specific failure: ErrUnauthorized (wrong
password), ErrInvalidValue (not a non-negative integer), or ErrServer.
*/
package client
