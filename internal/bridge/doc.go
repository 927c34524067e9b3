/*
Package bridge implements the host side of the command/event protocol
spoken with the remote player script.

# Outbound

Commands are rendered into script calls (play(), seekTo(42), ...) and
injected into the surface. Submission is fire-and-forget: a failed
injection is logged and counted, never surfaced to the caller.

# Inbound

Every peer emission arrives as a named channel message. A single consume
loop routes each message by channel name: reply channels feed the
correlator, everything else feeds the event translator, and unknown
channels are dropped.

# Replies

Request-style calls (current time, duration, playback rate, paused) hold
at most one pending waiter per call kind. Reissuing a call replaces the
previous waiter; the bridge imposes no timeout, callers bound waits with
their context.
*/
package bridge
