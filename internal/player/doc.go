/*
Package player defines the public control surface for one embedded
player: the Controller facade, the broadcast streams it exposes, and the
shared playback types.

The Controller forwards commands to an injected Commander and owns the
status, time-update, and event streams. Request-style getters absorb
bridge faults into documented defaults; only the caller's own context
errors propagate. Dispose closes the streams exactly once, and anything
published after that is silently absorbed.
*/
package player
