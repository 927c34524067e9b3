// Package surface abstracts the sandboxed rendering surface hosting the
// remote player script. The bridge only ever sees this capability set:
// inject a script snippet, receive named string messages, and rely on the
// surface to intercept navigation.
package surface

import (
	"context"
	"errors"
)

// ErrClosed is returned when a script is submitted to a torn-down surface.
var ErrClosed = errors.New("surface is closed")

// Message is one inbound delivery from the remote peer: a named channel
// and an opaque UTF-8 payload. Delivery is ordered within a channel;
// nothing is guaranteed across channels.
type Message struct {
	Channel string
	Payload string
}

// NavigationPolicy decides whether the surface may follow a navigation to
// the given destination.
type NavigationPolicy func(destination string) bool

// Document is the rendered view of the surface.
type Document struct {
	URL   string
	Title string
	HTML  string
}

// Surface is the rendering-surface capability.
//
// InjectScript submits a snippet for execution in the peer context. The
// returned error reports failure of the submission itself, never of the
// player's internal logic, and is independent of any reply channel.
//
// Messages delivers the peer's channel emissions to a single consumer.
// The channel is closed when the surface closes.
type Surface interface {
	InjectScript(script string) error
	Messages() <-chan Message
	Navigate(ctx context.Context, url string) error
	Document() Document
	Close() error
}
