// Package notification delivers best-effort email about trip events.
package notification

import (
	"context"
	"errors"
)

var (
	ErrQueueFull         = errors.New("notification queue is full")
	ErrDispatcherStopped = errors.New("notification dispatcher is stopped")
	ErrNoRecipients      = errors.New("notification has no recipients")
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Notifier accepts a message for delivery. Implementations must not block on
// the network.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Sender performs the actual delivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NopNotifier discards messages.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Message) error { return nil }
