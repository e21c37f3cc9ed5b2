package tui

import "github.com/mmcdole/marquee/internal/domain"

// ChannelObserver adapts domain.ResultObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.OpResult
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.OpResult) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnResult sends the result to the channel (non-blocking if full).
// State is already updated when a result is dropped; the next render shows it.
func (o *ChannelObserver) OnResult(result domain.OpResult) {
	select {
	case o.ch <- result:
	default: // Non-blocking if channel full
	}
}
