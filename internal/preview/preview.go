// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package preview tells the live preview frame to reload after a save.
package preview

import (
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Signal requests a preview reload.
type Signal interface {
	Refresh()
}

// Noop is a Signal for forms rendered without a preview.
type Noop struct{}

// Refresh does nothing.
func (Noop) Refresh() {}

// Channel is the preview signal of one operator view. Each Refresh produces a
// new cache-busting token, strictly greater than the previous one, and
// delivers it to every subscriber.
type Channel struct {
	mu     sync.Mutex
	token  int64
	subs   map[chan int64]struct{}
	now    func() time.Time
	closed bool
}

func newChannel(now func() time.Time) *Channel {
	return &Channel{subs: make(map[chan int64]struct{}), now: now}
}

// Refresh issues a new token.
func (c *Channel) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UnixNano()
	if t <= c.token {
		t = c.token + 1
	}
	c.token = t

	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- t
	}
}

// Token returns the current token, 0 before the first refresh.
func (c *Channel) Token() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Subscribe returns a channel receiving new tokens. A slow reader only sees
// the newest one. cancel releases the subscription.
func (c *Channel) Subscribe() (<-chan int64, func()) {
	ch := make(chan int64, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
}

func (c *Channel) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for ch := range c.subs {
		delete(c.subs, ch)
		close(ch)
	}
}

// Hub holds the channel of every operator view.
type Hub struct {
	mu       sync.Mutex
	channels map[string]*Channel
	now      func() time.Time
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{channels: make(map[string]*Channel), now: time.Now}
}

// SignalFor returns the channel of viewKey, creating it on first use.
func (h *Hub) SignalFor(viewKey string) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.channels[viewKey]
	if !ok {
		c = newChannel(h.now)
		h.channels[viewKey] = c
	}
	return c
}

// Token returns the current token of viewKey.
func (h *Hub) Token(viewKey string) int64 {
	h.mu.Lock()
	c, ok := h.channels[viewKey]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return c.Token()
}

// Drop closes and forgets the channel of viewKey.
func (h *Hub) Drop(viewKey string) {
	h.mu.Lock()
	c, ok := h.channels[viewKey]
	delete(h.channels, viewKey)
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

// URL builds the preview frame address for page path on base, in language
// langCode. A zero token leaves out the cache-busting parameter.
func URL(base, path, langCode string, token int64) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u = u.JoinPath(path)
	q := u.Query()
	if langCode != "" {
		q.Set("lang", langCode)
	}
	if token != 0 {
		q.Set("_v", strconv.FormatInt(token, 10))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
