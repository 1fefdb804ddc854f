// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelTokensStrictlyIncrease(t *testing.T) {
	h := NewHub()
	frozen := time.Unix(1700000000, 0)
	h.now = func() time.Time { return frozen }

	c := h.SignalFor("view")
	assert.Zero(t, c.Token())

	c.Refresh()
	first := c.Token()
	c.Refresh()
	second := c.Token()

	assert.Equal(t, frozen.UnixNano(), first)
	assert.Greater(t, second, first)
	assert.Equal(t, second, h.Token("view"))
}

func TestChannelSubscribeKeepsNewest(t *testing.T) {
	c := NewHub().SignalFor("view")
	ch, cancel := c.Subscribe()
	defer cancel()

	c.Refresh()
	c.Refresh()

	select {
	case tok := <-ch:
		assert.Equal(t, c.Token(), tok)
	default:
		t.Fatal("no token delivered")
	}
	select {
	case tok := <-ch:
		t.Fatalf("unexpected second token %d", tok)
	default:
	}
}

func TestChannelSignalsOnlyItsView(t *testing.T) {
	h := NewHub()
	a, cancelA := h.SignalFor("a").Subscribe()
	defer cancelA()
	b, cancelB := h.SignalFor("b").Subscribe()
	defer cancelB()

	h.SignalFor("a").Refresh()

	assert.Len(t, a, 1)
	assert.Len(t, b, 0)
	assert.Zero(t, h.Token("b"))
}

func TestCancelTwiceAndDrop(t *testing.T) {
	h := NewHub()
	ch, cancel := h.SignalFor("view").Subscribe()
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	ch2, cancel2 := h.SignalFor("view").Subscribe()
	h.Drop("view")
	_, ok = <-ch2
	assert.False(t, ok, "drop closes subscribers")
	cancel2()

	assert.Zero(t, h.Token("view"))
}

func TestNoop(t *testing.T) {
	var s Signal = Noop{}
	s.Refresh()
}

func TestURL(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		path  string
		lang  string
		token int64
		want  string
	}{
		{"root", "http://localhost:3000", "/", "en", 0, "http://localhost:3000/?lang=en"},
		{"page with token", "http://localhost:3000", "/about", "ru", 42, "http://localhost:3000/about?_v=42&lang=ru"},
		{"base with path", "https://example.com/site/", "/career", "", 7, "https://example.com/site/career?_v=7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, URL(tt.base, tt.path, tt.lang, tt.token))
		})
	}
}
