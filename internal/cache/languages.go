// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"

	"github.com/olegiv/ocms-panel/internal/backend"
)

const languagesKey = "languages"

// LanguageLoader fetches the site languages from the backend.
type LanguageLoader interface {
	ListLanguages(ctx context.Context, token string) ([]backend.Language, error)
}

// LanguageCache holds the backend's language list. Languages are reference
// data: fetched once per TTL and shared by every operator.
type LanguageCache struct {
	typed  *TypedCache[[]backend.Language]
	loader LanguageLoader
}

// NewLanguageCache creates a language cache over c.
func NewLanguageCache(c Cacher, loader LanguageLoader, ttl time.Duration) *LanguageCache {
	return &LanguageCache{
		typed:  NewTypedCache[[]backend.Language](c, ttl),
		loader: loader,
	}
}

// All returns the languages, default language first. token authorizes the
// backend call on a miss. An empty backend list is not cached.
func (c *LanguageCache) All(ctx context.Context, token string) ([]backend.Language, error) {
	if langs, ok := c.typed.Get(ctx, languagesKey); ok && len(langs) > 0 {
		return langs, nil
	}
	langs, err := c.loader.ListLanguages(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(langs) > 0 {
		_ = c.typed.Set(ctx, languagesKey, langs)
	}
	return langs, nil
}

// Default returns the first language, if any.
func (c *LanguageCache) Default(ctx context.Context, token string) (backend.Language, bool, error) {
	langs, err := c.All(ctx, token)
	if err != nil || len(langs) == 0 {
		return backend.Language{}, false, err
	}
	return langs[0], true, nil
}

// ByID returns the language with id, if present.
func (c *LanguageCache) ByID(ctx context.Context, token string, id int64) (backend.Language, bool, error) {
	langs, err := c.All(ctx, token)
	if err != nil {
		return backend.Language{}, false, err
	}
	for _, l := range langs {
		if l.ID == id {
			return l, true, nil
		}
	}
	return backend.Language{}, false, nil
}

// Invalidate drops the cached list so the next call refetches it.
func (c *LanguageCache) Invalidate(ctx context.Context) error {
	return c.typed.Delete(ctx, languagesKey)
}
