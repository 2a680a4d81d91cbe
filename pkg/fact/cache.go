package fact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultCacheTTL   = 30 * time.Minute
	defaultCacheSweep = 10 * time.Minute
)

// CachingExtractor resolves claims cache-or-extract: identical text reuses
// the previously extracted claim set, otherwise the rule-based extractor
// runs, and the LLM fallback is consulted only when the rules produce zero
// claims. Cost containment, not quality, decides the escalation.
type CachingExtractor struct {
	rules    Extractor
	fallback Extractor
	cache    *gocache.Cache
}

// NewCachingExtractor wraps the given strategies. fallback may be nil, in
// which case only the rule-based path runs.
func NewCachingExtractor(rules, fallback Extractor) *CachingExtractor {
	return &CachingExtractor{
		rules:    rules,
		fallback: fallback,
		cache:    gocache.New(defaultCacheTTL, defaultCacheSweep),
	}
}

// Extract returns the claim set for text, consulting the cache first.
func (e *CachingExtractor) Extract(ctx context.Context, text string) ([]common.FactClaim, error) {
	key := cacheKey(text)
	if cached, ok := e.cache.Get(key); ok {
		if claims, ok := cached.([]common.FactClaim); ok {
			return claims, nil
		}
	}

	claims, err := e.rules.Extract(ctx, text)
	if err != nil {
		logger.Warn("[Fact][Extract] Rule extraction failed", "err", err)
		claims = nil
	}

	if len(claims) == 0 && e.fallback != nil {
		claims, err = e.fallback.Extract(ctx, text)
		if err != nil {
			// Fallback failures never abort the caller.
			logger.Warn("[Fact][Extract] Fallback extraction failed", "err", err)
			claims = nil
		}
	}

	e.cache.Set(key, claims, gocache.DefaultExpiration)
	return claims, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
