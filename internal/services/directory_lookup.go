package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freightdesk/internal/caching"
	"freightdesk/internal/models"
	"freightdesk/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReferencePolicy decides what register does when a directory code has no
// active match.
type ReferencePolicy string

const (
	// ReferencePolicyStrict rejects the write with UnresolvedReferenceError.
	ReferencePolicyStrict ReferencePolicy = "strict"
	// ReferencePolicyFallback substitutes the first active directory row and
	// logs the substitution.
	ReferencePolicyFallback ReferencePolicy = "fallback"
)

// ParseReferencePolicy accepts "strict" or "fallback".
func ParseReferencePolicy(s string) (ReferencePolicy, error) {
	switch p := ReferencePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ReferencePolicyStrict, ReferencePolicyFallback:
		return p, nil
	case "":
		return ReferencePolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown reference policy %q", s)
	}
}

// DirectoryLookup resolves carrier and customer codes through the
// transaction's directory repository, with an optional Redis cache in front.
// A cache hit is only trusted after the row is confirmed active in the same
// transaction.
type DirectoryLookup struct {
	cache    caching.DirectoryCache
	cacheTTL time.Duration
	policy   ReferencePolicy
	logger   *zap.Logger
}

func NewDirectoryLookup(cache caching.DirectoryCache, cacheTTL time.Duration, policy ReferencePolicy, logger *zap.Logger) *DirectoryLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = ReferencePolicyStrict
	}
	return &DirectoryLookup{cache: cache, cacheTTL: cacheTTL, policy: policy, logger: logger}
}

// ResolveForCreate maps code to a directory id. An absent or empty code
// means no reference. A miss is handled according to the reference policy.
func (d *DirectoryLookup) ResolveForCreate(ctx context.Context, dir repositories.DirectoryRepository, kind, field string, code *string) (*uuid.UUID, error) {
	if code == nil || strings.TrimSpace(*code) == "" {
		return nil, nil
	}
	c := strings.TrimSpace(*code)

	id, found, err := d.lookup(ctx, dir, kind, c)
	if err != nil {
		return nil, err
	}
	if found {
		return &id, nil
	}

	if d.policy != ReferencePolicyFallback {
		return nil, &UnresolvedReferenceError{Field: field, Code: c}
	}

	fallback, err := dir.FirstActiveID(ctx, kind)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &UnresolvedReferenceError{Field: field, Code: c}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve fallback %s: %w", kind, err)
	}

	d.logger.Warn("directory code not found, substituting fallback entry",
		zap.String("kind", kind),
		zap.String("code", c),
		zap.String("fallback_id", fallback.String()))
	return &fallback, nil
}

// ResolveForUpdate is like ResolveForCreate except that a nil code keeps
// current, an empty code clears the reference and a miss keeps current
// instead of substituting another row.
func (d *DirectoryLookup) ResolveForUpdate(ctx context.Context, dir repositories.DirectoryRepository, kind string, code *string, current *uuid.UUID) (*uuid.UUID, error) {
	if code == nil {
		return current, nil
	}
	c := strings.TrimSpace(*code)
	if c == "" {
		return nil, nil
	}

	id, found, err := d.lookup(ctx, dir, kind, c)
	if err != nil {
		return nil, err
	}
	if !found {
		d.logger.Warn("directory code not found on update, keeping stored reference",
			zap.String("kind", kind),
			zap.String("code", c))
		return current, nil
	}
	return &id, nil
}

func (d *DirectoryLookup) lookup(ctx context.Context, dir repositories.DirectoryRepository, kind, code string) (uuid.UUID, bool, error) {
	if d.cache != nil {
		id, ok, err := d.cache.GetDirectoryID(ctx, kind, code)
		switch {
		case err != nil:
			d.logger.Debug("directory cache read failed", zap.String("kind", kind), zap.Error(err))
		case ok:
			// The cached row may have been soft-deleted since it was cached.
			active, err := dir.IsActive(ctx, kind, code, id)
			if err != nil {
				return uuid.Nil, false, fmt.Errorf("confirm cached %s code: %w", kind, err)
			}
			if active {
				return id, true, nil
			}
			if err := d.cache.ForgetDirectoryID(ctx, kind, code); err != nil {
				d.logger.Debug("directory cache evict failed", zap.String("kind", kind), zap.Error(err))
			}
		}
	}

	id, err := dir.FindIDByCode(ctx, kind, code)
	if errors.Is(err, repositories.ErrNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("resolve %s code: %w", kind, err)
	}

	if d.cache != nil {
		if err := d.cache.SetDirectoryID(ctx, kind, code, id, d.cacheTTL); err != nil {
			d.logger.Debug("directory cache write failed", zap.String("kind", kind), zap.Error(err))
		}
	}
	return id, true, nil
}

// Refresh reloads the cache for every directory kind and returns the number
// of cached entries.
func (d *DirectoryLookup) Refresh(ctx context.Context, dir repositories.DirectoryRepository) (int, error) {
	if d.cache == nil {
		return 0, nil
	}

	total := 0
	for _, kind := range []string{models.DirectoryCarrier, models.DirectoryCustomer} {
		entries, err := dir.ListEntries(ctx, kind)
		if err != nil {
			return total, fmt.Errorf("list %s directory: %w", kind, err)
		}
		if err := d.cache.InvalidateDirectory(ctx, kind); err != nil {
			return total, fmt.Errorf("invalidate %s cache: %w", kind, err)
		}
		for _, e := range entries {
			if err := d.cache.SetDirectoryID(ctx, kind, e.Code, e.ID, d.cacheTTL); err != nil {
				return total, fmt.Errorf("cache %s %s: %w", kind, e.Code, err)
			}
			total++
		}
	}
	return total, nil
}
