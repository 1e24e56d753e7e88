package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	application "stewardship/contexts/group-governance/role-stewardship/application"
	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/ports"
)

const moduleName = "group-governance/role-stewardship"

// CapabilityView answers which responsibilities a user has in a group right
// now. Reads never take role locks and may trail a commit in flight.
type CapabilityView struct {
	Repository ports.Repository
	External   ports.ExternalResponsibilities
	Cache      ports.CapabilityCache
	Clock      ports.Clock
	CacheTTL   time.Duration
	Metrics    ports.Metrics
	Logger     *slog.Logger

	loads *singleflight.Group
}

func NewCapabilityView(view CapabilityView) *CapabilityView {
	view.loads = &singleflight.Group{}
	return &view
}

// HasResponsibility reports whether the user holds the responsibility through
// any engine role or through an external grant.
func (v *CapabilityView) HasResponsibility(ctx context.Context, userID string, groupID string, responsibility string) (bool, error) {
	responsibility = strings.TrimSpace(responsibility)
	if responsibility == "" {
		return false, domainerrors.ErrInvalidInput
	}
	items, err := v.ListResponsibilities(ctx, userID, groupID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if strings.EqualFold(item, responsibility) {
			return true, nil
		}
	}
	return false, nil
}

// ListResponsibilities returns the sorted union of role and external responsibilities.
func (v *CapabilityView) ListResponsibilities(ctx context.Context, userID string, groupID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" || groupID == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	now := v.now()
	if v.Cache != nil {
		items, hit, err := v.Cache.Get(ctx, userID, groupID, now)
		if err != nil {
			application.ResolveLogger(v.Logger).Warn("capability cache read failed",
				"event", "stewardship_capability_cache_read_failed",
				"module", moduleName,
				"layer", "application",
				"user_id", userID,
				"group_id", groupID,
				"error", err.Error(),
			)
		} else if hit {
			v.metrics().RecordCapabilityLookup(true)
			return items, nil
		}
	}
	v.metrics().RecordCapabilityLookup(false)

	loads := v.loads
	if loads == nil {
		return v.load(ctx, userID, groupID, now)
	}
	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	value, err, _ := loads.Do(userID+"\x00"+groupID, func() (any, error) {
		return v.load(loadCtx, userID, groupID, now)
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), value.([]string)...), nil
}

func (v *CapabilityView) load(ctx context.Context, userID string, groupID string, now time.Time) ([]string, error) {
	logger := application.ResolveLogger(v.Logger)
	var (
		generation uint64
		fill       = v.Cache != nil
	)
	if fill {
		current, err := v.Cache.Generation(ctx, userID, groupID)
		if err != nil {
			v.logCacheFailure(logger, "stewardship_capability_cache_generation_failed", userID, groupID, err)
			fill = false
		}
		generation = current
	}

	held, err := v.Repository.ListHeldResponsibilities(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	items := held
	if v.External != nil {
		external, err := v.External.ListExternalResponsibilities(ctx, userID, groupID)
		if err != nil {
			return nil, err
		}
		items = append(append([]string(nil), held...), external...)
	}
	items = entities.NormalizeResponsibilities(items)

	if fill {
		stored, err := v.Cache.Set(ctx, userID, groupID, items, now.Add(v.cacheTTL()), generation)
		switch {
		case err != nil:
			v.logCacheFailure(logger, "stewardship_capability_cache_write_failed", userID, groupID, err)
		case !stored:
			logger.Debug("capability cache fill skipped after invalidation",
				"event", "stewardship_capability_cache_fill_skipped",
				"module", moduleName,
				"layer", "application",
				"user_id", userID,
				"group_id", groupID,
			)
		}
	}
	logger.Debug("capabilities resolved",
		"event", "stewardship_capabilities_resolved",
		"module", moduleName,
		"layer", "application",
		"user_id", userID,
		"group_id", groupID,
		"responsibility_count", len(items),
	)
	return items, nil
}

func (v *CapabilityView) logCacheFailure(logger *slog.Logger, event string, userID string, groupID string, err error) {
	logger.Warn("capability cache update failed",
		"event", event,
		"module", moduleName,
		"layer", "application",
		"user_id", userID,
		"group_id", groupID,
		"error", err.Error(),
	)
}

func (v *CapabilityView) cacheTTL() time.Duration {
	if v.CacheTTL <= 0 {
		return time.Minute
	}
	return v.CacheTTL
}

func (v *CapabilityView) metrics() ports.Metrics {
	if v.Metrics == nil {
		return ports.NopMetrics{}
	}
	return v.Metrics
}

func (v *CapabilityView) now() time.Time {
	if v.Clock != nil {
		return v.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
