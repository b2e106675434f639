package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"
	"github.com/enz0rd/quickurl-sub000/pkg/utils"

	"gorm.io/gorm"
)

// Outcome is the terminal state of one resolution attempt.
type Outcome string

const (
	OutcomeRedirect         Outcome = "redirect"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeLimitReached     Outcome = "limit_reached"
	OutcomePasswordRequired Outcome = "password_required"
	OutcomeBlocked          Outcome = "blocked"
	OutcomeUnauthorized     Outcome = "unauthorized"
)

// FreshnessWindow is how long a malicious-URL scan result stays valid.
// After it elapses the next resolution re-invokes the scanner, so a link
// is never permanently cleared.
const FreshnessWindow = 7 * 24 * time.Hour

type Resolution struct {
	Outcome   Outcome
	TargetURL string
}

// ResolutionService is the redirect state machine. Checks run in a fixed
// order and the first failing gate terminates the attempt; no later step
// may mutate state once an earlier gate has failed.
type ResolutionService struct {
	db        *gorm.DB
	logger    *slog.Logger
	scanner   SafetyScanner
	analytics *AnalyticsService
	cache     *LinkCache
	audit     *AuditService
}

func NewResolutionService(
	db *gorm.DB,
	logger *slog.Logger,
	scanner SafetyScanner,
	analytics *AnalyticsService,
	cache *LinkCache,
	audit *AuditService,
) *ResolutionService {
	return &ResolutionService{
		db:        db,
		logger:    logger,
		scanner:   scanner,
		analytics: analytics,
		cache:     cache,
		audit:     audit,
	}
}

// Resolve runs the full pipeline for the unauthenticated endpoint.
func (s *ResolutionService) Resolve(ctx context.Context, slug string, visit Visit) (*Resolution, error) {
	// Hot path: cacheable links carry no per-visit state, so a cached
	// entry with a fresh safe scan can redirect without touching the DB.
	if cached, ok := s.cache.Get(ctx, slug); ok {
		if Cacheable(cached) && !cached.IsMalicious && cached.IsURLChecked && scanIsFresh(cached, time.Now()) {
			if !expired(cached, time.Now()) {
				return &Resolution{Outcome: OutcomeRedirect, TargetURL: cached.TargetURL}, nil
			}
		}
	}

	// 1. Lookup. Expired links are indistinguishable from absent ones.
	link, err := s.lookup(slug)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return &Resolution{Outcome: OutcomeNotFound}, nil
	}

	// 2. Usage limit. Terminal, no side effects from later checks.
	if link.Uses > 0 && link.TimesUsed >= link.Uses {
		return &Resolution{Outcome: OutcomeLimitReached}, nil
	}

	// 3. Password gate. The target must never leak from this endpoint.
	if link.PasswordHash != "" {
		return &Resolution{Outcome: OutcomePasswordRequired}, nil
	}

	return s.finish(ctx, link, visit)
}

// ResolveWithPassword is the second entry point for password-protected
// links. On a correct password it re-enters the pipeline at the malicious
// check; lookup and the usage pre-check are not repeated (the atomic
// consume still enforces the budget).
func (s *ResolutionService) ResolveWithPassword(ctx context.Context, slug, password string, visit Visit) (*Resolution, error) {
	link, err := s.lookup(slug)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return &Resolution{Outcome: OutcomeNotFound}, nil
	}

	if link.PasswordHash != "" && !utils.CheckPasswordHash(password, link.PasswordHash) {
		return &Resolution{Outcome: OutcomeUnauthorized}, nil
	}

	return s.finish(ctx, link, visit)
}

func (s *ResolutionService) lookup(slug string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := s.db.Where("slug = ?", slug).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("link lookup failed: %w", err)
	}

	if expired(&link, time.Now()) {
		return nil, nil
	}
	return &link, nil
}

// finish runs steps 4-7: malicious check, usage consumption, analytics,
// redirect.
func (s *ResolutionService) finish(ctx context.Context, link *models.ShortLink, visit Visit) (*Resolution, error) {
	// 4. Malicious check. A flagged link stays blocked; rescans can only
	// re-confirm, never clear.
	if link.IsMalicious {
		return &Resolution{Outcome: OutcomeBlocked}, nil
	}

	if !link.IsURLChecked || !scanIsFresh(link, time.Now()) {
		malicious, err := s.scanner.Scan(ctx, link.TargetURL)
		if err != nil {
			// Fail safe: a broken scanner must never let a URL through
			return nil, fmt.Errorf("malicious-url scan failed: %w", err)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"is_url_checked": true,
			"is_malicious":   malicious,
			"url_checked_at": now,
		}
		if err := s.db.Model(link).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to persist scan result: %w", err)
		}
		link.IsURLChecked = true
		link.IsMalicious = malicious
		link.URLCheckedAt = &now

		if malicious {
			s.audit.LogAction(link.UserID, "RESOLVE_BLOCKED", link.Slug, map[string]interface{}{
				"target_url": link.TargetURL,
			}, visit.IP)
			return &Resolution{Outcome: OutcomeBlocked}, nil
		}
	}

	// 5. Consume the usage budget. The check and increment are one atomic
	// statement so concurrent visitors cannot overshoot the cap.
	if link.Uses > 0 {
		res := s.db.Model(&models.ShortLink{}).
			Where("id = ? AND times_used < uses", link.ID).
			UpdateColumn("times_used", gorm.Expr("times_used + ?", 1))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to consume usage budget: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &Resolution{Outcome: OutcomeLimitReached}, nil
		}
	}

	// 6. Analytics, owned links only. Never blocks the redirect.
	if link.UserID != nil {
		s.analytics.RecordAsync(link.ID, *link.UserID, visit)
	}

	s.cache.Set(ctx, link)

	// 7. Resolve.
	return &Resolution{Outcome: OutcomeRedirect, TargetURL: link.TargetURL}, nil
}

func expired(link *models.ShortLink, now time.Time) bool {
	return link.ExpDate != nil && now.After(*link.ExpDate)
}

func scanIsFresh(link *models.ShortLink, now time.Time) bool {
	return link.URLCheckedAt != nil && now.Sub(*link.URLCheckedAt) <= FreshnessWindow
}
