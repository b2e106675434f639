package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/auth"
	"github.com/enz0rd/quickurl-sub000/internal/models"
	"github.com/enz0rd/quickurl-sub000/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrSlugTaken     = errors.New("slug already taken")
	ErrQuotaExceeded = errors.New("monthly link quota exceeded")
	ErrPlanRequired  = errors.New("capability requires a pro plan")
	ErrGroupNotFound = errors.New("group not found")
	ErrLinkNotFound  = errors.New("link not found")
)

type CreateLinkDTO struct {
	UserID     *uint
	PlanStatus string // current subscription status of the caller, "" for anonymous
	TargetURL  string
	CustomSlug string
	Password   string
	Uses       int
	ExpDate    *time.Time
	GroupID    *uint
	IPAddress  string // quota identity for anonymous callers, audit trail
}

type UpdateLinkDTO struct {
	TargetURL *string
	Password  *string
	Uses      *int
	ExpDate   *time.Time
	GroupID   *uint
}

type ShortenerService struct {
	db            *gorm.DB
	auditService  *AuditService
	quota         *QuotaLimiter
	cache         *LinkCache
	codeGenerator func(int) string
}

func NewShortenerService(db *gorm.DB, auditService *AuditService, quota *QuotaLimiter, cache *LinkCache) *ShortenerService {
	return &ShortenerService{
		db:            db,
		auditService:  auditService,
		quota:         quota,
		cache:         cache,
		codeGenerator: utils.GenerateSlug,
	}
}

// CreateLink runs the plan gate, the monthly quota and slug assignment in
// that order. The quota counter is only consumed after the gate passes, so
// a denied request never burns budget.
func (s *ShortenerService) CreateLink(ctx context.Context, dto CreateLinkDTO) (*models.ShortLink, QuotaResult, error) {
	tier := auth.PlanTier(dto.PlanStatus)

	if dto.CustomSlug != "" && !auth.Allows(tier, auth.CapabilityCustomSlug) {
		return nil, QuotaResult{}, fmt.Errorf("%w: custom-slug", ErrPlanRequired)
	}
	if dto.Uses > 0 && !auth.Allows(tier, auth.CapabilityCustomUses) {
		return nil, QuotaResult{}, fmt.Errorf("%w: custom-uses", ErrPlanRequired)
	}
	if dto.ExpDate != nil && !auth.Allows(tier, auth.CapabilityCustomExpiry) {
		return nil, QuotaResult{}, fmt.Errorf("%w: custom-expiry", ErrPlanRequired)
	}

	if dto.GroupID != nil {
		if dto.UserID == nil {
			return nil, QuotaResult{}, ErrGroupNotFound
		}
		var group models.Group
		if err := s.db.Where("id = ? AND user_id = ?", *dto.GroupID, *dto.UserID).First(&group).Error; err != nil {
			return nil, QuotaResult{}, ErrGroupNotFound
		}
	}

	quotaIdentity := dto.IPAddress
	if dto.UserID != nil {
		quotaIdentity = fmt.Sprintf("user:%d", *dto.UserID)
	}
	result, err := s.quota.Consume(ctx, quotaIdentity, dto.PlanStatus)
	if err != nil {
		return nil, QuotaResult{}, err
	}
	if !result.Allowed {
		return nil, result, ErrQuotaExceeded
	}

	slug, err := s.assignSlug(dto.CustomSlug)
	if err != nil {
		return nil, result, err
	}

	var passwordHash string
	if dto.Password != "" {
		hash, err := utils.HashPassword(dto.Password)
		if err != nil {
			return nil, result, err
		}
		passwordHash = hash
	}

	link := models.ShortLink{
		UserID:       dto.UserID,
		GroupID:      dto.GroupID,
		Slug:         slug,
		TargetURL:    dto.TargetURL,
		PasswordHash: passwordHash,
		Uses:         dto.Uses,
		ExpDate:      dto.ExpDate,
		CreatedAt:    time.Now(),
	}

	if err := s.db.Create(&link).Error; err != nil {
		return nil, result, err
	}

	s.auditService.LogAction(dto.UserID, "CREATE_LINK", link.Slug, map[string]interface{}{
		"target_url": dto.TargetURL,
	}, dto.IPAddress)

	return &link, result, nil
}

func (s *ShortenerService) assignSlug(custom string) (string, error) {
	if custom != "" {
		var existing models.ShortLink
		err := s.db.Where("slug = ?", custom).First(&existing).Error
		if err == nil {
			return "", ErrSlugTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		return custom, nil
	}

	for {
		slug := s.codeGenerator(6)
		var existing models.ShortLink
		err := s.db.Where("slug = ?", slug).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// UpdateLink applies owner-checked, edit-gated changes and drops the slug
// from the cache.
func (s *ShortenerService) UpdateLink(ctx context.Context, userID uint, planStatus, slug string, dto UpdateLinkDTO) (*models.ShortLink, error) {
	if !auth.Allows(auth.PlanTier(planStatus), auth.CapabilityEdit) {
		return nil, fmt.Errorf("%w: edit", ErrPlanRequired)
	}

	var link models.ShortLink
	if err := s.db.Where("slug = ? AND user_id = ?", slug, userID).First(&link).Error; err != nil {
		return nil, ErrLinkNotFound
	}

	updates := map[string]interface{}{}
	if dto.TargetURL != nil {
		updates["target_url"] = *dto.TargetURL
	}
	if dto.Password != nil {
		if *dto.Password == "" {
			updates["password_hash"] = ""
		} else {
			hash, err := utils.HashPassword(*dto.Password)
			if err != nil {
				return nil, err
			}
			updates["password_hash"] = hash
		}
	}
	if dto.Uses != nil {
		updates["uses"] = *dto.Uses
	}
	if dto.ExpDate != nil {
		updates["exp_date"] = *dto.ExpDate
	}
	if dto.GroupID != nil {
		var group models.Group
		if err := s.db.Where("id = ? AND user_id = ?", *dto.GroupID, userID).First(&group).Error; err != nil {
			return nil, ErrGroupNotFound
		}
		updates["group_id"] = *dto.GroupID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&link).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.cache.Invalidate(ctx, slug)
	return &link, nil
}

// DeleteLink removes an owned link. Deletion is an owner action, not a
// plan capability.
func (s *ShortenerService) DeleteLink(ctx context.Context, userID uint, slug, ip string) error {
	res := s.db.Where("slug = ? AND user_id = ?", slug, userID).Delete(&models.ShortLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLinkNotFound
	}

	s.cache.Invalidate(ctx, slug)
	s.auditService.LogAction(&userID, "DELETE_LINK", slug, nil, ip)
	return nil
}

func (s *ShortenerService) ListLinks(userID uint) ([]models.ShortLink, error) {
	var links []models.ShortLink
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&links).Error
	return links, err
}
