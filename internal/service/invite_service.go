package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

// inviteAlphabet omits 0/O and 1/I. Its length divides 256 so byte mapping is unbiased.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const maxCodeAttempts = 5

// CodeGenerator produces opaque invite codes.
type CodeGenerator interface {
	Generate(length int) (string, error)
}

// RandomCodeGenerator draws codes from crypto/rand.
type RandomCodeGenerator struct{}

// Generate returns a random code of the given length.
func (RandomCodeGenerator) Generate(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}

type inviteStore interface {
	Create(ctx context.Context, invite *models.InviteCode) error
	FindByCode(ctx context.Context, code string) (*models.InviteCode, error)
	ListBySchool(ctx context.Context, schoolID string, activeOnly bool) ([]models.InviteCode, error)
	Deactivate(ctx context.Context, schoolID, code string) (bool, error)
	Redeem(ctx context.Context, code, userID string, now time.Time) (*models.InviteCode, error)
	ClassInSchool(ctx context.Context, classID, schoolID string) (bool, error)
}

// InviteServiceConfig tunes code issuance.
type InviteServiceConfig struct {
	CodeLength        int
	DefaultExpiryDays int
	MaxUsageLimit     int
}

// IssueInviteRequest is a principal's request for a new code.
// ExpiresAt and ExpiryDays are mutually exclusive; neither means the configured default.
type IssueInviteRequest struct {
	Role       string     `json:"role" validate:"required,role"`
	UsageLimit int        `json:"usage_limit" validate:"min=1"`
	ExpiresAt  *time.Time `json:"expires_at"`
	ExpiryDays *int       `json:"expiry_days" validate:"omitempty,min=1,max=365"`
	ClassID    *string    `json:"class_id" validate:"omitempty,notblank"`
}

// InviteService issues, checks, redeems and deactivates invite codes.
type InviteService struct {
	store       inviteStore
	generator   CodeGenerator
	invalidator cacheInvalidator
	validator   *validation.Validator
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         InviteServiceConfig
	now         func() time.Time
}

// NewInviteService constructs an InviteService.
func NewInviteService(store inviteStore, generator CodeGenerator, invalidator cacheInvalidator, validate *validation.Validator, metrics *MetricsService, logger *zap.Logger, cfg InviteServiceConfig) *InviteService {
	if generator == nil {
		generator = RandomCodeGenerator{}
	}
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CodeLength < 6 {
		cfg.CodeLength = 8
	}
	if cfg.MaxUsageLimit < 1 {
		cfg.MaxUsageLimit = 500
	}
	return &InviteService{
		store:       store,
		generator:   generator,
		invalidator: invalidator,
		validator:   validate,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Issue creates a new code for the caller's school.
func (s *InviteService) Issue(ctx context.Context, claims *models.JWTClaims, req IssueInviteRequest) (*models.InviteCode, error) {
	if err := s.requireIssuer(claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	role := models.Role(req.Role)
	if role.Rank() < claims.Role.Rank() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot issue codes for a more privileged role")
	}
	if req.UsageLimit > s.cfg.MaxUsageLimit {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("usage_limit must not exceed %d", s.cfg.MaxUsageLimit))
	}

	now := s.now().UTC()
	expiresAt, err := s.resolveExpiry(req, now)
	if err != nil {
		return nil, err
	}

	var classID *string
	if role == models.RoleStudent && req.ClassID != nil {
		trimmed := strings.TrimSpace(*req.ClassID)
		ok, err := s.store.ClassInSchool(ctx, trimmed, claims.SchoolID)
		if err != nil {
			return nil, appErrors.Backend(err, "failed to verify class")
		}
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class_id does not belong to your school")
		}
		classID = &trimmed
	}

	createdBy := claims.UserID
	invite := &models.InviteCode{
		ID:         uuid.NewString(),
		SchoolID:   claims.SchoolID,
		Role:       role,
		ClassID:    classID,
		UsageLimit: req.UsageLimit,
		ExpiresAt:  expiresAt,
		IsActive:   true,
		CreatedBy:  &createdBy,
		CreatedAt:  now,
	}

	for attempt := 1; ; attempt++ {
		code, err := s.generator.Generate(s.cfg.CodeLength)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate invite code")
		}
		invite.Code = code
		err = s.store.Create(ctx, invite)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateInviteCode) {
			return nil, appErrors.Backend(err, "failed to store invite code")
		}
		if attempt >= maxCodeAttempts {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "could not generate a unique invite code")
		}
		s.logger.Debug("invite code collision", zap.Int("attempt", attempt))
	}

	s.metrics.RecordInviteIssued(string(role))
	s.logger.Info("invite code issued",
		zap.String("school_id", invite.SchoolID),
		zap.String("role", string(role)),
		zap.Int("usage_limit", invite.UsageLimit),
		zap.String("created_by", createdBy),
	)
	return invite, nil
}

func (s *InviteService) resolveExpiry(req IssueInviteRequest, now time.Time) (*time.Time, error) {
	switch {
	case req.ExpiresAt != nil && req.ExpiryDays != nil:
		return nil, appErrors.Clone(appErrors.ErrValidation, "provide either expires_at or expiry_days, not both")
	case req.ExpiresAt != nil:
		if !req.ExpiresAt.After(now) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be in the future")
		}
		at := req.ExpiresAt.UTC()
		return &at, nil
	case req.ExpiryDays != nil:
		at := now.AddDate(0, 0, *req.ExpiryDays)
		return &at, nil
	case s.cfg.DefaultExpiryDays > 0:
		at := now.AddDate(0, 0, s.cfg.DefaultExpiryDays)
		return &at, nil
	default:
		return nil, nil
	}
}

// CanRedeem reports whether the code is currently redeemable.
func (s *InviteService) CanRedeem(invite *models.InviteCode) bool {
	return invite.CanBeUsed(s.now())
}

// Check returns the public view of a code.
func (s *InviteService) Check(ctx context.Context, code string) (*models.InviteCheck, error) {
	invite, err := s.find(ctx, normalizeInviteCode(code))
	if err != nil {
		return nil, err
	}
	return &models.InviteCheck{
		Code:          invite.Code,
		Role:          invite.Role,
		RoleInfo:      invite.Role.Info(),
		ClassID:       invite.ClassID,
		ExpiresAt:     invite.ExpiresAt,
		RemainingUses: invite.RemainingUses(),
		CanRedeem:     s.CanRedeem(invite),
	}, nil
}

// Redeem consumes one use of the code for the caller and applies its role and class.
func (s *InviteService) Redeem(ctx context.Context, claims *models.JWTClaims, code string) (*models.InviteRedemption, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrAuthenticationRequired
	}
	code = normalizeInviteCode(code)
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "code is required")
	}

	invite, err := s.store.Redeem(ctx, code, claims.UserID, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrRedeemerNotFound) {
			s.metrics.RecordInviteRedemption("no_profile")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user profile not found")
		}
		if !errors.Is(err, repository.ErrInviteNotRedeemable) {
			s.metrics.RecordInviteRedemption("error")
			return nil, appErrors.Backend(err, "failed to redeem invite code")
		}
		if _, findErr := s.find(ctx, code); findErr != nil {
			s.metrics.RecordInviteRedemption("not_found")
			return nil, findErr
		}
		s.metrics.RecordInviteRedemption("unavailable")
		return nil, appErrors.ErrInviteUnavailable
	}

	s.metrics.RecordInviteRedemption("redeemed")
	if invite.Role == models.RoleStudent && invite.ClassID != nil && s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, FamilyEnrollment, claims.UserID); err != nil {
			s.logger.Warn("enrollment cache invalidation failed", zap.String("user_id", claims.UserID), zap.Error(err))
		}
	}
	s.logger.Info("invite code redeemed",
		zap.String("user_id", claims.UserID),
		zap.String("school_id", invite.SchoolID),
		zap.String("role", string(invite.Role)),
	)
	return &models.InviteRedemption{
		Code:     invite.Code,
		UserID:   claims.UserID,
		SchoolID: invite.SchoolID,
		Role:     invite.Role,
		ClassID:  invite.ClassID,
	}, nil
}

// Deactivate switches a code of the caller's school off. Repeating it is not an error.
func (s *InviteService) Deactivate(ctx context.Context, claims *models.JWTClaims, code string) error {
	if err := s.requireIssuer(claims); err != nil {
		return err
	}
	found, err := s.store.Deactivate(ctx, claims.SchoolID, normalizeInviteCode(code))
	if err != nil {
		return appErrors.Backend(err, "failed to deactivate invite code")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "invite code not found")
	}
	s.logger.Info("invite code deactivated", zap.String("school_id", claims.SchoolID), zap.String("deactivated_by", claims.UserID))
	return nil
}

// List returns the caller's school codes, newest first.
func (s *InviteService) List(ctx context.Context, claims *models.JWTClaims, activeOnly bool) ([]models.InviteCode, error) {
	if err := s.requireIssuer(claims); err != nil {
		return nil, err
	}
	invites, err := s.store.ListBySchool(ctx, claims.SchoolID, activeOnly)
	if err != nil {
		return nil, appErrors.Backend(err, "failed to list invite codes")
	}
	return invites, nil
}

func (s *InviteService) requireIssuer(claims *models.JWTClaims) error {
	if claims == nil || claims.UserID == "" {
		return appErrors.ErrAuthenticationRequired
	}
	if !claims.Role.Info().CanIssueInvites {
		return appErrors.Clone(appErrors.ErrForbidden, "only school administrators can manage invite codes")
	}
	if claims.SchoolID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "caller is not attached to a school")
	}
	return nil
}

func (s *InviteService) find(ctx context.Context, code string) (*models.InviteCode, error) {
	invite, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invite code not found")
		}
		return nil, appErrors.Backend(err, "failed to load invite code")
	}
	return invite, nil
}

func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
