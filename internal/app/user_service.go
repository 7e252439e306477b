package app

import (
	"context"
	"fmt"

	"daily_survey_bot/internal/domain/timezone"
	"daily_survey_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

type UserService struct {
	userRepo        user.Repository
	adminTelegramID int64
	logger          *logrus.Entry
}

func NewUserService(ur user.Repository, adminID int64, logger *logrus.Entry) *UserService {
	return &UserService{
		userRepo:        ur,
		adminTelegramID: adminID,
		logger:          logger,
	}
}

// Register creates the user on first contact or refreshes the stored handle.
// Called on every inbound interaction.
func (s *UserService) Register(ctx context.Context, telegramID int64, username string) (*user.User, error) {
	u, err := s.userRepo.Upsert(ctx, telegramID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to register user %d: %w", telegramID, err)
	}
	return u, nil
}

// SetTimezone validates and canonicalizes the raw timezone input, then stores
// it. Returns the canonical form.
func (s *UserService) SetTimezone(ctx context.Context, telegramID int64, raw string) (string, error) {
	normalized, err := timezone.Normalize(raw)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetTimezone(ctx, telegramID, normalized); err != nil {
		return "", fmt.Errorf("failed to store timezone for user %d: %w", telegramID, err)
	}
	s.logger.WithFields(logrus.Fields{"telegram_id": telegramID, "timezone": normalized}).Info("User timezone updated")
	return normalized, nil
}

// RemoveUser deletes a user and all owned surveys. Admin-only.
func (s *UserService) RemoveUser(ctx context.Context, performingID, targetTelegramID int64) (bool, error) {
	if performingID != s.adminTelegramID {
		return false, ErrAdminNotAuthorized
	}

	removed, err := s.userRepo.DeleteByTelegramID(ctx, targetTelegramID)
	if err != nil {
		return false, fmt.Errorf("failed to remove user %d: %w", targetTelegramID, err)
	}
	if removed {
		s.logger.WithField("telegram_id", targetTelegramID).Info("User removed with all surveys")
	}
	return removed, nil
}
