package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"licensepanel/models"
	"licensepanel/utils"
)

// ProfileService는 관리자 패널 사용자 프로필을 관리합니다.
type ProfileService interface {
	Get(ctx context.Context, userID string) (models.UserProfile, error)
	// Upsert creates the profile with role "user" unless one is given, or
	// overwrites the editable fields of an existing one.
	Upsert(ctx context.Context, userID string, update models.UserProfile) (models.UserProfile, error)
}

type profileService struct {
	profiles ProfileStore
	now      Clock
}

// NewProfileService는 ProfileService 구현체를 생성합니다.
func NewProfileService(profiles ProfileStore, clock Clock) ProfileService {
	if clock == nil {
		clock = utils.Now
	}
	return &profileService{profiles: profiles, now: clock}
}

func (s *profileService) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	return s.profiles.Get(ctx, strings.TrimSpace(userID))
}

func (s *profileService) Upsert(ctx context.Context, userID string, update models.UserProfile) (models.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.UserProfile{}, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if update.Role != "" && !models.IsValidRole(update.Role) {
		return models.UserProfile{}, fmt.Errorf("%w: unknown role %q", ErrValidation, update.Role)
	}

	ts := utils.FormatTimestamp(s.now())
	profile, err := s.profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		profile = models.UserProfile{
			ID:        userID,
			Role:      models.RoleUser,
			CreatedAt: ts,
			LastLogin: ts,
		}
	case err != nil:
		return models.UserProfile{}, err
	}

	profile.Username = update.Username
	profile.Email = update.Email
	profile.FirstName = update.FirstName
	profile.LastName = update.LastName
	profile.AvatarURL = update.AvatarURL
	profile.Preferences = update.Preferences
	if update.Role != "" {
		profile.Role = update.Role
	}
	profile.LastUpdated = ts

	if err := s.profiles.Put(ctx, profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}
