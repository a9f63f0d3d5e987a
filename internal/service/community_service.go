package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skillbridge-api/internal/domain"
	"skillbridge-api/internal/repository"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

const maxMessageLength = 2000

// CommunityService owns the community channels and their message feeds
type CommunityService struct {
	messageRepo repository.MessageRepository
	profileRepo repository.ProfileRepository
	logger      *logger.Logger
}

// NewCommunityService creates a new community service
func NewCommunityService(messageRepo repository.MessageRepository, profileRepo repository.ProfileRepository, logger *logger.Logger) *CommunityService {
	return &CommunityService{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// GeneralChannel returns the default channel, creating it on first use
func (s *CommunityService) GeneralChannel(ctx context.Context) (*domain.Channel, error) {
	return s.messageRepo.EnsureChannel(ctx, domain.GeneralChannelName)
}

// Messages returns the channel's message history, oldest first
func (s *CommunityService) Messages(ctx context.Context, channelID string) ([]domain.Message, error) {
	if channelID == "" {
		return nil, errors.NewValidationError("channel id is required", nil)
	}
	return s.messageRepo.ListByChannel(ctx, channelID)
}

// Post writes a message to the channel. The insert fires the notify
// trigger, so live subscribers receive it without another hop through
// this process.
func (s *CommunityService) Post(ctx context.Context, userID, channelID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.NewValidationError("message content is required", nil)
	}
	if len(content) > maxMessageLength {
		return nil, errors.NewValidationError("message is too long", map[string]interface{}{
			"max_length": maxMessageLength,
		})
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile not found")
	}

	msg := &domain.Message{
		ID:           uuid.NewString(),
		ChannelID:    channelID,
		UserID:       userID,
		Content:      content,
		SenderName:   profile.FullName,
		SenderAvatar: profile.AvatarURL,
	}
	if err := s.messageRepo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}
