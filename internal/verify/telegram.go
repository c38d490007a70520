package verify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yukikurage/points-api/internal/clients/telegram"
	"github.com/yukikurage/points-api/internal/models"
)

// MembershipChecker looks up a user's status in a Telegram chat.
type MembershipChecker interface {
	ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error)
}

// TelegramVerifier passes when the user has joined the chat named by the task description.
type TelegramVerifier struct {
	checker        MembershipChecker
	announcementID int64
	communityID    int64
	log            *slog.Logger
}

func NewTelegramVerifier(checker MembershipChecker, announcementChatID, communityChatID int64, log *slog.Logger) *TelegramVerifier {
	if log == nil {
		log = slog.Default()
	}
	return &TelegramVerifier{
		checker:        checker,
		announcementID: announcementChatID,
		communityID:    communityChatID,
		log:            log,
	}
}

func (v *TelegramVerifier) Verify(ctx context.Context, user *models.User, task *models.Task) bool {
	if user.TelegramID == 0 {
		return false
	}

	chatID := v.chatFor(task.Description)
	if chatID == 0 {
		v.log.Warn("telegram chat is not configured", slog.Uint64("task_id", task.ID))
		return false
	}

	status, err := v.checker.ChatMemberStatus(ctx, chatID, user.TelegramID)
	if err != nil {
		v.log.Error("telegram membership check failed",
			slog.Uint64("task_id", task.ID),
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return false
	}
	return telegram.IsMemberStatus(status)
}

// chatFor picks the community chat when the description mentions it; the
// announcement channel is the fallback.
func (v *TelegramVerifier) chatFor(description string) int64 {
	d := strings.ToLower(description)
	if strings.Contains(d, "community") && !strings.Contains(d, "announcement") {
		return v.communityID
	}
	return v.announcementID
}
