package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/cache"
	"github.com/yukikurage/points-api/internal/constants"
	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
	"github.com/yukikurage/points-api/internal/utils"
)

// rankingHeader is the first row of the ranking export.
var rankingHeader = []string{"Rank", "Username", "Task Score", "Invite Score", "Total Score"}

// UserService serves profiles, leaderboards and admin user management.
type UserService struct {
	users       repository.UserRepository
	completions repository.CompletionRepository
	invites     repository.InviteRepository
	auth        *AuthService
	cache       *cache.Cache
	log         *slog.Logger
}

// NewUserService creates a new UserService. A nil cache disables leaderboard caching.
func NewUserService(
	users repository.UserRepository,
	completions repository.CompletionRepository,
	invites repository.InviteRepository,
	auth *AuthService,
	leaderboardCache *cache.Cache,
	log *slog.Logger,
) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		users:       users,
		completions: completions,
		invites:     invites,
		auth:        auth,
		cache:       leaderboardCache,
		log:         log,
	}
}

// Profile is a user with their completion history and invitees.
type Profile struct {
	User       *models.User            `json:"user"`
	DailyTasks []models.TaskCompletion `json:"daily_tasks"`
	OnceTasks  []models.TaskCompletion `json:"once_tasks"`
	Invitees   []int64                 `json:"invitees"`
}

// Profile returns the user with daily and once completion lists.
func (s *UserService) Profile(ctx context.Context, userID uint64) (*Profile, error) {
	user, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	daily, err := s.completions.ListCompletions(ctx, userID, models.TaskTypeDaily)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily completions: %w", err)
	}
	once, err := s.completions.ListCompletions(ctx, userID, models.TaskTypeOnce)
	if err != nil {
		return nil, fmt.Errorf("failed to list once completions: %w", err)
	}
	invitees, err := s.invites.ListInvitees(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitees: %w", err)
	}

	return &Profile{User: user, DailyTasks: daily, OnceTasks: once, Invitees: invitees}, nil
}

// UsernameByTelegramID resolves a username from a Telegram account id.
func (s *UserService) UsernameByTelegramID(ctx context.Context, telegramID int64) (string, error) {
	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	return user.Username, nil
}

// UpdateUsername renames the user, keeping usernames unique.
func (s *UserService) UpdateUsername(ctx context.Context, userID uint64, username string) (*models.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ensureUsernameFree(ctx, username, userID); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, map[string]any{"username": username})
}

// LinkTwitter stores the Twitter identity used for engagement checks.
func (s *UserService) LinkTwitter(ctx context.Context, userID uint64, username string, twitterID int64) (*models.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" || twitterID == 0 {
		return nil, ErrInvalidTwitter
	}
	return s.update(ctx, userID, map[string]any{
		"twitter_username": username,
		"twitter_id":       twitterID,
	})
}

// Leaderboard is the top of a board plus the caller's own position.
type Leaderboard struct {
	Entries []repository.LeaderboardEntry `json:"leaderboard"`
	Me      *repository.LeaderboardEntry  `json:"me,omitempty"`
}

// Leaderboard returns the top entries of board and, when userID is set, the caller's rank.
// The top list is cached; the caller's rank is always read live.
func (s *UserService) Leaderboard(ctx context.Context, board repository.Board, userID uint64) (*Leaderboard, error) {
	if board != repository.BoardTask && board != repository.BoardOverall {
		return nil, ErrInvalidLeaderboard
	}

	entries, err := s.topEntries(ctx, board)
	if err != nil {
		return nil, err
	}

	result := &Leaderboard{Entries: entries}
	if userID == 0 {
		return result, nil
	}

	me, err := s.users.Rank(ctx, board, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to rank user: %w", err)
	}
	result.Me = me
	return result, nil
}

func (s *UserService) topEntries(ctx context.Context, board repository.Board) ([]repository.LeaderboardEntry, error) {
	log := logger.FromContext(ctx, s.log)
	key := "leaderboard:" + string(board)

	var cached []repository.LeaderboardEntry
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("leaderboard cache read failed", slog.Any("error", err))
	}
	if found {
		return cached, nil
	}

	entries, err := s.users.Leaderboard(ctx, board, constants.LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if err := s.cache.Set(ctx, key, entries); err != nil {
		log.Warn("leaderboard cache write failed", slog.Any("error", err))
	}
	return entries, nil
}

// ListUsers returns a page of users ordered by id.
func (s *UserService) ListUsers(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// AdminUserPatch is an admin edit of a user; the total score is always recomputed.
type AdminUserPatch struct {
	Username    *string
	TaskScore   *int64
	InviteScore *int64
}

// AdminUpdate applies an admin edit, keeping totalScore = taskScore + inviteScore.
func (s *UserService) AdminUpdate(ctx context.Context, userID uint64, patch AdminUserPatch) (*models.User, error) {
	user, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Username != nil {
		username, err := normalizeUsername(*patch.Username)
		if err != nil {
			return nil, err
		}
		if err := s.auth.ensureUsernameFree(ctx, username, userID); err != nil {
			return nil, err
		}
		fields["username"] = username
	}

	if (patch.TaskScore != nil && *patch.TaskScore < 0) || (patch.InviteScore != nil && *patch.InviteScore < 0) {
		return nil, ErrInvalidScore
	}

	// An unpatched score is read from the row at write time so a concurrent
	// reward or referral credit is kept.
	switch {
	case patch.TaskScore != nil && patch.InviteScore != nil:
		fields["task_score"] = *patch.TaskScore
		fields["invite_score"] = *patch.InviteScore
		fields["total_score"] = *patch.TaskScore + *patch.InviteScore
	case patch.TaskScore != nil:
		fields["task_score"] = *patch.TaskScore
		fields["total_score"] = gorm.Expr("? + invite_score", *patch.TaskScore)
	case patch.InviteScore != nil:
		fields["invite_score"] = *patch.InviteScore
		fields["total_score"] = gorm.Expr("task_score + ?", *patch.InviteScore)
	}

	if len(fields) == 0 {
		return user, nil
	}

	updated, err := s.update(ctx, userID, fields)
	if err != nil {
		return nil, err
	}
	s.invalidateLeaderboards(ctx)
	return updated, nil
}

// DeleteUser removes a user and everything attached to them.
func (s *UserService) DeleteUser(ctx context.Context, userID uint64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.invalidateLeaderboards(ctx)
	return nil
}

// ResetTaskScores zeroes every task score and clears all completion records.
func (s *UserService) ResetTaskScores(ctx context.Context) (int64, error) {
	affected, err := s.users.ResetTaskScores(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset task scores: %w", err)
	}
	s.invalidateLeaderboards(ctx)

	logger.FromContext(ctx, s.log).Info("task scores reset", slog.Int64("users", affected))
	return affected, nil
}

// WriteRankingCSV writes every user ordered by total score.
func (s *UserService) WriteRankingCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.users.Ranking(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ranking: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(rankingHeader); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.Rank, 10),
			e.Username,
			strconv.FormatInt(e.TaskScore, 10),
			strconv.FormatInt(e.InviteScore, 10),
			strconv.FormatInt(e.TotalScore, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *UserService) update(ctx context.Context, userID uint64, fields map[string]any) (*models.User, error) {
	user, err := s.users.UpdateFields(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *UserService) invalidateLeaderboards(ctx context.Context) {
	err := s.cache.Invalidate(ctx, "leaderboard:"+string(repository.BoardTask), "leaderboard:"+string(repository.BoardOverall))
	if err != nil {
		logger.FromContext(ctx, s.log).Warn("leaderboard cache invalidation failed", slog.Any("error", err))
	}
}
