package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/lock"
	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/metrics"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
	"github.com/yukikurage/points-api/internal/utils"
)

// Verifier checks auto-verified tasks against the external platform.
type Verifier interface {
	Verify(ctx context.Context, user *models.User, task *models.Task) bool
}

// Notifier stores in-app notifications without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, title, body string)
	NotifyMany(ctx context.Context, userIDs []uint64, title, body string)
}

// Locker serializes work on one key across instances.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// ResubmitPolicy decides whether a rejected submission may be submitted again.
type ResubmitPolicy interface {
	AllowResubmitAfterReject() bool
}

// MarkOutcome is the state a task reached after Mark.
type MarkOutcome string

const (
	OutcomeCompleted MarkOutcome = "COMPLETED"
	OutcomePending   MarkOutcome = "PENDING"
)

// MarkInput carries the proof a user sends when marking a task.
type MarkInput struct {
	UserID      uint64
	TaskID      uint64
	ActivityURL string
	ImageURL    string
}

// MarkResult reports the outcome of Mark. User is set when points were awarded,
// Submission when the task went to review.
type MarkResult struct {
	Outcome    MarkOutcome
	Task       *models.Task
	User       *models.User
	Submission *models.TaskSubmission
}

// AdjudicateInput is an admin decision on a pending submission.
type AdjudicateInput struct {
	AdminID  uint64
	UserID   uint64
	TaskID   uint64
	Decision models.SubmissionStatus
}

// CompletionService owns the per (user, task) completion state machine:
// mark, collect after approval, and admin adjudication.
type CompletionService struct {
	tasks       repository.TaskRepository
	users       repository.UserRepository
	completions repository.CompletionRepository
	verifier    Verifier
	notifier    Notifier
	locker      Locker
	policy      ResubmitPolicy
	log         *slog.Logger
	now         func() time.Time
}

// NewCompletionService creates a new CompletionService
func NewCompletionService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	completions repository.CompletionRepository,
	verifier Verifier,
	notifier Notifier,
	locker Locker,
	policy ResubmitPolicy,
	log *slog.Logger,
) *CompletionService {
	if log == nil {
		log = slog.Default()
	}
	return &CompletionService{
		tasks:       tasks,
		users:       users,
		completions: completions,
		verifier:    verifier,
		notifier:    notifier,
		locker:      locker,
		policy:      policy,
		log:         log,
		now:         time.Now,
	}
}

// Mark attempts a task. Auto-verified platforms are checked synchronously and
// rewarded on success; GENERIC tasks are rewarded directly when they need no
// proof and go to the review queue otherwise.
func (s *CompletionService) Mark(ctx context.Context, in MarkInput) (*MarkResult, error) {
	task, err := s.findTask(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, user.ID, task.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	rejected, err := s.ensureMarkable(ctx, user.ID, task.ID)
	if err != nil {
		metrics.RecordTransition("mark", "conflict")
		return nil, err
	}

	switch {
	case task.Platform.AutoVerified():
		if !s.verifier.Verify(ctx, user, task) {
			metrics.RecordTransition("mark", "verification_failed")
			return nil, ErrVerificationFailed
		}
		return s.reward(ctx, "mark", user.ID, task)

	case task.SubmitType == models.SubmitTypeNone:
		return s.reward(ctx, "mark", user.ID, task)

	default:
		return s.submit(ctx, user.ID, task, in, rejected)
	}
}

// Collect claims the reward for an approved submission.
func (s *CompletionService) Collect(ctx context.Context, userID, taskID uint64) (*models.User, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, userID); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	defer release()

	submission, err := s.completions.FindSubmission(ctx, userID, taskID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find submission: %w", err)
		}
		done, err := s.completions.HasCompletion(ctx, userID, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to check completion: %w", err)
		}
		if done {
			return nil, ErrAlreadyCompleted
		}
		return nil, ErrNotMarked
	}
	if !submission.Status.Collectable() {
		return nil, ErrNotApproved
	}

	user, err := s.completions.CollectApproved(ctx, userID, task, s.now())
	switch {
	case errors.Is(err, repository.ErrNoRowsAffected):
		return nil, ErrNotApproved
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrAlreadyCompleted
	case err != nil:
		return nil, fmt.Errorf("failed to collect reward: %w", err)
	}

	s.rewarded(ctx, "collect", userID, task)
	return user, nil
}

// Adjudicate records an admin decision on a pending submission. Approval keeps the
// submission until the user collects; rejection deletes it unless resubmission is
// disabled, in which case it stays as REJECTED.
func (s *CompletionService) Adjudicate(ctx context.Context, in AdjudicateInput) error {
	if in.Decision != models.SubmissionAdminApproved && in.Decision != models.SubmissionRejected {
		return ErrInvalidDecision
	}

	task, err := s.findTask(ctx, in.TaskID)
	if err != nil {
		return err
	}
	if _, err := s.findUser(ctx, in.UserID); err != nil {
		return err
	}

	submission, err := s.completions.FindSubmission(ctx, in.UserID, in.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to find submission: %w", err)
	}
	if submission.Status != models.SubmissionPending {
		return ErrSubmissionNotPending
	}

	remove := in.Decision == models.SubmissionRejected && s.allowResubmit()
	if err := s.completions.ResolvePending(ctx, in.UserID, in.TaskID, in.Decision, remove); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return ErrSubmissionNotPending
		}
		return fmt.Errorf("failed to update submission: %w", err)
	}

	logger.FromContext(ctx, s.log).Info("submission adjudicated",
		slog.Uint64("admin_id", in.AdminID),
		slog.Uint64("user_id", in.UserID),
		slog.Uint64("task_id", in.TaskID),
		slog.String("decision", string(in.Decision)),
	)

	if in.Decision == models.SubmissionAdminApproved {
		metrics.RecordTransition("adjudicate", "approved")
		s.notifier.Notify(ctx, in.UserID, "Task Approved",
			fmt.Sprintf("Your submission for %q was approved. Claim your %d points now!", task.Title, task.Points))
		return nil
	}

	metrics.RecordTransition("adjudicate", "rejected")
	s.notifier.Notify(ctx, in.UserID, "Task Rejected",
		fmt.Sprintf("Your submission for %q was rejected.", task.Title))
	return nil
}

// ListSubmissions returns the review queue for status, oldest first.
func (s *CompletionService) ListSubmissions(ctx context.Context, status models.SubmissionStatus, params utils.PaginationParams) ([]models.TaskSubmission, int64, error) {
	if status == "" {
		status = models.SubmissionPending
	}
	if !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	submissions, total, err := s.completions.ListSubmissions(ctx, status, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, total, nil
}

// ensureMarkable rejects a mark when the pair is completed or has a live submission.
// It reports whether a retained REJECTED submission exists that may be reopened.
func (s *CompletionService) ensureMarkable(ctx context.Context, userID, taskID uint64) (bool, error) {
	done, err := s.completions.HasCompletion(ctx, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to check completion: %w", err)
	}
	if done {
		return false, ErrAlreadyCompleted
	}

	submission, err := s.completions.FindSubmission(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find submission: %w", err)
	}

	switch {
	case submission.Status == models.SubmissionPending:
		return false, ErrAlreadyPending
	case submission.Status.Collectable():
		return false, ErrAwaitingCollection
	case !s.allowResubmit():
		return false, ErrPreviouslyRejected
	default:
		return true, nil
	}
}

func (s *CompletionService) submit(ctx context.Context, userID uint64, task *models.Task, in MarkInput, reopen bool) (*MarkResult, error) {
	activityURL := normalizeProof(in.ActivityURL)
	imageURL := normalizeProof(in.ImageURL)

	if task.SubmitType.NeedsLink() && activityURL == nil {
		return nil, fmt.Errorf("%w: activity_url is required", ErrInvalidProof)
	}
	if task.SubmitType.NeedsImage() && imageURL == nil {
		return nil, fmt.Errorf("%w: image_url is required", ErrInvalidProof)
	}

	submission := &models.TaskSubmission{
		UserID:      userID,
		TaskID:      task.ID,
		Status:      models.SubmissionPending,
		ActivityURL: activityURL,
		ImageURL:    imageURL,
		CreatedAt:   s.now(),
	}

	if reopen {
		err := s.completions.Resubmit(ctx, submission)
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, ErrAlreadyPending
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resubmit task: %w", err)
		}
	} else {
		err := s.completions.CreateSubmission(ctx, submission)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyPending
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create submission: %w", err)
		}
	}

	metrics.RecordTransition("mark", "pending")
	s.notifier.Notify(ctx, userID, "Task Under Review",
		fmt.Sprintf("Your submission for %q has been marked for review.", task.Title))

	return &MarkResult{Outcome: OutcomePending, Task: task, Submission: submission}, nil
}

func (s *CompletionService) reward(ctx context.Context, op string, userID uint64, task *models.Task) (*MarkResult, error) {
	user, err := s.completions.ApplyReward(ctx, userID, task, s.now())
	if errors.Is(err, repository.ErrDuplicate) {
		metrics.RecordTransition(op, "conflict")
		return nil, ErrAlreadyCompleted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply reward: %w", err)
	}

	s.rewarded(ctx, op, userID, task)
	return &MarkResult{Outcome: OutcomeCompleted, Task: task, User: user}, nil
}

// rewarded runs after the reward committed; nothing here may fail the request.
func (s *CompletionService) rewarded(ctx context.Context, op string, userID uint64, task *models.Task) {
	metrics.RecordTransition(op, "completed")
	metrics.RecordPoints("task", task.Points)

	logger.FromContext(ctx, s.log).Info("task reward applied",
		slog.Uint64("user_id", userID),
		slog.Uint64("task_id", task.ID),
		slog.Int64("points", task.Points),
		slog.String("operation", op),
	)

	s.notifier.Notify(ctx, userID, "Task Completed",
		fmt.Sprintf("You earned %d points for completing %q.", task.Points, task.Title))
}

func (s *CompletionService) acquire(ctx context.Context, userID, taskID uint64) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.Acquire(ctx, lock.CompletionKey(userID, taskID))
	if errors.Is(err, lock.ErrLocked) {
		return nil, ErrCompletionInProgress
	}
	if err != nil {
		// the database constraints still guard the pair
		logger.FromContext(ctx, s.log).Warn("completion lock unavailable", slog.Any("error", err))
		return func() {}, nil
	}
	return release, nil
}

func (s *CompletionService) allowResubmit() bool {
	return s.policy == nil || s.policy.AllowResubmitAfterReject()
}

func (s *CompletionService) findTask(ctx context.Context, id uint64) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *CompletionService) findUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// normalizeProof maps blank proof values to NULL.
func normalizeProof(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
