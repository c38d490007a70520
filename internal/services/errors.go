package services

import "errors"

// Task engine
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlreadyCompleted     = errors.New("task already completed")
	ErrAlreadyPending       = errors.New("task is already under review")
	ErrAwaitingCollection   = errors.New("task was approved, collect your reward instead")
	ErrPreviouslyRejected   = errors.New("task submission was rejected and cannot be resubmitted")
	ErrVerificationFailed   = errors.New("task verification failed")
	ErrInvalidProof         = errors.New("submission proof does not match the task requirements")
	ErrNotMarked            = errors.New("task has not been marked")
	ErrNotApproved          = errors.New("task has not been approved yet")
	ErrInvalidDecision      = errors.New("status must be ADMIN_APPROVED or REJECTED")
	ErrInvalidStatus        = errors.New("invalid submission status")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionNotPending = errors.New("submission is not pending review")
	ErrCompletionInProgress = errors.New("task completion already in progress")
)

// Referrals
var (
	ErrInviterNotFound = errors.New("invalid referral code")
	ErrSelfInvite      = errors.New("cannot use your own referral code")
	ErrAlreadyInvited  = errors.New("referral already rewarded")
)

// Accounts
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrTelegramIDTaken    = errors.New("telegram account already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidUsername    = errors.New("username must be 3-50 characters")
	ErrInvalidTelegramID  = errors.New("telegram id is required")
	ErrInvalidTwitter     = errors.New("twitter username and id are required")
	ErrInvalidScore       = errors.New("scores must not be negative")
	ErrAdminNotFound      = errors.New("admin not found")
)

// Content
var (
	// ErrInvalidTask wraps every task validation failure.
	ErrInvalidTask           = errors.New("invalid task")
	ErrAnnouncementNotFound  = errors.New("announcement not found")
	ErrInvalidAnnouncement   = errors.New("title is required")
	ErrCarouselImageNotFound = errors.New("carousel image not found")
	ErrInvalidCarouselLink   = errors.New("link is required")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrNoRecipients          = errors.New("at least one recipient is required")
	ErrEmptyMessage          = errors.New("message is required")
	ErrRecipientUnavailable  = errors.New("user has no telegram account")
	ErrInvalidLeaderboard    = errors.New("unknown leaderboard")
)
