package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/points-api/internal/constants"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/services"
)

// respondServiceError maps service errors onto the API error taxonomy.
// Anything unrecognized is a 500 with a generic body.
func respondServiceError(c *gin.Context, err error) {
	switch {
	// not found
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAdminNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrInviterNotFound),
		errors.Is(err, services.ErrAnnouncementNotFound),
		errors.Is(err, services.ErrCarouselImageNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, err.Error())

	// state conflicts
	case errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrAlreadyPending),
		errors.Is(err, services.ErrAwaitingCollection),
		errors.Is(err, services.ErrPreviouslyRejected),
		errors.Is(err, services.ErrNotMarked),
		errors.Is(err, services.ErrNotApproved),
		errors.Is(err, services.ErrSubmissionNotPending),
		errors.Is(err, services.ErrCompletionInProgress),
		errors.Is(err, services.ErrAlreadyInvited),
		errors.Is(err, services.ErrSelfInvite),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrTelegramIDTaken):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrVerificationFailed):
		apierrors.VerificationFailed(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)

	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))

	// invalid input
	case errors.Is(err, services.ErrInvalidProof),
		errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTask),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidTelegramID),
		errors.Is(err, services.ErrInvalidTwitter),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrInvalidAnnouncement),
		errors.Is(err, services.ErrInvalidCarouselLink),
		errors.Is(err, services.ErrNoRecipients),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrInvalidLeaderboard):
		apierrors.BadRequest(c, err.Error())

	default:
		apierrors.InternalError(c, err)
	}
}

// parseIDParam reads a positive numeric path parameter, responding 400 otherwise.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}
