package handlers

import (
	"net/http"

	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/models"
)

type userScores struct {
	TaskScore  int64 `json:"task_score"`
	TotalScore int64 `json:"total_score"`
}

func (s *HandlerTestSuite) TestMarkTask_TelegramMembership() {
	admin := s.adminSession()
	taskID := s.createTask(admin, map[string]any{
		"title":       "Join the announcement channel",
		"description": "announcement",
		"platform":    "TELEGRAM",
		"type":        "ONCE",
		"points":      20,
	})
	_, alice := s.registerUser("alice", 1001)
	_, bob := s.registerUser("bobby", 1002)

	w := s.request(http.MethodPost, "/user/mark-task", map[string]any{"taskId": taskID}, alice)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string     `json:"message"`
		Status  string     `json:"status"`
		User    userScores `json:"user"`
	}
	s.decode(w, &resp)
	s.Equal("Task completed successfully", resp.Message)
	s.Equal("COMPLETED", resp.Status)
	s.Equal(int64(20), resp.User.TaskScore)
	s.Equal(int64(20), resp.User.TotalScore)

	w = s.request(http.MethodPost, "/user/mark-task", map[string]any{"taskId": taskID}, alice)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	s.membership.status = "left"
	w = s.request(http.MethodPost, "/user/mark-task", map[string]any{"taskId": taskID}, bob)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeVerificationFailed)
}

func (s *HandlerTestSuite) TestMarkTask_Errors() {
	_, alice := s.registerUser("alice", 1001)

	w := s.request(http.MethodPost, "/user/mark-task", map[string]any{"taskId": 404}, alice)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)

	w = s.request(http.MethodPost, "/user/mark-task", map[string]any{}, alice)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.request(http.MethodPost, "/user/mark-task", map[string]any{"taskId": 1}, nil)
	s.assertError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)
}

func (s *HandlerTestSuite) TestReviewFlow_ApproveAndCollect() {
	admin := s.adminSession()
	taskID := s.createTask(admin, map[string]any{
		"title":      "Write a thread",
		"platform":   "GENERIC",
		"type":       "ONCE",
		"submitType": "LINK",
		"points":     40,
	})
	aliceID, alice := s.registerUser("alice", 1001)

	w := s.request(http.MethodPost, "/user/mark-task", map[string]any{"taskId": taskID}, alice)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.request(http.MethodPost, "/user/mark-task", map[string]any{
		"taskId":       taskID,
		"activity_url": "https://x.com/alice/status/1",
	}, alice)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var marked dto.MarkTaskResponse
	s.decode(w, &marked)
	s.Equal("Task marked for review", marked.Message)
	s.Equal(string(models.SubmissionPending), marked.Status)
	s.Nil(marked.User)

	w = s.request(http.MethodPost, "/user/complete-task/"+itoa(taskID), nil, alice)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	w = s.request(http.MethodGet, "/user/submissions", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	var queue dto.SubmissionListResponse
	s.decode(w, &queue)
	s.Require().Len(queue.Submissions, 1)
	s.Require().NotNil(queue.Submissions[0].ActivityURL)
	s.Equal("https://x.com/alice/status/1", *queue.Submissions[0].ActivityURL)
	s.Nil(queue.Submissions[0].ImageURL)

	w = s.request(http.MethodPost, "/user/update-task-status", map[string]any{
		"userId": aliceID,
		"taskId": taskID,
		"status": "ADMIN_APPROVED",
	}, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/user/complete-task/"+itoa(taskID), nil, alice)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var collected struct {
		User userScores `json:"user"`
	}
	s.decode(w, &collected)
	s.Equal(int64(40), collected.User.TotalScore)

	w = s.request(http.MethodPost, "/user/complete-task/"+itoa(taskID), nil, alice)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	w = s.request(http.MethodGet, "/user/submissions", nil, admin)
	s.decode(w, &queue)
	s.Empty(queue.Submissions)
}

func (s *HandlerTestSuite) TestReviewFlow_RejectAllowsResubmit() {
	admin := s.adminSession()
	taskID := s.createTask(admin, map[string]any{
		"title":      "Post a screenshot",
		"platform":   "GENERIC",
		"type":       "ONCE",
		"submitType": "IMAGE",
		"points":     15,
	})
	aliceID, alice := s.registerUser("alice", 1001)
	mark := map[string]any{"taskId": taskID, "image_url": "https://cdn.example.com/a.png"}

	s.Require().Equal(http.StatusOK, s.request(http.MethodPost, "/user/mark-task", mark, alice).Code)

	w := s.request(http.MethodPost, "/user/update-task-status", map[string]any{
		"userId": aliceID, "taskId": taskID, "status": "REJECTED",
	}, admin)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, "/user/update-task-status", map[string]any{
		"userId": aliceID, "taskId": taskID, "status": "REJECTED",
	}, admin)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)

	w = s.request(http.MethodPost, "/user/mark-task", mark, alice)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *HandlerTestSuite) TestUpdateTaskStatus_Validation() {
	admin := s.adminSession()
	aliceID, alice := s.registerUser("alice", 1001)

	w := s.request(http.MethodPost, "/user/update-task-status", map[string]any{
		"userId": aliceID, "taskId": 1, "status": "COMPLETED",
	}, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.request(http.MethodPost, "/user/update-task-status", map[string]any{
		"userId": aliceID, "taskId": 1, "status": "ADMIN_APPROVED",
	}, alice)
	s.assertError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.request(http.MethodGet, "/user/submissions?status=DONE", nil, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (s *HandlerTestSuite) TestRewardInviter() {
	_, alice := s.registerUser("alice", 1001)
	_, bob := s.registerUser("bobby", 1002)

	w := s.request(http.MethodGet, "/auth/me", nil, alice)
	var me struct {
		ReferralCode string `json:"referral_code"`
	}
	s.decode(w, &me)

	w = s.request(http.MethodPost, "/user/reward-inviter/"+me.ReferralCode, nil, bob)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var rewarded struct {
		InviteCount int64 `json:"inviteCount"`
		Milestone   bool  `json:"milestone"`
	}
	s.decode(w, &rewarded)
	s.Equal(int64(1), rewarded.InviteCount)
	s.False(rewarded.Milestone)

	w = s.request(http.MethodPost, "/user/reward-inviter/"+me.ReferralCode, nil, bob)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	w = s.request(http.MethodPost, "/user/reward-inviter/"+me.ReferralCode, nil, alice)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	w = s.request(http.MethodPost, "/user/reward-inviter/NOPE000000", nil, bob)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)

	w = s.request(http.MethodGet, "/user/profile", nil, alice)
	s.Require().Equal(http.StatusOK, w.Code)
	var profile struct {
		User     userScores `json:"user"`
		Invitees []any      `json:"invitees"`
	}
	s.decode(w, &profile)
	s.Equal(int64(100), profile.User.TotalScore)
	s.Len(profile.Invitees, 1)
}
