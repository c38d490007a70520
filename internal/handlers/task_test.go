package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/models"
)

func (s *HandlerTestSuite) TestTaskCRUD() {
	admin := s.adminSession()

	id := s.createTask(admin, map[string]any{
		"title":      "Follow us",
		"platform":   "TWITTER",
		"type":       "ONCE",
		"points":     50,
		"link":       "https://x.com/points/status/123",
		"checkFor":   []string{"FOLLOW", "RETWEET", "FOLLOW"},
		"submitType": "NONE",
	})
	path := fmt.Sprintf("/tasks/%d", id)

	w := s.request(http.MethodGet, path, nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	var task models.Task
	s.decode(w, &task)
	s.Equal("Follow us", task.Title)
	s.Equal(models.EngagementKinds{models.EngagementFollow, models.EngagementRetweet}, task.CheckFor)

	w = s.request(http.MethodPut, path, map[string]any{"points": 75}, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &task)
	s.Equal(int64(75), task.Points)
	s.Equal("Follow us", task.Title)

	w = s.request(http.MethodDelete, path, nil, admin)
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, path, nil, admin)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (s *HandlerTestSuite) TestCreateTask_Invalid() {
	admin := s.adminSession()

	w := s.request(http.MethodPost, "/tasks", map[string]any{"title": "x", "platform": "MYSPACE", "type": "ONCE"}, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.request(http.MethodPost, "/tasks", map[string]any{"platform": "GENERIC"}, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (s *HandlerTestSuite) TestTaskRoutesAuthorization() {
	_, user := s.registerUser("alice", 1001)
	admin := s.adminSession()

	s.createTask(admin, map[string]any{"title": "Daily check-in", "platform": "GENERIC", "type": "DAILY", "points": 10})
	s.createTask(admin, map[string]any{"title": "Join", "platform": "TELEGRAM", "type": "ONCE", "points": 20})

	w := s.request(http.MethodGet, "/tasks/daily", nil, nil)
	s.assertError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)

	w = s.request(http.MethodGet, "/tasks/daily", nil, user)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.TaskListResponse
	s.decode(w, &list)
	s.Require().Len(list.Tasks, 1)
	s.Equal("Daily check-in", list.Tasks[0].Title)

	w = s.request(http.MethodGet, "/tasks/once", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &list)
	s.Require().Len(list.Tasks, 1)
	s.Equal("Join", list.Tasks[0].Title)

	w = s.request(http.MethodGet, "/tasks", nil, user)
	s.assertError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.request(http.MethodPost, "/tasks", map[string]any{"title": "x", "platform": "GENERIC", "type": "ONCE"}, user)
	s.assertError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	w = s.request(http.MethodGet, "/tasks", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &list)
	s.Len(list.Tasks, 2)
}

func (s *HandlerTestSuite) TestTaskIDValidation() {
	admin := s.adminSession()

	w := s.request(http.MethodGet, "/tasks/abc", nil, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.request(http.MethodGet, "/tasks/999", nil, admin)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}
