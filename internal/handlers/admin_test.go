package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"

	"github.com/yukikurage/points-api/internal/dto"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/services"
)

func (s *HandlerTestSuite) TestUserManagement() {
	admin := s.adminSession()
	aliceID, alice := s.registerUser("alice", 1001)
	bobID, _ := s.registerUser("bobby", 1002)

	w := s.request(http.MethodPut, "/user/update/"+itoa(aliceID), map[string]any{"taskScore": 30, "inviteScore": 5}, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated userScores
	s.decode(w, &updated)
	s.Equal(int64(35), updated.TotalScore)

	w = s.request(http.MethodPut, "/user/update/"+itoa(aliceID), map[string]any{"taskScore": -1}, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.request(http.MethodGet, "/user/overall-leaderboard", nil, alice)
	s.Require().Equal(http.StatusOK, w.Code)
	var board services.Leaderboard
	s.decode(w, &board)
	s.Require().Len(board.Entries, 2)
	s.Equal("alice", board.Entries[0].Username)
	s.Require().NotNil(board.Me)
	s.Equal(int64(1), board.Me.Rank)

	w = s.request(http.MethodGet, "/user/all?page=1&limit=1", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	var page dto.UserListResponse
	s.decode(w, &page)
	s.Len(page.Users, 1)
	s.Equal(int64(2), page.Pagination.Total)

	w = s.request(http.MethodPost, "/user/reset-score", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.request(http.MethodGet, "/auth/me", nil, alice)
	s.decode(w, &updated)
	s.Equal(int64(0), updated.TaskScore)
	s.Equal(int64(5), updated.TotalScore)

	w = s.request(http.MethodDelete, "/user/delete/"+itoa(bobID), nil, admin)
	s.Equal(http.StatusOK, w.Code)
	w = s.request(http.MethodDelete, "/user/delete/"+itoa(bobID), nil, admin)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (s *HandlerTestSuite) TestSelfServiceProfileUpdates() {
	_, alice := s.registerUser("alice", 1001)
	s.registerUser("bobby", 1002)

	w := s.request(http.MethodPost, "/user/update-username", map[string]string{"username": "bobby"}, alice)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	w = s.request(http.MethodPost, "/user/update-username", map[string]string{"username": "alicia"}, alice)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, "/user/link-twitter", map[string]any{"twitterUsername": "alicia_x", "twitterId": 77}, alice)
	s.Require().Equal(http.StatusOK, w.Code)
	var linked struct {
		TwitterUsername *string `json:"twitter_username"`
	}
	s.decode(w, &linked)
	s.Require().NotNil(linked.TwitterUsername)
	s.Equal("alicia_x", *linked.TwitterUsername)

	w = s.request(http.MethodGet, "/user/username/1001", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"username":"alicia"}`, w.Body.String())

	w = s.request(http.MethodGet, "/user/username/5555", nil, nil)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (s *HandlerTestSuite) TestDownloadRanking() {
	admin := s.adminSession()
	aliceID, _ := s.registerUser("alice", 1001)
	bobID, _ := s.registerUser("bobby", 1002)
	s.request(http.MethodPut, "/user/update/"+itoa(aliceID), map[string]any{"taskScore": 10}, admin)
	s.request(http.MethodPut, "/user/update/"+itoa(bobID), map[string]any{"taskScore": 20, "inviteScore": 100}, admin)

	w := s.request(http.MethodGet, "/api/download-ranking", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "ranking.csv")

	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	s.Require().NoError(err)
	s.Equal([][]string{
		{"Rank", "Username", "Task Score", "Invite Score", "Total Score"},
		{"1", "bobby", "20", "100", "120"},
		{"2", "alice", "10", "0", "10"},
	}, rows)
}

func (s *HandlerTestSuite) TestNotifications() {
	admin := s.adminSession()
	aliceID, alice := s.registerUser("alice", 1001)

	w := s.request(http.MethodPost, "/api/send-notification", map[string]any{
		"userIds": []uint64{aliceID},
		"title":   "Maintenance",
		"body":    "Back in five",
	}, admin)
	s.Require().Equal(http.StatusAccepted, w.Code, w.Body.String())
	s.notifier.Wait()

	w = s.request(http.MethodGet, "/api/notifications", nil, alice)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.NotificationListResponse
	s.decode(w, &list)
	s.Require().Len(list.Notifications, 1)
	s.Equal("Maintenance", list.Notifications[0].Title)
	s.False(list.Notifications[0].Read)

	w = s.request(http.MethodPut, "/api/mark-read/"+itoa(list.Notifications[0].ID), nil, alice)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/api/notifications", nil, alice)
	s.decode(w, &list)
	s.True(list.Notifications[0].Read)

	w = s.request(http.MethodPut, "/api/mark-read/999", nil, alice)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (s *HandlerTestSuite) TestAnnouncementsAndCarousel() {
	admin := s.adminSession()
	_, alice := s.registerUser("alice", 1001)

	w := s.request(http.MethodPost, "/anmt", map[string]string{"title": "Season 2", "description": "New tasks"}, admin)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var announcement models.Announcement
	s.decode(w, &announcement)

	w = s.request(http.MethodGet, "/anmt/"+itoa(announcement.ID), nil, alice)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, "/anmt", map[string]string{"title": "Nope"}, alice)
	s.assertError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	s.notifier.Wait()
	w = s.request(http.MethodGet, "/api/notifications", nil, alice)
	var list dto.NotificationListResponse
	s.decode(w, &list)
	s.Len(list.Notifications, 1)

	w = s.request(http.MethodPost, "/carousel", map[string]string{"link": "https://cdn.example.com/banner.png"}, admin)
	s.Require().Equal(http.StatusCreated, w.Code)
	var image models.CarouselImage
	s.decode(w, &image)

	w = s.request(http.MethodGet, "/carousel", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "banner.png")

	s.Equal(http.StatusOK, s.request(http.MethodDelete, "/carousel/"+itoa(image.ID), nil, admin).Code)
	w = s.request(http.MethodDelete, "/carousel/"+itoa(image.ID), nil, admin)
	s.assertError(w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (s *HandlerTestSuite) TestBotMessaging() {
	admin := s.adminSession()
	aliceID, _ := s.registerUser("alice", 1001)
	bobID, _ := s.registerUser("bobby", 1002)
	s.messenger.failFor[1002] = true

	w := s.request(http.MethodGet, "/api/bot/members", nil, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"telegramId":1001`)

	w = s.request(http.MethodPost, "/api/bot/send-message", map[string]any{
		"userIds": []uint64{aliceID, bobID, 999},
		"message": "hello",
	}, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.BroadcastResponse
	s.decode(w, &resp)
	s.Equal(3, resp.Total)
	s.Equal(1, resp.Sent)
	s.Equal([]uint64{bobID, 999}, resp.Failed)
	s.Require().Len(resp.Results, 3)
	s.True(resp.Results[0].Sent)
	s.NotEmpty(resp.Results[1].Error)

	w = s.request(http.MethodPost, "/api/bot/send-message-all", map[string]any{"message": "everyone"}, admin)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &resp)
	s.Equal(2, resp.Total)
	s.Equal(1, resp.Sent)

	w = s.request(http.MethodPost, "/api/bot/send-message-all", map[string]any{"message": "   "}, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (s *HandlerTestSuite) TestHealthAndKeepAlive() {
	w := s.request(http.MethodGet, "/health", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok","checks":{"database":"OK"}}`, w.Body.String())

	w = s.request(http.MethodGet, "/api/keep-alive", nil, nil)
	s.Equal(http.StatusOK, w.Code)

	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	w = s.request(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Contains(w.Body.String(), "degraded")
}
