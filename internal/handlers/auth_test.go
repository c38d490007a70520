package handlers

import (
	"net/http"

	apierrors "github.com/yukikurage/points-api/internal/errors"
)

func (s *HandlerTestSuite) TestRegisterAndCurrentUser() {
	_, session := s.registerUser("alice", 1001)

	w := s.request(http.MethodGet, "/auth/me", nil, session)
	s.Equal(http.StatusOK, w.Code)

	var me struct {
		Username     string `json:"username"`
		TelegramID   int64  `json:"telegram_id"`
		ReferralCode string `json:"referral_code"`
		InviteLink   string `json:"invite_link"`
	}
	s.decode(w, &me)
	s.Equal("alice", me.Username)
	s.Equal(int64(1001), me.TelegramID)
	s.Len(me.ReferralCode, 10)
	s.Equal("https://t.me/points_bot?start="+me.ReferralCode, me.InviteLink)
}

func (s *HandlerTestSuite) TestRegister_Conflicts() {
	s.registerUser("alice", 1001)

	w := s.request(http.MethodPost, "/auth/register", map[string]any{"username": "alice", "telegramId": 2002}, nil)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	w = s.request(http.MethodPost, "/auth/register", map[string]any{"username": "bob", "telegramId": 1001}, nil)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeConflict)

	w = s.request(http.MethodPost, "/auth/register", map[string]any{"username": "al"}, nil)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)
}

func (s *HandlerTestSuite) TestLoginAndLogout() {
	s.registerUser("alice", 1001)

	w := s.request(http.MethodPost, "/auth/login", map[string]any{"username": "alice", "telegramId": 9999}, nil)
	s.assertError(w, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials)

	w = s.request(http.MethodPost, "/auth/login", map[string]any{"username": "alice", "telegramId": 1001}, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	session := s.sessionFrom(w)

	s.Equal(http.StatusOK, s.request(http.MethodGet, "/auth/me", nil, session).Code)

	w = s.request(http.MethodPost, "/auth/logout", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	cleared := s.sessionFrom(w)

	w = s.request(http.MethodGet, "/auth/me", nil, cleared)
	s.assertError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)
}

func (s *HandlerTestSuite) TestAdminRegistrationRequiresAdmin() {
	body := map[string]string{"username": "second", "password": "another-password"}

	w := s.request(http.MethodPost, "/admin/register", body, nil)
	s.assertError(w, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized)

	_, user := s.registerUser("alice", 1001)
	w = s.request(http.MethodPost, "/admin/register", body, user)
	s.assertError(w, http.StatusForbidden, apierrors.ErrCodeForbidden)

	admin := s.adminSession()
	w = s.request(http.MethodPost, "/admin/register", body, admin)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/admin/register", map[string]string{"username": "third", "password": "short"}, admin)
	s.assertError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput)

	w = s.request(http.MethodPost, "/admin/login", body, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestAdminLogin_WrongPassword() {
	w := s.request(http.MethodPost, "/admin/login", map[string]string{"username": testAdminName, "password": "nope"}, nil)
	s.assertError(w, http.StatusUnauthorized, apierrors.ErrCodeInvalidCredentials)
}

func (s *HandlerTestSuite) TestInternalErrorsAreGeneric() {
	_, session := s.registerUser("alice", 1001)

	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	w := s.request(http.MethodGet, "/auth/me", nil, session)
	s.assertError(w, http.StatusInternalServerError, apierrors.ErrCodeInternalError)

	var body errorBody
	s.decode(w, &body)
	s.Equal("Internal server error", body.Error)
}
