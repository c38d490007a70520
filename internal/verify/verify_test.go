package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yukikurage/points-api/internal/models"
)

type mockMembership struct {
	mock.Mock
}

func (m *mockMembership) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	args := m.Called(chatID, userID)
	return args.String(0), args.Error(1)
}

type mockEngagement struct {
	mock.Mock
}

func (m *mockEngagement) HasReplied(ctx context.Context, tweetID, username string) (bool, error) {
	args := m.Called(tweetID, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockEngagement) HasRetweeted(ctx context.Context, tweetID, username string) (bool, error) {
	args := m.Called(tweetID, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockEngagement) HasQuoted(ctx context.Context, tweetID, username string) (bool, error) {
	args := m.Called(tweetID, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockEngagement) Follows(ctx context.Context, username, target string) (bool, error) {
	args := m.Called(username, target)
	return args.Bool(0), args.Error(1)
}

type toggle bool

func (t toggle) QuotePlaceholder() bool { return bool(t) }

func twitterUser() *models.User {
	name := "alice"
	return &models.User{ID: 1, TelegramID: 1001, TwitterUsername: &name}
}

func twitterTask(kinds ...models.EngagementKind) *models.Task {
	return &models.Task{
		ID:       9,
		Platform: models.PlatformTwitter,
		Link:     "https://x.com/project/status/555?s=20",
		CheckFor: models.EngagementKinds(kinds),
	}
}

func TestTelegramVerifier_ChatSelection(t *testing.T) {
	tests := []struct {
		name        string
		description string
		chatID      int64
	}{
		{"community keyword", "Join our Community group", -200},
		{"announcement keyword", "Join the announcement channel", -100},
		{"no keyword falls back to announcement", "Join us on Telegram", -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(mockMembership)
			checker.On("ChatMemberStatus", tt.chatID, int64(1001)).Return("member", nil)

			v := NewTelegramVerifier(checker, -100, -200, nil)
			ok := v.Verify(context.Background(), &models.User{TelegramID: 1001}, &models.Task{Description: tt.description})

			assert.True(t, ok)
			checker.AssertExpectations(t)
		})
	}
}

func TestTelegramVerifier_Statuses(t *testing.T) {
	tests := []struct {
		status string
		err    error
		want   bool
	}{
		{"member", nil, true},
		{"administrator", nil, true},
		{"left", nil, false},
		{"kicked", nil, false},
		{"", errors.New("telegram: bad request"), false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			checker := new(mockMembership)
			checker.On("ChatMemberStatus", int64(-100), int64(1001)).Return(tt.status, tt.err)

			v := NewTelegramVerifier(checker, -100, -200, nil)
			assert.Equal(t, tt.want, v.Verify(context.Background(), &models.User{TelegramID: 1001}, &models.Task{}))
		})
	}
}

func TestTwitterVerifier_AllChecksMustPass(t *testing.T) {
	checker := new(mockEngagement)
	checker.On("Follows", "alice", "project").Return(true, nil)
	checker.On("HasRetweeted", "555", "alice").Return(true, nil)
	checker.On("HasReplied", "555", "alice").Return(false, nil)

	v := NewTwitterVerifier(checker, "project", toggle(false), 0, nil)
	ok := v.Verify(context.Background(), twitterUser(),
		twitterTask(models.EngagementReact, models.EngagementFollow, models.EngagementRetweet, models.EngagementReply))

	assert.False(t, ok)
	checker.AssertExpectations(t)
}

func TestTwitterVerifier_Passes(t *testing.T) {
	checker := new(mockEngagement)
	checker.On("HasRetweeted", "555", "alice").Return(true, nil)
	checker.On("HasReplied", "555", "alice").Return(true, nil)

	v := NewTwitterVerifier(checker, "project", toggle(false), 0, nil)

	assert.True(t, v.Verify(context.Background(), twitterUser(),
		twitterTask(models.EngagementRetweet, models.EngagementReply)))
}

func TestTwitterVerifier_UpstreamErrorIsFailure(t *testing.T) {
	checker := new(mockEngagement)
	checker.On("HasRetweeted", "555", "alice").Return(false, errors.New("503"))

	v := NewTwitterVerifier(checker, "project", toggle(false), 0, nil)

	assert.False(t, v.Verify(context.Background(), twitterUser(), twitterTask(models.EngagementRetweet)))
}

func TestTwitterVerifier_MissingIdentity(t *testing.T) {
	v := NewTwitterVerifier(new(mockEngagement), "project", toggle(false), 0, nil)

	assert.False(t, v.Verify(context.Background(), &models.User{ID: 1}, twitterTask(models.EngagementReact)))
}

func TestTwitterVerifier_EmptyCheckFor(t *testing.T) {
	v := NewTwitterVerifier(new(mockEngagement), "project", toggle(false), 0, nil)

	assert.False(t, v.Verify(context.Background(), twitterUser(), twitterTask()))
}

func TestTwitterVerifier_QuotePlaceholder(t *testing.T) {
	checker := new(mockEngagement)
	v := NewTwitterVerifier(checker, "project", toggle(true), 10*time.Millisecond, nil)

	start := time.Now()
	ok := v.Verify(context.Background(), twitterUser(), twitterTask(models.EngagementQuote))

	assert.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	checker.AssertNotCalled(t, "HasQuoted", mock.Anything, mock.Anything)
}

func TestTwitterVerifier_QuotePlaceholderHonoursContext(t *testing.T) {
	v := NewTwitterVerifier(new(mockEngagement), "project", toggle(true), time.Hour, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.False(t, v.Verify(ctx, twitterUser(), twitterTask(models.EngagementQuote)))
}

func TestTwitterVerifier_QuoteRealCheckWhenToggleOff(t *testing.T) {
	checker := new(mockEngagement)
	checker.On("HasQuoted", "555", "alice").Return(true, nil)

	v := NewTwitterVerifier(checker, "project", toggle(false), time.Hour, nil)

	assert.True(t, v.Verify(context.Background(), twitterUser(), twitterTask(models.EngagementQuote)))
	checker.AssertExpectations(t)
}

type stubVerifier bool

func (s stubVerifier) Verify(context.Context, *models.User, *models.Task) bool { return bool(s) }

func TestDispatcher_RoutesByPlatform(t *testing.T) {
	d := NewDispatcher(time.Second, nil).
		Register(models.PlatformTelegram, stubVerifier(true)).
		Register(models.PlatformTwitter, stubVerifier(false))

	user := &models.User{ID: 1}
	assert.True(t, d.Verify(context.Background(), user, &models.Task{Platform: models.PlatformTelegram}))
	assert.False(t, d.Verify(context.Background(), user, &models.Task{Platform: models.PlatformTwitter}))
	assert.False(t, d.Verify(context.Background(), user, &models.Task{Platform: models.PlatformGeneric}))
}
