package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/points-api/internal/config"
	"github.com/yukikurage/points-api/internal/database"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
)

type sentNotification struct {
	UserIDs []uint64
	Title   string
	Body    string
}

// recordingNotifier captures notifications synchronously.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint64, title, body string) {
	n.NotifyMany(context.Background(), []uint64{userID}, title, body)
}

func (n *recordingNotifier) NotifyMany(_ context.Context, userIDs []uint64, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserIDs: userIDs, Title: title, Body: body})
}

func (n *recordingNotifier) titlesFor(userID uint64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	titles := []string{}
	for _, s := range n.sent {
		for _, id := range s.UserIDs {
			if id == userID {
				titles = append(titles, s.Title)
			}
		}
	}
	return titles
}

// stubVerifier returns a fixed answer and counts calls.
type stubVerifier struct {
	mu     sync.Mutex
	result bool
	calls  int
}

func (v *stubVerifier) Verify(context.Context, *models.User, *models.Task) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.result
}

func (v *stubVerifier) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

// ServiceTestSuite wires real repositories over in-memory SQLite.
type ServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context

	users       repository.UserRepository
	tasks       repository.TaskRepository
	completions repository.CompletionRepository
	invites     repository.InviteRepository
	notes       repository.NotificationRepository
	content     repository.ContentRepository
	admins      repository.AdminRepository

	notifier *recordingNotifier
	verifier *stubVerifier
	flags    *config.Flags

	completion *CompletionService
}

func (s *ServiceTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)

	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(database.Migrate(s.db, nil))

	s.ctx = context.Background()
	s.users = repository.NewUserRepository(s.db)
	s.tasks = repository.NewTaskRepository(s.db)
	s.completions = repository.NewCompletionRepository(s.db)
	s.invites = repository.NewInviteRepository(s.db)
	s.notes = repository.NewNotificationRepository(s.db)
	s.content = repository.NewContentRepository(s.db)
	s.admins = repository.NewAdminRepository(s.db)

	s.notifier = &recordingNotifier{}
	s.verifier = &stubVerifier{result: true}
	s.flags = config.NewFlags(config.FeaturesConfig{QuotePlaceholder: true, AllowResubmitAfterReject: true})

	s.completion = NewCompletionService(s.tasks, s.users, s.completions, s.verifier, s.notifier, nil, s.flags, nil)
}

func (s *ServiceTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *ServiceTestSuite) createUser(name string, telegramID int64) *models.User {
	user := &models.User{
		Username:     name,
		TelegramID:   telegramID,
		ReferralCode: fmt.Sprintf("REF%d", telegramID),
	}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *ServiceTestSuite) createTask(platform models.Platform, taskType models.TaskType, submit models.SubmitType, points int64) *models.Task {
	task := &models.Task{
		Title:      fmt.Sprintf("%s %s task", platform, taskType),
		Platform:   platform,
		Type:       taskType,
		SubmitType: submit,
		Points:     points,
	}
	s.Require().NoError(s.tasks.Create(s.ctx, task))
	return task
}

func (s *ServiceTestSuite) reload(userID uint64) *models.User {
	user, err := s.users.FindByID(s.ctx, userID)
	s.Require().NoError(err)
	return user
}
