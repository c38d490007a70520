package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/points-api/internal/config"
	"github.com/yukikurage/points-api/internal/database"
	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
	"github.com/yukikurage/points-api/internal/services"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) SendToAll(ctx context.Context, message string) ([]services.DeliveryResult, error) {
	args := m.Called(ctx, message)
	results, _ := args.Get(0).([]services.DeliveryResult)
	return results, args.Error(1)
}

type SweepsTestSuite struct {
	suite.Suite
	db        *gorm.DB
	ctx       context.Context
	broadcast *mockBroadcaster
	cfg       config.SchedulerConfig
	now       time.Time
}

func (s *SweepsTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(database.Migrate(s.db, nil))

	s.ctx = context.Background()
	s.broadcast = new(mockBroadcaster)
	s.cfg = config.SchedulerConfig{Timezone: "Asia/Kolkata", TaskTTLDays: 30}
	s.now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
}

func (s *SweepsTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *SweepsTestSuite) sweeps() *Sweeps {
	sw := NewSweeps(
		repository.NewCompletionRepository(s.db),
		repository.NewTaskRepository(s.db),
		s.broadcast,
		s.cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	sw.now = func() time.Time { return s.now }
	return sw
}

func (s *SweepsTestSuite) createTask(title string, kind models.TaskType, createdAt time.Time) *models.Task {
	task := &models.Task{
		Title:      title,
		Platform:   models.PlatformGeneric,
		Type:       kind,
		SubmitType: models.SubmitTypeNone,
		Points:     10,
		CreatedAt:  createdAt,
	}
	s.Require().NoError(s.db.Create(task).Error)
	return task
}

func (s *SweepsTestSuite) complete(userID uint64, task *models.Task) {
	s.Require().NoError(s.db.Create(&models.TaskCompletion{
		UserID:      userID,
		TaskID:      task.ID,
		Kind:        task.Type,
		CompletedAt: s.now.Add(-time.Hour),
	}).Error)
}

func (s *SweepsTestSuite) countCompletions(kind models.TaskType) int64 {
	var n int64
	s.Require().NoError(s.db.Model(&models.TaskCompletion{}).Where("kind = ?", kind).Count(&n).Error)
	return n
}

func (s *SweepsTestSuite) TestResetDailyTasks() {
	user := &models.User{Username: "alice", TelegramID: 1, ReferralCode: "AAAAAAAAAA", TaskScore: 20, TotalScore: 20}
	s.Require().NoError(s.db.Create(user).Error)

	daily := s.createTask("check in", models.TaskTypeDaily, s.now)
	once := s.createTask("follow", models.TaskTypeOnce, s.now)
	s.complete(user.ID, daily)
	s.complete(user.ID, once)

	sw := s.sweeps()
	s.Require().NoError(sw.ResetDailyTasks(s.ctx))
	s.Require().NoError(sw.ResetDailyTasks(s.ctx))

	s.Equal(int64(0), s.countCompletions(models.TaskTypeDaily))
	s.Equal(int64(1), s.countCompletions(models.TaskTypeOnce))

	var reloaded models.User
	s.Require().NoError(s.db.First(&reloaded, user.ID).Error)
	s.Equal(int64(20), reloaded.TotalScore)
	s.Require().NotNil(reloaded.LastResetDate)
	s.True(reloaded.LastResetDate.Equal(s.now))
}

func (s *SweepsTestSuite) TestExpireTasks() {
	user := &models.User{Username: "alice", TelegramID: 1, ReferralCode: "AAAAAAAAAA"}
	s.Require().NoError(s.db.Create(user).Error)

	old := s.createTask("old", models.TaskTypeOnce, s.now.AddDate(0, 0, -31))
	fresh := s.createTask("fresh", models.TaskTypeOnce, s.now.AddDate(0, 0, -29))
	s.complete(user.ID, old)

	sw := s.sweeps()
	s.Require().NoError(sw.ExpireTasks(s.ctx))
	s.Require().NoError(sw.ExpireTasks(s.ctx))

	var remaining []models.Task
	s.Require().NoError(s.db.Find(&remaining).Error)
	s.Require().Len(remaining, 1)
	s.Equal(fresh.ID, remaining[0].ID)
	s.Equal(int64(0), s.countCompletions(models.TaskTypeOnce))
}

func (s *SweepsTestSuite) TestExpireTasks_DisabledWithZeroTTL() {
	s.cfg.TaskTTLDays = 0
	s.createTask("ancient", models.TaskTypeOnce, s.now.AddDate(-5, 0, 0))

	s.Require().NoError(s.sweeps().ExpireTasks(s.ctx))

	var n int64
	s.Require().NoError(s.db.Model(&models.Task{}).Count(&n).Error)
	s.Equal(int64(1), n)
}

func (s *SweepsTestSuite) TestBroadcastReminder() {
	sw := s.sweeps()
	s.Require().NoError(sw.BroadcastReminder(s.ctx))
	s.broadcast.AssertNotCalled(s.T(), "SendToAll", mock.Anything, mock.Anything)

	s.cfg.ReminderMessage = "Daily tasks are back!"
	s.broadcast.On("SendToAll", mock.Anything, "Daily tasks are back!").
		Return([]services.DeliveryResult{{UserID: 1}, {UserID: 2, Err: errors.New("blocked")}}, nil).Once()
	s.Require().NoError(s.sweeps().BroadcastReminder(s.ctx))

	s.broadcast.On("SendToAll", mock.Anything, "Daily tasks are back!").
		Return(nil, errors.New("db down")).Once()
	s.Error(s.sweeps().BroadcastReminder(s.ctx))

	s.broadcast.AssertExpectations(s.T())
}

func TestSweepsTestSuite(t *testing.T) {
	suite.Run(t, new(SweepsTestSuite))
}

func TestNewScheduler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeps := NewSweeps(nil, nil, nil, config.SchedulerConfig{}, log)

	_, err := NewScheduler(sweeps, config.SchedulerConfig{Timezone: "Mars/Olympus"}, log)
	require.Error(t, err)

	cfg := config.SchedulerConfig{
		Timezone:       "Asia/Kolkata",
		DailyResetCron: "0 0 * * *",
		ExpiryCron:     "30 0 * * *",
	}
	sched, err := NewScheduler(sweeps, cfg, log)
	require.NoError(t, err)
	require.NoError(t, sched.RegisterTasks())
	require.Len(t, sched.(*scheduler).cron.Entries(), 2)

	sched.Run()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sched.Shutdown(ctx)

	cfg.ReminderCron = "not a cron"
	sched, err = NewScheduler(sweeps, cfg, log)
	require.NoError(t, err)
	require.Error(t, sched.RegisterTasks())
}
