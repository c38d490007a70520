package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/points-api/internal/models"
	"gorm.io/gorm"
)

// requiredIndexes are the constraints completion and referral correctness depends on.
// AutoMigrate creates them for new tables; tables created by older releases may lack them.
var requiredIndexes = []struct {
	model any
	name  string
}{
	{&models.TaskCompletion{}, "idx_completions_user_task"},
	{&models.TaskSubmission{}, "idx_submissions_user_task"},
	{&models.TaskSubmission{}, "idx_submissions_status_created"},
	{&models.Invite{}, "idx_invites_pair"},
}

// EnsureIndexes creates any required index that is missing.
func EnsureIndexes(db *gorm.DB, log *slog.Logger) error {
	migrator := db.Migrator()

	for _, idx := range requiredIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}

		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		if log != nil {
			log.Info("created missing index", slog.String("index", idx.name))
		}
	}

	return nil
}
