// services/store.go - Storage boundary of the progression engine
package services

import (
	"errors"
	"time"

	"sidequest/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressionStore is everything the engine needs from durable storage. All
// calls run inside the single transaction the engine opens, so a failure on
// any of them rolls the whole attempt back.
type ProgressionStore interface {
	GetRun(id uint) (*models.PlayerRun, error)
	GetCheckpoint(id uint) (*models.Checkpoint, error)
	GetHunt(id uint) (*models.Hunt, error)
	GetUser(id uint) (*models.User, error)

	GetOrCreateProgress(runID, checkpointID uint) (*models.CheckpointProgress, error)
	AppendAttempt(attempt *models.CheckpointAttempt) error
	SaveProgress(progress *models.CheckpointProgress) error
	SaveRun(run *models.PlayerRun) error

	// NextCheckpoint returns the checkpoint in the hunt with the smallest
	// position strictly greater than afterPosition, or nil if none exists.
	NextCheckpoint(huntID uint, afterPosition int) (*models.Checkpoint, error)
	// SolvedCountInRun counts progress rows of the run with a non-null
	// solvedAt.
	SolvedCountInRun(runID uint) (int64, error)

	BadgesByCheckpoint(checkpointID uint) ([]models.Badge, error)
	// BadgeByKey returns (nil, nil) when no badge carries the key; an
	// unseeded derived badge is skipped, not an error.
	BadgeByKey(key string) (*models.Badge, error)
	// GrantBadgeIfAbsent reports whether a new grant was created.
	GrantBadgeIfAbsent(userID, badgeID uint) (bool, error)
	CountBadges(userID uint) (int64, error)
}

// NewGormStore wraps a transaction handle in the ProgressionStore interface.
func NewGormStore(tx *gorm.DB) ProgressionStore {
	return &gormStore{tx: tx}
}

type gormStore struct {
	tx *gorm.DB
}

// locked adds a row lock on dialects that support SELECT ... FOR UPDATE.
// Serializes concurrent attempts on the same run so the attempts counter and
// first-solve detection are race-free.
func (s *gormStore) locked() *gorm.DB {
	if s.tx.Dialector.Name() == "postgres" {
		return s.tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return s.tx
}

func (s *gormStore) GetRun(id uint) (*models.PlayerRun, error) {
	var run models.PlayerRun
	if err := s.locked().First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (s *gormStore) GetCheckpoint(id uint) (*models.Checkpoint, error) {
	var cp models.Checkpoint
	if err := s.tx.First(&cp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckpointNotFound
		}
		return nil, err
	}
	return &cp, nil
}

func (s *gormStore) GetHunt(id uint) (*models.Hunt, error) {
	var hunt models.Hunt
	if err := s.tx.First(&hunt, id).Error; err != nil {
		return nil, err
	}
	return &hunt, nil
}

func (s *gormStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.tx.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) GetOrCreateProgress(runID, checkpointID uint) (*models.CheckpointProgress, error) {
	var progress models.CheckpointProgress
	err := s.locked().
		Where("run_id = ? AND checkpoint_id = ?", runID, checkpointID).
		First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Lazily created on first attempt. The unique (run, checkpoint) index
	// backstops a concurrent insert.
	progress = models.CheckpointProgress{RunID: runID, CheckpointID: checkpointID}
	if err := s.tx.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *gormStore) AppendAttempt(attempt *models.CheckpointAttempt) error {
	return s.tx.Create(attempt).Error
}

func (s *gormStore) SaveProgress(progress *models.CheckpointProgress) error {
	return s.tx.Save(progress).Error
}

func (s *gormStore) SaveRun(run *models.PlayerRun) error {
	return s.tx.Save(run).Error
}

func (s *gormStore) NextCheckpoint(huntID uint, afterPosition int) (*models.Checkpoint, error) {
	var cp models.Checkpoint
	err := s.tx.
		Where("hunt_id = ? AND position > ?", huntID, afterPosition).
		Order("position ASC").
		First(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *gormStore) SolvedCountInRun(runID uint) (int64, error) {
	var count int64
	err := s.tx.Model(&models.CheckpointProgress{}).
		Where("run_id = ? AND solved_at IS NOT NULL", runID).
		Count(&count).Error
	return count, err
}

func (s *gormStore) BadgesByCheckpoint(checkpointID uint) ([]models.Badge, error) {
	var badges []models.Badge
	err := s.tx.Where("checkpoint_id = ?", checkpointID).Find(&badges).Error
	return badges, err
}

func (s *gormStore) BadgeByKey(key string) (*models.Badge, error) {
	var badge models.Badge
	err := s.tx.Where("key = ?", key).First(&badge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (s *gormStore) GrantBadgeIfAbsent(userID, badgeID uint) (bool, error) {
	var existing models.UserBadge
	err := s.tx.Where("user_id = ? AND badge_id = ?", userID, badgeID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	grant := models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: time.Now().UTC()}
	if err := s.tx.Create(&grant).Error; err != nil {
		return false, err
	}

	// Keep the cached count on the user in step with the join table.
	if err := s.tx.Model(&models.User{}).Where("id = ?", userID).
		Update("badge_count", gorm.Expr("badge_count + 1")).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *gormStore) CountBadges(userID uint) (int64, error) {
	var count int64
	err := s.tx.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
