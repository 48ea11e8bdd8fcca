// services/progression.go - Hunt progression engine
//
// Decides whether a submitted checkpoint answer is correct, updates the
// player's durable progress, grants badges, advances the run to the next
// checkpoint or completes it. Everything from the run lookup to the last
// badge grant commits as one transaction.
package services

import (
	"context"
	"log"
	"strings"
	"time"

	"sidequest/models"

	"gorm.io/gorm"
)

// ProgressionConfig carries the tunable policy knobs.
type ProgressionConfig struct {
	// EnforceGeofence rejects attempts submitted outside a checkpoint's
	// tolerance radius. Only applies when the checkpoint has a fence and the
	// client sent coordinates.
	EnforceGeofence bool

	// RequireActiveRun rejects attempts against completed or abandoned runs.
	RequireActiveRun bool

	// SpeedBadgeSeconds is the completion-time ceiling for the speedrunner
	// badge.
	SpeedBadgeSeconds int

	// CollectorThreshold is the distinct-badge count that earns the
	// collector badge, evaluated after completion grants.
	CollectorThreshold int
}

// DefaultProgressionConfig returns the production policy.
func DefaultProgressionConfig() ProgressionConfig {
	return ProgressionConfig{
		EnforceGeofence:    true,
		RequireActiveRun:   true,
		SpeedBadgeSeconds:  1800,
		CollectorThreshold: 5,
	}
}

// Coordinates is an optional client-reported position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AttemptResult summarizes one submission.
type AttemptResult struct {
	WasCorrect        bool           `json:"was_correct"`
	AttemptsUsed      int            `json:"attempts_used"`
	AttemptsRemaining *int           `json:"attempts_remaining,omitempty"` // nil when unbounded
	NextCheckpointID  *uint          `json:"next_checkpoint_id,omitempty"`
	Finished          bool           `json:"finished"`
	BadgesAwarded     []models.Badge `json:"badges_awarded"`
}

// RunSummary is handed to the completion notifier.
type RunSummary struct {
	Username         string
	HuntTitle        string
	CompletedAt      time.Time
	TotalTimeSeconds int
}

// Notifier delivers completion notices. Best-effort: failures are logged by
// the engine and never surfaced to the player.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, userID, huntID uint, summary RunSummary) error
}

// Progression is the engine. Safe for concurrent use; each SubmitAttempt call
// is an independent unit of work.
type Progression struct {
	db       *gorm.DB
	cfg      ProgressionConfig
	notifier Notifier

	// Injection points for tests.
	now      func() time.Time
	newStore func(tx *gorm.DB) ProgressionStore
}

// NewProgression builds an engine on the given connection. notifier may be
// nil.
func NewProgression(db *gorm.DB, cfg ProgressionConfig, notifier Notifier) *Progression {
	return &Progression{
		db:       db,
		cfg:      cfg,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		newStore: NewGormStore,
	}
}

// SubmitAttempt processes one answer submission for a checkpoint of the run.
// coords is optional. Returns a typed error (see errors.go) on rejection; a
// rejection leaves durable state unchanged.
func (p *Progression) SubmitAttempt(runID, checkpointID uint, answer string, coords *Coordinates) (*AttemptResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	var result AttemptResult
	var completion *runCompletion

	err := p.db.Transaction(func(tx *gorm.DB) error {
		store := p.newStore(tx)

		run, err := store.GetRun(runID)
		if err != nil {
			return err
		}
		cp, err := store.GetCheckpoint(checkpointID)
		if err != nil {
			return err
		}
		if cp.HuntID != run.HuntID {
			return ErrMismatchedHunt
		}
		if p.cfg.RequireActiveRun && run.Status != models.RunStatusActive {
			return ErrRunClosed
		}

		now := p.now()

		// Backstop for runs joined before startedAt was recorded.
		if run.StartedAt.IsZero() {
			run.StartedAt = now
			if err := store.SaveRun(run); err != nil {
				return err
			}
		}

		progress, err := store.GetOrCreateProgress(run.ID, cp.ID)
		if err != nil {
			return err
		}

		// The cap is a true limit: a capped submission is rejected before
		// anything is written, so it is never logged or counted.
		if cp.MaxAttempts != nil && progress.AttemptsCount >= *cp.MaxAttempts {
			return ErrAttemptLimit
		}

		wasCorrect := normalizeAnswer(answer) == normalizeAnswer(cp.Answer)

		if p.cfg.EnforceGeofence && cp.HasGeofence() && coords != nil {
			distance := Haversine(coords.Lat, coords.Lng, *cp.Lat, *cp.Lng)
			if distance > *cp.ToleranceRadius {
				return ErrOutOfRange
			}
		}

		attempt := &models.CheckpointAttempt{
			RunID:           run.ID,
			UserID:          run.UserID,
			CheckpointID:    cp.ID,
			SubmittedAnswer: answer,
			WasCorrect:      wasCorrect,
			CreatedAt:       now,
		}
		if coords != nil {
			attempt.Lat = &coords.Lat
			attempt.Lng = &coords.Lng
		}
		if err := store.AppendAttempt(attempt); err != nil {
			return err
		}

		progress.AttemptsCount++
		progress.LastAttemptAt = &now
		if coords != nil {
			progress.Lat = &coords.Lat
			progress.Lng = &coords.Lng
		}

		wasFirstSolve := wasCorrect && progress.SolvedAt == nil
		firstSolveInRun := false
		if wasFirstSolve {
			// Counted before this row is saved, so zero means no checkpoint
			// in the run has been solved yet.
			solved, err := store.SolvedCountInRun(run.ID)
			if err != nil {
				return err
			}
			firstSolveInRun = solved == 0

			solvedAt := now
			progress.SolvedAt = &solvedAt
		}

		if err := store.SaveProgress(progress); err != nil {
			return err
		}

		result = AttemptResult{
			WasCorrect:    wasCorrect,
			AttemptsUsed:  progress.AttemptsCount,
			BadgesAwarded: []models.Badge{},
		}
		if cp.MaxAttempts != nil {
			remaining := *cp.MaxAttempts - progress.AttemptsCount
			if remaining < 0 {
				remaining = 0
			}
			result.AttemptsRemaining = &remaining
		}

		if wasFirstSolve {
			if err := p.grantCheckpointBadges(store, run.UserID, cp.ID, &result); err != nil {
				return err
			}
			if firstSolveInRun {
				if err := p.grantByKey(store, run.UserID, models.BadgeKeyTrailblazer, &result); err != nil {
					return err
				}
			}
		}

		if !wasCorrect {
			return nil
		}

		next, err := store.NextCheckpoint(cp.HuntID, cp.Position)
		if err != nil {
			return err
		}
		if next != nil {
			nextID := next.ID
			result.NextCheckpointID = &nextID
			return nil
		}

		// Last checkpoint solved: finalize the run.
		completedAt := now
		run.Status = models.RunStatusCompleted
		run.CompletedAt = &completedAt
		totalSeconds := int(completedAt.Sub(run.StartedAt).Seconds())
		if totalSeconds < 0 {
			totalSeconds = 0
		}
		run.TotalTimeSeconds = &totalSeconds
		if err := store.SaveRun(run); err != nil {
			return err
		}
		result.Finished = true

		if err := p.grantCompletionBadges(store, run, &result); err != nil {
			return err
		}

		summary, err := p.buildSummary(store, run)
		if err != nil {
			return err
		}
		completion = &runCompletion{userID: run.UserID, huntID: run.HuntID, summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completion != nil && p.notifier != nil {
		if err := p.notifier.NotifyRunCompleted(context.Background(), completion.userID, completion.huntID, completion.summary); err != nil {
			log.Printf("hunt completion notification failed (non-blocking): %v", err)
		}
	}

	return &result, nil
}

type runCompletion struct {
	userID  uint
	huntID  uint
	summary RunSummary
}

// grantCompletionBadges evaluates the derived rules against the finalized run.
func (p *Progression) grantCompletionBadges(store ProgressionStore, run *models.PlayerRun, result *AttemptResult) error {
	if err := p.grantByKey(store, run.UserID, models.BadgeKeyPathfinder, result); err != nil {
		return err
	}

	if run.TotalTimeSeconds != nil && *run.TotalTimeSeconds <= p.cfg.SpeedBadgeSeconds {
		if err := p.grantByKey(store, run.UserID, models.BadgeKeySpeedrunner, result); err != nil {
			return err
		}
	}

	count, err := store.CountBadges(run.UserID)
	if err != nil {
		return err
	}
	if count >= int64(p.cfg.CollectorThreshold) {
		if err := p.grantByKey(store, run.UserID, models.BadgeKeyCollector, result); err != nil {
			return err
		}
	}
	return nil
}

func (p *Progression) grantCheckpointBadges(store ProgressionStore, userID, checkpointID uint, result *AttemptResult) error {
	badges, err := store.BadgesByCheckpoint(checkpointID)
	if err != nil {
		return err
	}
	for _, badge := range badges {
		granted, err := store.GrantBadgeIfAbsent(userID, badge.ID)
		if err != nil {
			return err
		}
		if granted {
			result.BadgesAwarded = append(result.BadgesAwarded, badge)
		}
	}
	return nil
}

// grantByKey grants a derived badge if it is seeded and not yet held. A
// missing key is skipped silently so environments without the seed data still
// play fine.
func (p *Progression) grantByKey(store ProgressionStore, userID uint, key string, result *AttemptResult) error {
	badge, err := store.BadgeByKey(key)
	if err != nil {
		return err
	}
	if badge == nil {
		return nil
	}
	granted, err := store.GrantBadgeIfAbsent(userID, badge.ID)
	if err != nil {
		return err
	}
	if granted {
		result.BadgesAwarded = append(result.BadgesAwarded, *badge)
	}
	return nil
}

func (p *Progression) buildSummary(store ProgressionStore, run *models.PlayerRun) (RunSummary, error) {
	summary := RunSummary{}
	if run.CompletedAt != nil {
		summary.CompletedAt = *run.CompletedAt
	}
	if run.TotalTimeSeconds != nil {
		summary.TotalTimeSeconds = *run.TotalTimeSeconds
	}

	user, err := store.GetUser(run.UserID)
	if err != nil {
		return summary, err
	}
	summary.Username = user.Username

	hunt, err := store.GetHunt(run.HuntID)
	if err != nil {
		return summary, err
	}
	summary.HuntTitle = hunt.Title
	return summary, nil
}

// normalizeAnswer makes matching case- and whitespace-insensitive.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
