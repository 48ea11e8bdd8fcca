package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"sidequest/database"
	"sidequest/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:progression_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type fixture struct {
	db   *gorm.DB
	user models.User
	hunt models.Hunt
	cps  []models.Checkpoint
	run  models.PlayerRun
}

// newFixture seeds a user, a three-checkpoint hunt and an active run started
// at startedAt.
func newFixture(t *testing.T, db *gorm.DB, startedAt time.Time) *fixture {
	t.Helper()

	f := &fixture{db: db}

	f.user = models.User{Username: "scout", Role: "player"}
	if err := db.Create(&f.user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	f.hunt = models.Hunt{Title: "Midtown Tutorial", IsPublished: true, IsActive: true}
	if err := db.Create(&f.hunt).Error; err != nil {
		t.Fatalf("create hunt: %v", err)
	}

	lat, lng, tolerance := 40.7484, -73.9857, 50.0
	f.cps = []models.Checkpoint{
		{HuntID: f.hunt.ID, Position: 1, Title: "The Start", Riddle: "Say the word.", Answer: "ready"},
		{HuntID: f.hunt.ID, Position: 2, Title: "Green Corner", Riddle: "Benches and a pond.", Answer: "park", Lat: &lat, Lng: &lng, ToleranceRadius: &tolerance},
		{HuntID: f.hunt.ID, Position: 3, Title: "Water Feature", Riddle: "Coins sleep here.", Answer: "fountain"},
	}
	if err := db.Create(&f.cps).Error; err != nil {
		t.Fatalf("create checkpoints: %v", err)
	}

	f.run = models.PlayerRun{
		UserID:    f.user.ID,
		HuntID:    f.hunt.ID,
		Status:    models.RunStatusActive,
		StartedAt: startedAt,
	}
	if err := db.Create(&f.run).Error; err != nil {
		t.Fatalf("create run: %v", err)
	}
	return f
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newEngine builds an engine with a controllable clock.
func newEngine(db *gorm.DB, cfg ProgressionConfig) (*Progression, *time.Time) {
	now := t0
	eng := NewProgression(db, cfg, nil)
	eng.now = func() time.Time { return now }
	return eng, &now
}

func (f *fixture) attemptCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.CheckpointAttempt{}).Where("run_id = ?", f.run.ID).Count(&n).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	return n
}

func (f *fixture) reloadRun(t *testing.T) models.PlayerRun {
	t.Helper()
	var run models.PlayerRun
	if err := f.db.First(&run, f.run.ID).Error; err != nil {
		t.Fatalf("reload run: %v", err)
	}
	return run
}

func (f *fixture) badgeKeys(t *testing.T) map[string]bool {
	t.Helper()
	var earned []models.UserBadge
	if err := f.db.Preload("Badge").Where("user_id = ?", f.user.ID).Find(&earned).Error; err != nil {
		t.Fatalf("load badges: %v", err)
	}
	keys := map[string]bool{}
	for _, ub := range earned {
		keys[ub.Badge.Key] = true
	}
	return keys
}

func TestSubmitAttemptCorrectAnswerAdvances(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	result, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if !result.WasCorrect {
		t.Error("expected correct answer")
	}
	if result.Finished {
		t.Error("run should not be finished after the first checkpoint")
	}
	if result.NextCheckpointID == nil || *result.NextCheckpointID != f.cps[1].ID {
		t.Errorf("NextCheckpointID = %v, want %d", result.NextCheckpointID, f.cps[1].ID)
	}

	var progress models.CheckpointProgress
	if err := db.Where("run_id = ? AND checkpoint_id = ?", f.run.ID, f.cps[0].ID).First(&progress).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if progress.SolvedAt == nil {
		t.Error("SolvedAt should be set after a correct answer")
	}
	if progress.AttemptsCount != 1 {
		t.Errorf("AttemptsCount = %d, want 1", progress.AttemptsCount)
	}
	if got := f.attemptCount(t); got != 1 {
		t.Errorf("attempt rows = %d, want 1", got)
	}
}

func TestSubmitAttemptNormalizesAnswers(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	for _, answer := range []string{" Ready ", "READY", "ready"} {
		db2 := newTestDB(t)
		f2 := newFixture(t, db2, t0)
		eng2, _ := newEngine(db2, DefaultProgressionConfig())

		result, err := eng2.SubmitAttempt(f2.run.ID, f2.cps[0].ID, answer, nil)
		if err != nil {
			t.Fatalf("SubmitAttempt(%q): %v", answer, err)
		}
		if !result.WasCorrect {
			t.Errorf("answer %q should match %q", answer, "ready")
		}
	}

	// Stored attempt keeps the trimmed submission, not the normalized form.
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "  READY  ", nil); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	var attempt models.CheckpointAttempt
	if err := db.Where("run_id = ?", f.run.ID).First(&attempt).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if attempt.SubmittedAnswer != "READY" {
		t.Errorf("SubmittedAnswer = %q, want %q", attempt.SubmittedAnswer, "READY")
	}
}

func TestSubmitAttemptIncorrectAnswer(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	for i := 1; i <= 3; i++ {
		result, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "wrong", nil)
		if err != nil {
			t.Fatalf("SubmitAttempt #%d: %v", i, err)
		}
		if result.WasCorrect {
			t.Fatal("wrong answer reported correct")
		}
		if result.AttemptsUsed != i {
			t.Errorf("AttemptsUsed = %d, want %d", result.AttemptsUsed, i)
		}
		if result.NextCheckpointID != nil {
			t.Error("wrong answer must not advance the run")
		}
	}

	var progress models.CheckpointProgress
	if err := db.Where("run_id = ? AND checkpoint_id = ?", f.run.ID, f.cps[0].ID).First(&progress).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if progress.SolvedAt != nil {
		t.Error("SolvedAt must stay nil for wrong answers")
	}
	if got := f.attemptCount(t); got != 3 {
		t.Errorf("attempt rows = %d, want 3", got)
	}
}

func TestSubmitAttemptEmptyAnswer(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	for _, answer := range []string{"", "   ", "\t\n"} {
		_, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, answer, nil)
		if !errors.Is(err, ErrEmptyAnswer) {
			t.Errorf("SubmitAttempt(%q) = %v, want ErrEmptyAnswer", answer, err)
		}
	}
	if got := f.attemptCount(t); got != 0 {
		t.Errorf("attempt rows = %d, want 0", got)
	}
}

func TestSubmitAttemptUnknownRunAndCheckpoint(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	if _, err := eng.SubmitAttempt(9999, f.cps[0].ID, "ready", nil); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("unknown run: err = %v, want ErrRunNotFound", err)
	}
	if _, err := eng.SubmitAttempt(f.run.ID, 9999, "ready", nil); !errors.Is(err, ErrCheckpointNotFound) {
		t.Errorf("unknown checkpoint: err = %v, want ErrCheckpointNotFound", err)
	}
}

func TestSubmitAttemptMismatchedHunt(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	other := models.Hunt{Title: "Other Hunt", IsPublished: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create hunt: %v", err)
	}
	foreign := models.Checkpoint{HuntID: other.ID, Position: 1, Title: "Elsewhere", Riddle: "?", Answer: "x"}
	if err := db.Create(&foreign).Error; err != nil {
		t.Fatalf("create checkpoint: %v", err)
	}

	if _, err := eng.SubmitAttempt(f.run.ID, foreign.ID, "x", nil); !errors.Is(err, ErrMismatchedHunt) {
		t.Errorf("err = %v, want ErrMismatchedHunt", err)
	}
	if got := f.attemptCount(t); got != 0 {
		t.Errorf("attempt rows = %d, want 0", got)
	}
}

func TestSubmitAttemptClosedRun(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	if err := db.Model(&models.PlayerRun{}).Where("id = ?", f.run.ID).
		Update("status", models.RunStatusCompleted).Error; err != nil {
		t.Fatalf("close run: %v", err)
	}

	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); !errors.Is(err, ErrRunClosed) {
		t.Errorf("err = %v, want ErrRunClosed", err)
	}

	// With enforcement off, a closed run still takes attempts.
	cfg := DefaultProgressionConfig()
	cfg.RequireActiveRun = false
	relaxed, _ := newEngine(db, cfg)
	if _, err := relaxed.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); err != nil {
		t.Errorf("relaxed engine rejected attempt: %v", err)
	}
}

func TestSubmitAttemptCapEnforced(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	maxAttempts := 2
	if err := db.Model(&models.Checkpoint{}).Where("id = ?", f.cps[0].ID).
		Update("max_attempts", maxAttempts).Error; err != nil {
		t.Fatalf("set cap: %v", err)
	}

	for i := 1; i <= maxAttempts; i++ {
		result, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "wrong", nil)
		if err != nil {
			t.Fatalf("SubmitAttempt #%d: %v", i, err)
		}
		if result.AttemptsRemaining == nil || *result.AttemptsRemaining != maxAttempts-i {
			t.Errorf("AttemptsRemaining = %v, want %d", result.AttemptsRemaining, maxAttempts-i)
		}
	}

	// The capped submission is rejected before anything is written.
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); !errors.Is(err, ErrAttemptLimit) {
		t.Fatalf("err = %v, want ErrAttemptLimit", err)
	}
	if got := f.attemptCount(t); got != int64(maxAttempts) {
		t.Errorf("attempt rows = %d, want %d", got, maxAttempts)
	}

	var progress models.CheckpointProgress
	if err := db.Where("run_id = ? AND checkpoint_id = ?", f.run.ID, f.cps[0].ID).First(&progress).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if progress.AttemptsCount != maxAttempts {
		t.Errorf("AttemptsCount = %d, want %d", progress.AttemptsCount, maxAttempts)
	}
}

func TestSubmitAttemptGeofence(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	fenced := f.cps[1] // 50m tolerance around 40.7484,-73.9857

	// Roughly 200m north of the checkpoint.
	far := &Coordinates{Lat: 40.7502, Lng: -73.9857}
	if _, err := eng.SubmitAttempt(f.run.ID, fenced.ID, "park", far); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if got := f.attemptCount(t); got != 0 {
		t.Errorf("out-of-range submission wrote %d attempt rows, want 0", got)
	}

	// Inside the fence.
	near := &Coordinates{Lat: 40.74842, Lng: -73.98572}
	result, err := eng.SubmitAttempt(f.run.ID, fenced.ID, "park", near)
	if err != nil {
		t.Fatalf("SubmitAttempt inside fence: %v", err)
	}
	if !result.WasCorrect {
		t.Error("in-range correct answer rejected")
	}

	// No coordinates sent: the fence does not apply.
	db2 := newTestDB(t)
	f2 := newFixture(t, db2, t0)
	eng2, _ := newEngine(db2, DefaultProgressionConfig())
	if _, err := eng2.SubmitAttempt(f2.run.ID, f2.cps[1].ID, "park", nil); err != nil {
		t.Errorf("attempt without coordinates rejected: %v", err)
	}
}

func TestSubmitAttemptGeofenceDisabled(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)

	cfg := DefaultProgressionConfig()
	cfg.EnforceGeofence = false
	eng, _ := newEngine(db, cfg)

	far := &Coordinates{Lat: 41.0, Lng: -74.5}
	result, err := eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "park", far)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if !result.WasCorrect {
		t.Error("correct answer rejected with geofence disabled")
	}
}

func TestSubmitAttemptCheckpointBadgeGrantedOnce(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())

	cpID := f.cps[0].ID
	badge := models.Badge{Key: "first-steps", Title: "First Steps", CheckpointID: &cpID}
	if err := db.Create(&badge).Error; err != nil {
		t.Fatalf("create badge: %v", err)
	}

	result, err := eng.SubmitAttempt(f.run.ID, cpID, "ready", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	// First solve grants the checkpoint badge and the first-solve badge.
	got := map[string]bool{}
	for _, b := range result.BadgesAwarded {
		got[b.Key] = true
	}
	if !got["first-steps"] {
		t.Error("checkpoint badge not awarded on first solve")
	}
	if !got[models.BadgeKeyTrailblazer] {
		t.Error("trailblazer badge not awarded for the first solve in a run")
	}

	// Solving again awards nothing new.
	again, err := eng.SubmitAttempt(f.run.ID, cpID, "ready", nil)
	if err != nil {
		t.Fatalf("SubmitAttempt again: %v", err)
	}
	if len(again.BadgesAwarded) != 0 {
		t.Errorf("re-solve awarded %d badges, want 0", len(again.BadgesAwarded))
	}

	var grants int64
	db.Model(&models.UserBadge{}).Where("user_id = ?", f.user.ID).Count(&grants)
	if grants != 2 {
		t.Errorf("grant rows = %d, want 2", grants)
	}

	var user models.User
	if err := db.First(&user, f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.BadgeCount != 2 {
		t.Errorf("cached BadgeCount = %d, want 2", user.BadgeCount)
	}
}

func TestSubmitAttemptCompletesRun(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, now := newEngine(db, DefaultProgressionConfig())

	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); err != nil {
		t.Fatalf("checkpoint 1: %v", err)
	}
	*now = t0.Add(60 * time.Second)
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "park", nil); err != nil {
		t.Fatalf("checkpoint 2: %v", err)
	}

	*now = t0.Add(125 * time.Second)
	result, err := eng.SubmitAttempt(f.run.ID, f.cps[2].ID, "fountain", nil)
	if err != nil {
		t.Fatalf("checkpoint 3: %v", err)
	}
	if !result.Finished {
		t.Fatal("run should be finished after the last checkpoint")
	}
	if result.NextCheckpointID != nil {
		t.Error("finished run must not advertise a next checkpoint")
	}

	run := f.reloadRun(t)
	if run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %q, want %q", run.Status, models.RunStatusCompleted)
	}
	if run.CompletedAt == nil || !run.CompletedAt.Equal(t0.Add(125*time.Second)) {
		t.Errorf("CompletedAt = %v, want %v", run.CompletedAt, t0.Add(125*time.Second))
	}
	if run.TotalTimeSeconds == nil || *run.TotalTimeSeconds != 125 {
		t.Errorf("TotalTimeSeconds = %v, want 125", run.TotalTimeSeconds)
	}

	keys := f.badgeKeys(t)
	if !keys[models.BadgeKeyPathfinder] {
		t.Error("pathfinder badge not granted on completion")
	}
	if !keys[models.BadgeKeySpeedrunner] {
		t.Error("speedrunner badge not granted for a 125s run")
	}

	// The run is terminal now.
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); !errors.Is(err, ErrRunClosed) {
		t.Errorf("attempt on completed run: err = %v, want ErrRunClosed", err)
	}
}

func TestSubmitAttemptSlowRunSkipsSpeedBadge(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, now := newEngine(db, DefaultProgressionConfig())

	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); err != nil {
		t.Fatalf("checkpoint 1: %v", err)
	}
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "park", nil); err != nil {
		t.Fatalf("checkpoint 2: %v", err)
	}

	*now = t0.Add(2 * time.Hour)
	result, err := eng.SubmitAttempt(f.run.ID, f.cps[2].ID, "fountain", nil)
	if err != nil {
		t.Fatalf("checkpoint 3: %v", err)
	}
	if !result.Finished {
		t.Fatal("run should be finished")
	}

	keys := f.badgeKeys(t)
	if !keys[models.BadgeKeyPathfinder] {
		t.Error("pathfinder badge missing")
	}
	if keys[models.BadgeKeySpeedrunner] {
		t.Error("speedrunner badge granted for a two-hour run")
	}
}

func TestSubmitAttemptCollectorBadge(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)

	cfg := DefaultProgressionConfig()
	cfg.CollectorThreshold = 3
	eng, _ := newEngine(db, cfg)

	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); err != nil {
		t.Fatalf("checkpoint 1: %v", err)
	}
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "park", nil); err != nil {
		t.Fatalf("checkpoint 2: %v", err)
	}
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[2].ID, "fountain", nil); err != nil {
		t.Fatalf("checkpoint 3: %v", err)
	}

	// trailblazer + pathfinder + speedrunner reach the threshold of 3.
	keys := f.badgeKeys(t)
	if !keys[models.BadgeKeyCollector] {
		t.Error("collector badge not granted at the configured threshold")
	}
}

// failingStore wraps the real store and fails the badge grant, exercising the
// all-or-nothing transaction.
type failingStore struct {
	ProgressionStore
}

func (s *failingStore) GrantBadgeIfAbsent(userID, badgeID uint) (bool, error) {
	return false, errors.New("storage failure")
}

func TestSubmitAttemptRollsBackOnGrantFailure(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, _ := newEngine(db, DefaultProgressionConfig())
	eng.newStore = func(tx *gorm.DB) ProgressionStore {
		return &failingStore{ProgressionStore: NewGormStore(tx)}
	}

	_, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil)
	if err == nil {
		t.Fatal("expected the grant failure to surface")
	}

	// Nothing from the attempt survives: no attempt row, no progress, no
	// grants, run untouched.
	if got := f.attemptCount(t); got != 0 {
		t.Errorf("attempt rows = %d, want 0", got)
	}
	var progressRows int64
	db.Model(&models.CheckpointProgress{}).Where("run_id = ?", f.run.ID).Count(&progressRows)
	if progressRows != 0 {
		t.Errorf("progress rows = %d, want 0", progressRows)
	}
	var grants int64
	db.Model(&models.UserBadge{}).Where("user_id = ?", f.user.ID).Count(&grants)
	if grants != 0 {
		t.Errorf("grant rows = %d, want 0", grants)
	}
	if run := f.reloadRun(t); run.Status != models.RunStatusActive {
		t.Errorf("run status = %q, want %q", run.Status, models.RunStatusActive)
	}
}

type recordingNotifier struct {
	calls     int
	lastUser  uint
	lastHunt  uint
	summary   RunSummary
	returnErr error
}

func (n *recordingNotifier) NotifyRunCompleted(_ context.Context, userID, huntID uint, summary RunSummary) error {
	n.calls++
	n.lastUser = userID
	n.lastHunt = huntID
	n.summary = summary
	return n.returnErr
}

func TestSubmitAttemptNotifiesOnCompletion(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)

	notifier := &recordingNotifier{}
	eng := NewProgression(db, DefaultProgressionConfig(), notifier)
	now := t0
	eng.now = func() time.Time { return now }

	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); err != nil {
		t.Fatalf("checkpoint 1: %v", err)
	}
	if notifier.calls != 0 {
		t.Error("notifier fired before completion")
	}
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "park", nil); err != nil {
		t.Fatalf("checkpoint 2: %v", err)
	}

	now = t0.Add(10 * time.Minute)
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[2].ID, "fountain", nil); err != nil {
		t.Fatalf("checkpoint 3: %v", err)
	}

	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}
	if notifier.lastUser != f.user.ID || notifier.lastHunt != f.hunt.ID {
		t.Errorf("notified user=%d hunt=%d, want user=%d hunt=%d",
			notifier.lastUser, notifier.lastHunt, f.user.ID, f.hunt.ID)
	}
	if notifier.summary.Username != "scout" || notifier.summary.HuntTitle != "Midtown Tutorial" {
		t.Errorf("summary = %+v", notifier.summary)
	}
	if notifier.summary.TotalTimeSeconds != 600 {
		t.Errorf("summary TotalTimeSeconds = %d, want 600", notifier.summary.TotalTimeSeconds)
	}
}

func TestSubmitAttemptNotifierFailureIsNonBlocking(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)

	notifier := &recordingNotifier{returnErr: errors.New("smtp down")}
	eng := NewProgression(db, DefaultProgressionConfig(), notifier)
	eng.now = func() time.Time { return t0 }

	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "ready", nil); err != nil {
		t.Fatalf("checkpoint 1: %v", err)
	}
	if _, err := eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "park", nil); err != nil {
		t.Fatalf("checkpoint 2: %v", err)
	}
	result, err := eng.SubmitAttempt(f.run.ID, f.cps[2].ID, "fountain", nil)
	if err != nil {
		t.Fatalf("checkpoint 3: %v", err)
	}
	if !result.Finished {
		t.Error("notifier failure must not undo completion")
	}
	if run := f.reloadRun(t); run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %q, want %q", run.Status, models.RunStatusCompleted)
	}
}

// TestSubmitAttemptFullScenario walks the tutorial hunt end to end the way a
// player would: a sloppy first answer, a wrong guess, a geofenced stop, and a
// finish at the ten-minute mark.
func TestSubmitAttemptFullScenario(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, t0)
	eng, now := newEngine(db, DefaultProgressionConfig())

	result, err := eng.SubmitAttempt(f.run.ID, f.cps[0].ID, "Ready ", nil)
	if err != nil || !result.WasCorrect {
		t.Fatalf("checkpoint 1: result=%+v err=%v", result, err)
	}

	*now = t0.Add(3 * time.Minute)
	result, err = eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "pond", &Coordinates{Lat: 40.7484, Lng: -73.9857})
	if err != nil {
		t.Fatalf("wrong guess: %v", err)
	}
	if result.WasCorrect {
		t.Fatal("'pond' should not match 'park'")
	}

	result, err = eng.SubmitAttempt(f.run.ID, f.cps[1].ID, "PARK", &Coordinates{Lat: 40.7484, Lng: -73.9857})
	if err != nil || !result.WasCorrect {
		t.Fatalf("checkpoint 2: result=%+v err=%v", result, err)
	}
	if result.AttemptsUsed != 2 {
		t.Errorf("AttemptsUsed = %d, want 2", result.AttemptsUsed)
	}

	*now = t0.Add(10 * time.Minute)
	result, err = eng.SubmitAttempt(f.run.ID, f.cps[2].ID, "fountain", nil)
	if err != nil {
		t.Fatalf("checkpoint 3: %v", err)
	}
	if !result.Finished {
		t.Fatal("run should be finished")
	}

	run := f.reloadRun(t)
	if run.TotalTimeSeconds == nil || *run.TotalTimeSeconds != 600 {
		t.Errorf("TotalTimeSeconds = %v, want 600", run.TotalTimeSeconds)
	}

	keys := f.badgeKeys(t)
	for _, key := range []string{models.BadgeKeyTrailblazer, models.BadgeKeyPathfinder, models.BadgeKeySpeedrunner} {
		if !keys[key] {
			t.Errorf("badge %q not granted", key)
		}
	}

	if got := f.attemptCount(t); got != 4 {
		t.Errorf("attempt rows = %d, want 4", got)
	}
}
