// handlers/play.go - The play surface: joining hunts and submitting answers
package handlers

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"sidequest/database"
	"sidequest/middleware"
	"sidequest/models"
	"sidequest/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var progression *services.Progression

// InitPlayHandlers wires the progression engine and its notifier. Called once
// from main after the database is up.
func InitPlayHandlers() {
	db := database.GetDB()

	cfg := services.DefaultProgressionConfig()
	if v := os.Getenv("GEOFENCE_ENFORCED"); v == "false" || v == "0" {
		cfg.EnforceGeofence = false
	}
	if v := os.Getenv("SPEED_BADGE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SpeedBadgeSeconds = n
		}
	}
	if v := os.Getenv("COLLECTOR_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CollectorThreshold = n
		}
	}

	notifier, err := services.NewEmailNotifier(
		db,
		getEnvOrDefault("AWS_REGION", "us-east-1"),
		os.Getenv("SES_FROM_EMAIL"),
		getEnvOrDefault("SES_FROM_NAME", "SideQuest"),
	)
	if err != nil {
		log.Printf("⚠️  Email notifier unavailable, continuing without it: %v", err)
		notifier = nil
	}

	if notifier != nil {
		progression = services.NewProgression(db, cfg, notifier)
	} else {
		progression = services.NewProgression(db, cfg, nil)
	}
	log.Println("✅ Progression engine initialized")
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// JoinHunt starts (or resumes) the caller's run for a hunt. A player has at
// most one run per hunt.
func JoinHunt(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	huntID, err := strconv.Atoi(c.Params("id"))
	if err != nil || huntID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid hunt id"})
	}

	db := database.GetDB()

	var hunt models.Hunt
	if err := db.First(&hunt, huntID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Hunt not found"})
	}
	if !hunt.IsPublished || !hunt.IsActive {
		return c.Status(403).JSON(fiber.Map{"error": "Hunt is not open for play"})
	}

	var run models.PlayerRun
	err = db.Where("user_id = ? AND hunt_id = ?", userID, hunt.ID).First(&run).Error
	if err == nil {
		// Resume the existing run rather than creating a duplicate.
		return c.JSON(fiber.Map{"success": true, "run": run, "resumed": true})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to look up run"})
	}

	run = models.PlayerRun{
		UserID:    userID,
		HuntID:    hunt.ID,
		Status:    models.RunStatusActive,
		StartedAt: time.Now().UTC(),
	}
	if err := db.Create(&run).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to join hunt"})
	}

	var first models.Checkpoint
	firstID := (*uint)(nil)
	if err := db.Where("hunt_id = ?", hunt.ID).Order("position ASC").First(&first).Error; err == nil {
		firstID = &first.ID
	}

	return c.Status(201).JSON(fiber.Map{
		"success":             true,
		"run":                 run,
		"first_checkpoint_id": firstID,
	})
}

// GetRun returns the caller's run with per-checkpoint progress.
func GetRun(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	runID, err := strconv.Atoi(c.Params("id"))
	if err != nil || runID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid run id"})
	}

	db := database.GetDB()

	var run models.PlayerRun
	if err := db.First(&run, runID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Run not found"})
	}
	if run.UserID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "Not your run"})
	}

	var progress []models.CheckpointProgress
	if err := db.Where("run_id = ?", run.ID).Find(&progress).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load progress"})
	}

	return c.JSON(fiber.Map{"success": true, "run": run, "progress": progress})
}

// GetPlayCheckpoint returns the player-facing view of a checkpoint. The answer
// never leaves the server.
func GetPlayCheckpoint(c *fiber.Ctx) error {
	checkpointID, err := strconv.Atoi(c.Params("id"))
	if err != nil || checkpointID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid checkpoint id"})
	}

	db := database.GetDB()

	var cp models.Checkpoint
	if err := db.First(&cp, checkpointID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Checkpoint not found"})
	}

	return c.JSON(fiber.Map{"success": true, "checkpoint": checkpointView(&cp)})
}

// checkpointView strips the answer from a checkpoint for play responses.
func checkpointView(cp *models.Checkpoint) fiber.Map {
	return fiber.Map{
		"id":               cp.ID,
		"hunt_id":          cp.HuntID,
		"position":         cp.Position,
		"title":            cp.Title,
		"riddle":           cp.Riddle,
		"hint":             cp.Hint,
		"lat":              cp.Lat,
		"lng":              cp.Lng,
		"tolerance_radius": cp.ToleranceRadius,
		"max_attempts":     cp.MaxAttempts,
	}
}

type AttemptRequest struct {
	RunID        uint                  `json:"run_id"`
	CheckpointID uint                  `json:"checkpoint_id"`
	Answer       string                `json:"answer"`
	Coords       *services.Coordinates `json:"coords,omitempty"`
}

// SubmitAttempt forwards one answer submission to the progression engine and
// translates its typed errors to HTTP statuses.
func SubmitAttempt(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req AttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.RunID == 0 || req.CheckpointID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "run_id and checkpoint_id required"})
	}

	db := database.GetDB()

	var run models.PlayerRun
	if err := db.First(&run, req.RunID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Run not found"})
	}
	if run.UserID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "Not your run"})
	}

	result, err := progression.SubmitAttempt(req.RunID, req.CheckpointID, req.Answer, req.Coords)
	if err != nil {
		return attemptError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "result": result})
}

// attemptError maps engine errors to status codes.
func attemptError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyAnswer):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrRunNotFound),
		errors.Is(err, services.ErrCheckpointNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMismatchedHunt),
		errors.Is(err, services.ErrRunClosed):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrOutOfRange):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAttemptLimit):
		return c.Status(429).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("attempt processing failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to process attempt"})
	}
}
