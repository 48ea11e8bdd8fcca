// handlers/checkpoints.go - Checkpoint authoring
package handlers

import (
	"strconv"
	"strings"

	"sidequest/database"
	"sidequest/models"

	"github.com/gofiber/fiber/v2"
)

// CreateCheckpoint appends a checkpoint to an existing hunt
func CreateCheckpoint(c *fiber.Ctx) error {
	var req CreateCheckpointRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.HuntID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "hunt_id is required"})
	}
	if req.Title == "" || req.Riddle == "" || req.Answer == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title, riddle and answer are required"})
	}
	if req.Position <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "position must be positive"})
	}

	db := database.GetDB()

	var hunt models.Hunt
	if err := db.First(&hunt, req.HuntID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Hunt not found"})
	}

	cp := models.Checkpoint{
		HuntID:          req.HuntID,
		Position:        req.Position,
		Title:           req.Title,
		Riddle:          req.Riddle,
		Answer:          req.Answer,
		Hint:            req.Hint,
		Lat:             req.Lat,
		Lng:             req.Lng,
		ToleranceRadius: req.ToleranceRadius,
		MaxAttempts:     req.MaxAttempts,
	}
	if err := db.Create(&cp).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "Position already taken in this hunt"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create checkpoint"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "id": cp.ID})
}

type UpdateCheckpointRequest struct {
	Position        *int     `json:"position"`
	Title           *string  `json:"title"`
	Riddle          *string  `json:"riddle"`
	Answer          *string  `json:"answer"`
	Hint            *string  `json:"hint"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	ToleranceRadius *float64 `json:"tolerance_radius"`
	MaxAttempts     *int     `json:"max_attempts"`
}

// UpdateCheckpoint patches the provided fields only
func UpdateCheckpoint(c *fiber.Ctx) error {
	checkpointID, err := strconv.Atoi(c.Params("id"))
	if err != nil || checkpointID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid checkpoint id"})
	}

	var req UpdateCheckpointRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := database.GetDB()

	var cp models.Checkpoint
	if err := db.First(&cp, checkpointID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Checkpoint not found"})
	}

	updates := map[string]interface{}{}
	if req.Position != nil {
		if *req.Position <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "position must be positive"})
		}
		updates["position"] = *req.Position
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Riddle != nil {
		updates["riddle"] = *req.Riddle
	}
	if req.Answer != nil {
		updates["answer"] = *req.Answer
	}
	if req.Hint != nil {
		updates["hint"] = *req.Hint
	}
	if req.Lat != nil {
		updates["lat"] = *req.Lat
	}
	if req.Lng != nil {
		updates["lng"] = *req.Lng
	}
	if req.ToleranceRadius != nil {
		updates["tolerance_radius"] = *req.ToleranceRadius
	}
	if req.MaxAttempts != nil {
		updates["max_attempts"] = *req.MaxAttempts
	}
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "No fields to update"})
	}

	if err := db.Model(&cp).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "Position already taken in this hunt"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update checkpoint"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteCheckpoint removes a checkpoint
func DeleteCheckpoint(c *fiber.Ctx) error {
	checkpointID, err := strconv.Atoi(c.Params("id"))
	if err != nil || checkpointID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid checkpoint id"})
	}

	db := database.GetDB()

	var cp models.Checkpoint
	if err := db.First(&cp, checkpointID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Checkpoint not found"})
	}

	if err := db.Delete(&cp).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete checkpoint"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// isUniqueViolation matches the driver-specific error text for unique index
// collisions (pgx 23505, sqlite "UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
