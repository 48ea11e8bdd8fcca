// handlers/hunts.go - Hunt authoring and discovery
package handlers

import (
	"strconv"

	"sidequest/database"
	"sidequest/middleware"
	"sidequest/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateHuntRequest struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	CoverURL    string                    `json:"cover_url"`
	IsPublished bool                      `json:"is_published"`
	Checkpoints []CreateCheckpointRequest `json:"checkpoints"`
}

type CreateCheckpointRequest struct {
	HuntID          uint     `json:"hunt_id"`
	Position        int      `json:"position"`
	Title           string   `json:"title"`
	Riddle          string   `json:"riddle"`
	Answer          string   `json:"answer"`
	Hint            string   `json:"hint"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	ToleranceRadius *float64 `json:"tolerance_radius"`
	MaxAttempts     *int     `json:"max_attempts"`
}

// CreateHunt creates a hunt together with its ordered checkpoints
func CreateHunt(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateHuntRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}
	if len(req.Checkpoints) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "At least one checkpoint is required"})
	}
	for _, cp := range req.Checkpoints {
		if cp.Title == "" || cp.Riddle == "" || cp.Answer == "" {
			return c.Status(400).JSON(fiber.Map{"error": "Each checkpoint needs title, riddle, answer"})
		}
	}

	db := database.GetDB()

	var hunt models.Hunt
	err = db.Transaction(func(tx *gorm.DB) error {
		hunt = models.Hunt{
			CreatorID:   &userID,
			Title:       req.Title,
			Description: req.Description,
			CoverURL:    req.CoverURL,
			IsPublished: req.IsPublished,
			IsActive:    true,
		}
		if err := tx.Create(&hunt).Error; err != nil {
			return err
		}

		checkpoints := make([]models.Checkpoint, 0, len(req.Checkpoints))
		for i, cp := range req.Checkpoints {
			position := cp.Position
			if position <= 0 {
				position = i + 1
			}
			checkpoints = append(checkpoints, models.Checkpoint{
				HuntID:          hunt.ID,
				Position:        position,
				Title:           cp.Title,
				Riddle:          cp.Riddle,
				Answer:          cp.Answer,
				Hint:            cp.Hint,
				Lat:             cp.Lat,
				Lng:             cp.Lng,
				ToleranceRadius: cp.ToleranceRadius,
				MaxAttempts:     cp.MaxAttempts,
			})
		}
		return tx.Create(&checkpoints).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "Duplicate checkpoint position"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create hunt"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "id": hunt.ID})
}

// GetHunts lists published active hunts
func GetHunts(c *fiber.Ctx) error {
	db := database.GetDB()

	var hunts []models.Hunt
	if err := db.Where("is_published = ? AND is_active = ?", true, true).
		Order("created_at DESC").
		Find(&hunts).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load hunts"})
	}

	return c.JSON(fiber.Map{"success": true, "hunts": hunts})
}

// GetHunt returns a hunt with its checkpoints in play order (answers withheld)
func GetHunt(c *fiber.Ctx) error {
	huntID, err := strconv.Atoi(c.Params("id"))
	if err != nil || huntID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid hunt id"})
	}

	db := database.GetDB()

	var hunt models.Hunt
	if err := db.First(&hunt, huntID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Hunt not found"})
	}

	var checkpoints []models.Checkpoint
	if err := db.Where("hunt_id = ?", hunt.ID).
		Order("position ASC").
		Find(&checkpoints).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load checkpoints"})
	}

	views := make([]fiber.Map, 0, len(checkpoints))
	for i := range checkpoints {
		views = append(views, checkpointView(&checkpoints[i]))
	}

	return c.JSON(fiber.Map{"success": true, "hunt": hunt, "checkpoints": views})
}

type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitFeedback stores a post-hunt rating
func SubmitFeedback(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	huntID, err := strconv.Atoi(c.Params("id"))
	if err != nil || huntID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid hunt id"})
	}

	var req FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.Status(400).JSON(fiber.Map{"error": "rating must be between 1 and 5"})
	}

	db := database.GetDB()

	var hunt models.Hunt
	if err := db.First(&hunt, huntID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Hunt not found"})
	}

	feedback := models.HuntFeedback{
		HuntID:  hunt.ID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := db.Create(&feedback).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to submit feedback"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true})
}
