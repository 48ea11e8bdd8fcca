// handlers/badges.go - Badge catalog and manual grants
package handlers

import (
	"strconv"

	"sidequest/database"
	"sidequest/models"
	"sidequest/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateBadgeRequest struct {
	Key          string `json:"key"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	CheckpointID *uint  `json:"checkpoint_id"`
}

// CreateBadge adds a badge to the catalog. Badges bound to a checkpoint are
// granted automatically on first solve; unbound ones are derived or manual.
func CreateBadge(c *fiber.Ctx) error {
	var req CreateBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Key == "" || req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "key and title are required"})
	}

	db := database.GetDB()

	if req.CheckpointID != nil {
		var cp models.Checkpoint
		if err := db.First(&cp, *req.CheckpointID).Error; err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Checkpoint not found"})
		}
	}

	badge := models.Badge{
		Key:          req.Key,
		Title:        req.Title,
		Description:  req.Description,
		Image:        req.Image,
		CheckpointID: req.CheckpointID,
	}
	if err := db.Create(&badge).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "Badge key already exists"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create badge"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "badge": badge})
}

// GetBadges lists the catalog, optionally filtered by hunt or checkpoint
func GetBadges(c *fiber.Ctx) error {
	db := database.GetDB()

	query := db.Model(&models.Badge{})

	if v := c.Query("checkpointId"); v != "" {
		checkpointID, err := strconv.Atoi(v)
		if err != nil || checkpointID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid checkpointId"})
		}
		query = query.Where("checkpoint_id = ?", checkpointID)
	}

	if v := c.Query("huntId"); v != "" {
		huntID, err := strconv.Atoi(v)
		if err != nil || huntID <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid huntId"})
		}
		query = query.Where(
			"checkpoint_id IN (?)",
			db.Model(&models.Checkpoint{}).Select("id").Where("hunt_id = ?", huntID),
		)
	}

	var badges []models.Badge
	if err := query.Order("id ASC").Find(&badges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load badges"})
	}

	return c.JSON(fiber.Map{"success": true, "badges": badges})
}

// GetUserBadges returns everything a user has earned, newest first
func GetUserBadges(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("userId"))
	if err != nil || userID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var earned []models.UserBadge
	if err := db.Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load badges"})
	}

	return c.JSON(fiber.Map{"success": true, "badges": earned, "count": len(earned)})
}

type GrantBadgeRequest struct {
	UserID  uint `json:"user_id"`
	BadgeID uint `json:"badge_id"`
}

// GrantBadge manually awards a badge (admin tooling). Idempotent: granting a
// held badge reports granted=false.
func GrantBadge(c *fiber.Ctx) error {
	var req GrantBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == 0 || req.BadgeID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "user_id and badge_id required"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, req.UserID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	var badge models.Badge
	if err := db.First(&badge, req.BadgeID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Badge not found"})
	}

	granted := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		granted, err = services.NewGormStore(tx).GrantBadgeIfAbsent(req.UserID, req.BadgeID)
		return err
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to grant badge"})
	}

	return c.JSON(fiber.Map{"success": true, "granted": granted})
}
