// handlers/users.go - Profiles and player activity views
package handlers

import (
	"strconv"

	"sidequest/database"
	"sidequest/middleware"
	"sidequest/models"

	"github.com/gofiber/fiber/v2"
)

// GetMe returns the authenticated user's profile
func GetMe(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "user": toUserInfo(user)})
}

type UpdateProfileRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar"`
}

// UpdateMe patches the caller's profile fields
func UpdateMe(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "No fields to update"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true, "user": toUserInfo(user)})
}

// GetUser returns a public profile
func GetUser(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil || userID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"avatar":      user.Avatar,
			"badge_count": user.BadgeCount,
			"created_at":  user.CreatedAt,
		},
	})
}

// GetUserHunts lists a user's runs with solved-checkpoint counts
func GetUserHunts(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil || userID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var runs []models.PlayerRun
	if err := db.Preload("Hunt").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load runs"})
	}

	views := make([]fiber.Map, 0, len(runs))
	for _, run := range runs {
		var solved int64
		db.Model(&models.CheckpointProgress{}).
			Where("run_id = ? AND solved_at IS NOT NULL", run.ID).
			Count(&solved)

		var total int64
		db.Model(&models.Checkpoint{}).
			Where("hunt_id = ?", run.HuntID).
			Count(&total)

		view := fiber.Map{
			"run":                run,
			"solved_checkpoints": solved,
			"total_checkpoints":  total,
		}
		if run.Hunt != nil {
			view["hunt_title"] = run.Hunt.Title
		}
		views = append(views, view)
	}

	return c.JSON(fiber.Map{"success": true, "hunts": views})
}

// GetUserOverview aggregates a player's lifetime stats
func GetUserOverview(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil || userID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var joined, completed, attempts, badges int64
	db.Model(&models.PlayerRun{}).Where("user_id = ?", userID).Count(&joined)
	db.Model(&models.PlayerRun{}).
		Where("user_id = ? AND status = ?", userID, models.RunStatusCompleted).
		Count(&completed)
	db.Model(&models.CheckpointAttempt{}).Where("user_id = ?", userID).Count(&attempts)
	db.Model(&models.UserBadge{}).Where("user_id = ?", userID).Count(&badges)

	return c.JSON(fiber.Map{
		"success": true,
		"overview": fiber.Map{
			"user_id":         user.ID,
			"username":        user.Username,
			"hunts_joined":    joined,
			"hunts_completed": completed,
			"total_attempts":  attempts,
			"badges_earned":   badges,
			"member_since":    user.CreatedAt,
		},
	})
}
