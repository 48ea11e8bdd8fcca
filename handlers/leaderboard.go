// handlers/leaderboard.go - Per-hunt completion standings
package handlers

import (
	"strconv"
	"time"

	"sidequest/database"
	"sidequest/models"

	"github.com/gofiber/fiber/v2"
)

type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	UserID           uint      `json:"user_id"`
	Username         string    `json:"username"`
	TotalTimeSeconds int       `json:"total_time_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

// GetHuntLeaderboard ranks completed runs of a hunt by total time, fastest
// first, ties broken by earlier completion.
func GetHuntLeaderboard(c *fiber.Ctx) error {
	huntID, err := strconv.Atoi(c.Params("id"))
	if err != nil || huntID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid hunt id"})
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	db := database.GetDB()

	var hunt models.Hunt
	if err := db.First(&hunt, huntID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Hunt not found"})
	}

	var runs []models.PlayerRun
	if err := db.Preload("User").
		Where("hunt_id = ? AND status = ?", hunt.ID, models.RunStatusCompleted).
		Order("total_time_seconds ASC, completed_at ASC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load leaderboard"})
	}

	entries := make([]LeaderboardEntry, 0, len(runs))
	for i, run := range runs {
		entry := LeaderboardEntry{
			Rank:   i + 1,
			UserID: run.UserID,
		}
		if run.User != nil {
			entry.Username = run.User.Username
		}
		if run.TotalTimeSeconds != nil {
			entry.TotalTimeSeconds = *run.TotalTimeSeconds
		}
		if run.CompletedAt != nil {
			entry.CompletedAt = *run.CompletedAt
		}
		entries = append(entries, entry)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"hunt_id":     hunt.ID,
		"hunt_title":  hunt.Title,
		"leaderboard": entries,
	})
}
