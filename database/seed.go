// database/seed.go - Baseline data the engine depends on, plus dev seed data
package database

import (
	"log"
	"sidequest/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureDerivedBadges creates the global badges the progression engine grants
// by key. Idempotent; existing rows are left untouched so titles can be
// customized without re-seeding.
func EnsureDerivedBadges(db *gorm.DB) error {
	badges := []models.Badge{
		{Key: models.BadgeKeyPathfinder, Title: "Pathfinder", Description: "Complete your first hunt."},
		{Key: models.BadgeKeySpeedrunner, Title: "Speedrunner", Description: "Complete a hunt in under 30 minutes."},
		{Key: models.BadgeKeyCollector, Title: "Badge Collector", Description: "Earn 5 badges."},
		{Key: models.BadgeKeyTrailblazer, Title: "Trailblazer", Description: "Solve the first checkpoint of a hunt."},
	}

	for i := range badges {
		var existing models.Badge
		err := db.Where("key = ?", badges[i].Key).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&badges[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedDemoData creates a couple of users and a small tutorial hunt. Intended
// for local development via cmd/seed.
func SeedDemoData(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{Username: "admin", FirstName: "admin", Password: string(hash), Role: "admin"},
		{Username: "scout", FirstName: "Scout", Password: string(hash), Role: "player"},
	}
	for i := range users {
		var existing models.User
		if err := db.Where("username = ?", users[i].Username).First(&existing).Error; err == nil {
			users[i] = existing
			continue
		}
		if err := db.Create(&users[i]).Error; err != nil {
			return err
		}
	}
	log.Printf("👤 Seeded %d users", len(users))

	var huntCount int64
	db.Model(&models.Hunt{}).Count(&huntCount)
	if huntCount > 0 {
		return nil
	}

	tolerance := 50.0
	lat, lng := 40.7484, -73.9857
	creatorID := users[0].ID
	hunt := models.Hunt{
		CreatorID:   &creatorID,
		Title:       "Midtown Tutorial",
		Description: "A short three-stop walk to learn the ropes.",
		IsPublished: true,
	}
	if err := db.Create(&hunt).Error; err != nil {
		return err
	}

	checkpoints := []models.Checkpoint{
		{HuntID: hunt.ID, Position: 1, Title: "The Start", Riddle: "Say the word when you are set.", Answer: "ready"},
		{HuntID: hunt.ID, Position: 2, Title: "Green Corner", Riddle: "Benches, pigeons, and a pond nearby.", Answer: "park", Lat: &lat, Lng: &lng, ToleranceRadius: &tolerance},
		{HuntID: hunt.ID, Position: 3, Title: "Water Feature", Riddle: "Coins sleep at my bottom.", Answer: "fountain"},
	}
	if err := db.Create(&checkpoints).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded the tutorial hunt")
	return nil
}
