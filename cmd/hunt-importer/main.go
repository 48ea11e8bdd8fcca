// hunt-importer loads hunt definition JSON files into the database.
//
// Usage: hunt-importer <file.json> [file2.json ...]
package main

import (
	"fmt"
	"log"
	"os"

	"sidequest/database"
	"sidequest/huntfile"
	"sidequest/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hunt-importer <file.json> [file2.json ...]")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()
	db := database.GetDB()

	imported := 0
	for _, path := range os.Args[1:] {
		hunts, err := huntfile.Load(path)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}

		for i := range hunts {
			h := &hunts[i]
			if problems := huntfile.Validate(h); len(problems) > 0 {
				log.Printf("Skipping %q from %s:", h.Title, path)
				for _, p := range problems {
					log.Printf("  - %s", p)
				}
				continue
			}

			if err := importHunt(db, h); err != nil {
				log.Fatalf("Failed to import %q: %v", h.Title, err)
			}
			log.Printf("✅ Imported %q (%d checkpoints)", h.Title, len(h.Checkpoints))
			imported++
		}
	}

	log.Printf("Done: %d hunt(s) imported", imported)
}

func importHunt(db *gorm.DB, h *huntfile.Hunt) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// Re-importing an existing title replaces its checkpoints.
		var hunt models.Hunt
		err := tx.Where("title = ?", h.Title).First(&hunt).Error
		if err == nil {
			if err := tx.Where("hunt_id = ?", hunt.ID).Delete(&models.Checkpoint{}).Error; err != nil {
				return err
			}
			hunt.Description = h.Description
			hunt.CoverURL = h.CoverURL
			hunt.IsPublished = h.IsPublished
			hunt.Version++
			if err := tx.Save(&hunt).Error; err != nil {
				return err
			}
		} else if err == gorm.ErrRecordNotFound {
			hunt = models.Hunt{
				Title:       h.Title,
				Description: h.Description,
				CoverURL:    h.CoverURL,
				IsPublished: h.IsPublished,
				IsActive:    true,
			}
			if err := tx.Create(&hunt).Error; err != nil {
				return err
			}
		} else {
			return err
		}

		checkpoints := make([]models.Checkpoint, 0, len(h.Checkpoints))
		for _, cp := range h.Checkpoints {
			checkpoints = append(checkpoints, models.Checkpoint{
				HuntID:          hunt.ID,
				Position:        cp.Position,
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
}
