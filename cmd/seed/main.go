// seed populates the database with demo users, a tutorial hunt and the
// built-in badges. Safe to run repeatedly.
package main

import (
	"log"

	"sidequest/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	database.InitDB()

	if err := database.SeedDemoData(database.GetDB()); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("🌱 Seeding complete")
}
