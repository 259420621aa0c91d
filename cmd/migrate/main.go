package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/database"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/vectorstore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	store := vectorstore.NewPgVectorStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
