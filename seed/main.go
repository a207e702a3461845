package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/satquest-app/satquest_api/model"
	"github.com/satquest-app/satquest_api/seed/seeders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, questions")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := gorm.Open(postgres.Open(databaseDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.Question{}); err != nil {
		log.Fatalf("Failed to migrate question table: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "questions":
		log.Println("Seeding questions only...")
		if err := mainSeeder.SeedQuestionsOnly(); err != nil {
			log.Fatalf("Failed to seed questions: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all' or 'questions'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	dbname := envOr("DB_NAME", "satquest_api")
	sslmode := envOr("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func showHelp() {
	log.Println(`
Question Bank Seeding Tool

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, questions
  -help
        Show this help message

Environment Variables:
  DATABASE_URL - Postgres connection string (or DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME)`)
}
