package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	questionSeeder := NewQuestionSeeder(s.db)
	if err := questionSeeder.SeedQuestions(); err != nil {
		log.Printf("Question seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func (s *MainSeeder) SeedQuestionsOnly() error {
	questionSeeder := NewQuestionSeeder(s.db)
	return questionSeeder.SeedQuestions()
}
