package seeders

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/satquest-app/satquest_api/model"
	"github.com/satquest-app/satquest_api/shared"
)

// QuestionSeeder handles seeding the SAT practice question bank
type QuestionSeeder struct {
	db *gorm.DB
}

func NewQuestionSeeder(db *gorm.DB) *QuestionSeeder {
	return &QuestionSeeder{db: db}
}

// SeedQuestions inserts the starter question bank, skipping questions that
// already exist.
func (s *QuestionSeeder) SeedQuestions() error {
	questions := s.getQuestions()

	for _, question := range questions {
		var existing model.Question
		if err := s.db.Where("id = ?", question.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&question).Error; err != nil {
					log.Printf("Error creating question %s: %v", question.ID, err)
					return err
				}
				log.Printf("Created question: %s", question.ID)
			} else {
				log.Printf("Error checking question %s: %v", question.ID, err)
				return err
			}
		} else {
			log.Printf("Question %s already exists, skipping", question.ID)
		}
	}

	log.Println("Question seeding completed successfully")
	return nil
}

func (s *QuestionSeeder) getQuestions() []model.Question {
	now := time.Now()

	questions := []model.Question{
		{
			ID:            "q_math_0001",
			Section:       shared.SectionMath,
			Difficulty:    shared.DifficultyEasy,
			Prompt:        "If 3x + 7 = 22, what is the value of x?",
			Choices:       choices("3", "5", "7", "15"),
			CorrectChoice: "5",
			Explanation:   "Subtract 7 from both sides to get 3x = 15, then divide by 3.",
		},
		{
			ID:            "q_math_0002",
			Section:       shared.SectionMath,
			Difficulty:    shared.DifficultyEasy,
			Prompt:        "A line passes through the points (0, 2) and (4, 10). What is its slope?",
			Choices:       choices("1", "2", "3", "4"),
			CorrectChoice: "2",
			Explanation:   "Slope is rise over run: (10 - 2) / (4 - 0) = 8 / 4 = 2.",
		},
		{
			ID:            "q_math_0003",
			Section:       shared.SectionMath,
			Difficulty:    shared.DifficultyMedium,
			Prompt:        "If f(x) = x^2 - 4x + 3, for what values of x does f(x) = 0?",
			Choices:       choices("x = 1 and x = 3", "x = -1 and x = -3", "x = 2 and x = 6", "x = 0 and x = 4"),
			CorrectChoice: "x = 1 and x = 3",
			Explanation:   "The quadratic factors as (x - 1)(x - 3) = 0.",
		},
		{
			ID:            "q_math_0004",
			Section:       shared.SectionMath,
			Difficulty:    shared.DifficultyMedium,
			Prompt:        "The mean of five numbers is 12. Four of the numbers are 10, 11, 13, and 14. What is the fifth number?",
			Choices:       choices("10", "12", "14", "16"),
			CorrectChoice: "12",
			Explanation:   "The five numbers sum to 60; the four given sum to 48, leaving 12.",
		},
		{
			ID:            "q_math_0005",
			Section:       shared.SectionMath,
			Difficulty:    shared.DifficultyHard,
			Prompt:        "In the xy-plane, the circle x^2 + y^2 - 6x + 8y = 0 has what radius?",
			Choices:       choices("3", "4", "5", "25"),
			CorrectChoice: "5",
			Explanation:   "Completing the square gives (x - 3)^2 + (y + 4)^2 = 25, so the radius is 5.",
		},
		{
			ID:            "q_math_0006",
			Section:       shared.SectionMath,
			Difficulty:    shared.DifficultyHard,
			Prompt:        "If 2^(x+3) = 32^(x-1), what is the value of x?",
			Choices:       choices("1", "2", "3", "4"),
			CorrectChoice: "2",
			Explanation:   "Rewrite 32 as 2^5: x + 3 = 5(x - 1), so x + 3 = 5x - 5 and x = 2.",
		},
		{
			ID:            "q_rw_0001",
			Section:       shared.SectionReadingWriting,
			Difficulty:    shared.DifficultyEasy,
			Prompt:        "Which choice completes the sentence with correct punctuation? \"The experiment yielded three results___ all of them unexpected.\"",
			Choices:       choices(":", ";", ",", "."),
			CorrectChoice: ":",
			Explanation:   "A colon introduces the elaboration that follows a complete clause.",
		},
		{
			ID:            "q_rw_0002",
			Section:       shared.SectionReadingWriting,
			Difficulty:    shared.DifficultyEasy,
			Prompt:        "Choose the word that best maintains the formal tone: \"The committee decided to ___ the proposal until more data was available.\"",
			Choices:       choices("shelve", "ditch", "dump", "bin"),
			CorrectChoice: "shelve",
			Explanation:   "\"Shelve\" is the only option consistent with a formal register.",
		},
		{
			ID:            "q_rw_0003",
			Section:       shared.SectionReadingWriting,
			Difficulty:    shared.DifficultyMedium,
			Prompt:        "\"Neither the researchers nor the supervisor ___ willing to speculate about the cause.\" Which choice is correct?",
			Choices:       choices("was", "were", "are", "have been"),
			CorrectChoice: "was",
			Explanation:   "With neither/nor, the verb agrees with the nearer subject, \"the supervisor\".",
		},
		{
			ID:            "q_rw_0004",
			Section:       shared.SectionReadingWriting,
			Difficulty:    shared.DifficultyMedium,
			Prompt:        "A passage argues that urban trees lower summer temperatures. Which finding would best support the claim?",
			Choices:       choices("Shaded streets averaged 4°F cooler than unshaded ones", "Tree planting increased in suburbs", "Most residents favor more parks", "Summer rainfall varied year to year"),
			CorrectChoice: "Shaded streets averaged 4°F cooler than unshaded ones",
			Explanation:   "Only the temperature comparison bears directly on the cooling claim.",
		},
		{
			ID:            "q_rw_0005",
			Section:       shared.SectionReadingWriting,
			Difficulty:    shared.DifficultyHard,
			Prompt:        "As used in the passage, \"appropriated\" most nearly means:",
			Choices:       choices("adopted for a new purpose", "stolen outright", "budgeted annually", "divided equally"),
			CorrectChoice: "adopted for a new purpose",
			Explanation:   "Context signals repurposing rather than theft or funding.",
		},
		{
			ID:            "q_rw_0006",
			Section:       shared.SectionReadingWriting,
			Difficulty:    shared.DifficultyHard,
			Prompt:        "Which transition best links the sentences? \"The archive was thought lost. ___, a complete copy surfaced in a private collection.\"",
			Choices:       choices("Decades later, however", "In other words", "For example", "As a result"),
			CorrectChoice: "Decades later, however",
			Explanation:   "The second sentence reverses the expectation set by the first.",
		},
	}

	for i := range questions {
		questions[i].IsActive = true
		questions[i].CreatedAt = now
		questions[i].UpdatedAt = now
	}

	return questions
}

func choices(options ...string) json.RawMessage {
	raw, _ := json.Marshal(options)
	return raw
}
