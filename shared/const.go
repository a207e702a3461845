package shared

const (
	UserID      = "user_id"
	Identity    = "identity"
	IsAnonymous = "is_anonymous"

	SectionMath           = "math"
	SectionReadingWriting = "reading_writing"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	MetricXP     = "xp"
	MetricStreak = "streak"
)
