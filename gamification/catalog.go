package gamification

// Definition describes one achievement: a stable id, display fields, an
// optional claimable XP reward and a pure unlock predicate over Progress.
// The catalog is a fixed ordered list so evaluation order, and therefore
// the order of newly unlocked achievements in results, is deterministic.
type Definition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	XPReward    int
	Predicate   func(p *Progress) bool
}

var catalog = []Definition{
	{
		ID:          "first_question",
		Name:        "First Steps",
		Description: "Answer your first question",
		Icon:        "🎯",
		XPReward:    10,
		Predicate: func(p *Progress) bool {
			return p.QuestionsAnswered >= 1
		},
	},
	{
		ID:          "correct_10",
		Name:        "Warming Up",
		Description: "Answer 10 questions correctly",
		Icon:        "✅",
		XPReward:    25,
		Predicate: func(p *Progress) bool {
			return p.CorrectAnswers >= 10
		},
	},
	{
		ID:          "correct_50",
		Name:        "Scholar",
		Description: "Answer 50 questions correctly",
		Icon:        "📚",
		XPReward:    100,
		Predicate: func(p *Progress) bool {
			return p.CorrectAnswers >= 50
		},
	},
	{
		ID:          "answer_streak_10",
		Name:        "On Fire",
		Description: "Get 10 correct answers in a row",
		Icon:        "🔥",
		XPReward:    50,
		Predicate: func(p *Progress) bool {
			return p.AnswerStreak >= 10
		},
	},
	{
		ID:          "first_streak_day",
		Name:        "Day One",
		Description: "Meet the daily quota for the first time",
		Icon:        "📅",
		XPReward:    15,
		Predicate: func(p *Progress) bool {
			return p.DayStreak >= 1
		},
	},
	{
		ID:          "week_streak",
		Name:        "Seven Strong",
		Description: "Keep a 7 day streak",
		Icon:        "🗓️",
		XPReward:    75,
		Predicate: func(p *Progress) bool {
			return p.DayStreak >= 7
		},
	},
	{
		ID:          "month_streak",
		Name:        "Habit Formed",
		Description: "Keep a 30 day streak",
		Icon:        "🏆",
		XPReward:    300,
		Predicate: func(p *Progress) bool {
			return p.DayStreak >= 30
		},
	},
	{
		ID:          "xp_1000",
		Name:        "Point Collector",
		Description: "Earn 1,000 XP",
		Icon:        "⭐",
		XPReward:    50,
		Predicate: func(p *Progress) bool {
			return p.TotalXP >= 1000
		},
	},
	{
		ID:          "xp_5000",
		Name:        "XP Machine",
		Description: "Earn 5,000 XP",
		Icon:        "💫",
		XPReward:    200,
		Predicate: func(p *Progress) bool {
			return p.TotalXP >= 5000
		},
	},
	{
		ID:          "questions_100",
		Name:        "Century Club",
		Description: "Answer 100 questions",
		Icon:        "💯",
		XPReward:    150,
		Predicate: func(p *Progress) bool {
			return p.QuestionsAnswered >= 100
		},
	},
}

// Catalog returns the achievement definitions in evaluation order.
// Callers must not modify the returned slice.
func Catalog() []Definition {
	return catalog
}
