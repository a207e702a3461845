package gamification

import "time"

// Progress is the canonical per-identity progress record. The engine owns
// the live copy; everything handed out is a snapshot.
type Progress struct {
	TotalXP                int                  `json:"total_xp"`
	DayStreak              int                  `json:"day_streak"`
	QuestionsAnswered      int                  `json:"questions_answered"`
	CorrectAnswers         int                  `json:"correct_answers"`
	AnswerStreak           int                  `json:"answer_streak"`
	LastQuestionDate       *time.Time           `json:"last_question_date"`
	QuestionsAnsweredToday int                  `json:"questions_answered_today"`
	LastValidStreakDate    *time.Time           `json:"last_valid_streak_date"`
	Achievements           []string             `json:"achievements"`
	AchievementDates       map[string]time.Time `json:"achievement_dates"`
	CollectedRewards       []string             `json:"collected_rewards"`
	AnsweredQuestionIDs    []string             `json:"answered_question_ids"`
}

func NewProgress() *Progress {
	return &Progress{
		Achievements:        []string{},
		AchievementDates:    map[string]time.Time{},
		CollectedRewards:    []string{},
		AnsweredQuestionIDs: []string{},
	}
}

// HasAnswered reports whether the question was ever answered correctly.
// Wrong answers never mark a question as done, so retries still count.
func (p Progress) HasAnswered(questionID string) bool {
	for _, id := range p.AnsweredQuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

func (p Progress) HasAchievement(achievementID string) bool {
	for _, id := range p.Achievements {
		if id == achievementID {
			return true
		}
	}
	return false
}

// HasCollected reports whether the achievement's XP reward was already
// claimed. Collection is tracked separately from unlocking so payout is
// at most once.
func (p Progress) HasCollected(achievementID string) bool {
	for _, id := range p.CollectedRewards {
		if id == achievementID {
			return true
		}
	}
	return false
}

func (p *Progress) clone() *Progress {
	out := *p
	out.Achievements = append([]string{}, p.Achievements...)
	out.CollectedRewards = append([]string{}, p.CollectedRewards...)
	out.AnsweredQuestionIDs = append([]string{}, p.AnsweredQuestionIDs...)
	out.AchievementDates = make(map[string]time.Time, len(p.AchievementDates))
	for k, v := range p.AchievementDates {
		out.AchievementDates[k] = v
	}
	if p.LastQuestionDate != nil {
		d := *p.LastQuestionDate
		out.LastQuestionDate = &d
	}
	if p.LastValidStreakDate != nil {
		d := *p.LastValidStreakDate
		out.LastValidStreakDate = &d
	}
	return &out
}
