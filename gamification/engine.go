package gamification

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// DailyQuota is the number of questions that must be answered in a
	// calendar day for the day to count toward the streak.
	DailyQuota = 5

	// XPCorrect and XPIncorrect are the base awards per answer. A wrong
	// answer still earns attempt credit.
	XPCorrect   = 10
	XPIncorrect = 5

	DefaultSyncDelay = 10 * time.Second
)

// Engine owns the in-memory progress records, applies practice events and
// evaluates streak and achievement rules. The local store is written
// synchronously after every mutation; the remote store receives debounced
// best-effort upserts. Storage failures are logged and swallowed - the
// in-memory state stays authoritative for the session.
//
// All calls are safe for concurrent use. Mutations on the same identity are
// serialized on a per-session lock, so each answer is applied atomically;
// the engine adds no cross-call transactional semantics beyond that.
type Engine struct {
	local    LocalStore
	remote   RemoteStore
	catalog  []Definition
	delay    time.Duration
	now      func() time.Time
	observer func(identity string, err error)

	mu       sync.Mutex
	sessions map[string]*session
	initOnce singleflight.Group
}

// session guards its progress record with its own lock so concurrent
// requests for the same identity apply one mutation at a time.
type session struct {
	mu       sync.Mutex
	progress *Progress
	sync     *syncer
}

type Option func(*Engine)

// WithClock overrides the time source, letting tests walk calendar days.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithSyncDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithSyncObserver registers a callback invoked after every remote sync
// attempt, successful or not.
func WithSyncObserver(fn func(identity string, err error)) Option {
	return func(e *Engine) { e.observer = fn }
}

func WithCatalog(defs []Definition) Option {
	return func(e *Engine) { e.catalog = defs }
}

func New(local LocalStore, remote RemoteStore, opts ...Option) *Engine {
	e := &Engine{
		local:    local,
		remote:   remote,
		catalog:  Catalog(),
		delay:    DefaultSyncDelay,
		now:      time.Now,
		sessions: map[string]*session{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PracticeResult summarizes one recorded answer.
type PracticeResult struct {
	XPGained        int
	NewAchievements []Definition
	StreakExtended  bool
	NewDayStreak    int
}

// BonusResult summarizes a flat XP award outside the practice flow.
type BonusResult struct {
	XPGained        int
	NewAchievements []Definition
}

// CollectResult summarizes an achievement reward claim.
type CollectResult struct {
	XPGained        int
	NewAchievements []Definition
}

// Initialize loads the progress record for the identity, falling back to
// defaults if the local store is unreadable. It is idempotent and safe to
// call concurrently: the first caller performs the load, concurrent callers
// wait on the same in-flight result.
func (e *Engine) Initialize(identity string) {
	e.session(identity)
}

func (e *Engine) session(identity string) *session {
	e.mu.Lock()
	if s, ok := e.sessions[identity]; ok {
		e.mu.Unlock()
		return s
	}
	e.mu.Unlock()

	v, _, _ := e.initOnce.Do(identity, func() (interface{}, error) {
		e.mu.Lock()
		if s, ok := e.sessions[identity]; ok {
			e.mu.Unlock()
			return s, nil
		}
		e.mu.Unlock()

		p, err := e.local.Get(identity)
		if err != nil {
			log.WithError(err).WithField("identity", identity).Warn("Failed to read local progress, starting from defaults")
			p = nil
		}
		fresh := p == nil
		if fresh {
			p = NewProgress()
		}

		s := &session{
			progress: p,
			sync:     newSyncer(identity, e.remote, e.delay, e.observer),
		}

		// Push loaded state so a sync that failed before the last
		// shutdown is retried on startup.
		if !fresh {
			s.sync.Schedule(e.snapshot(identity, p))
		}

		e.mu.Lock()
		e.sessions[identity] = s
		e.mu.Unlock()
		return s, nil
	})
	return v.(*session)
}

func (e *Engine) peek(identity string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[identity]
}

// Progress returns a snapshot of the current progress record.
func (e *Engine) Progress(identity string) Progress {
	s := e.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.progress.clone()
}

func (e *Engine) HasAnsweredQuestion(identity, questionID string) bool {
	s := e.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.HasAnswered(questionID)
}

func (e *Engine) AnsweredQuestionIDs(identity string) []string {
	s := e.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.progress.AnsweredQuestionIDs...)
}

// RecordPractice applies one answered question: counters, answer streak,
// date rollover, base XP, day-streak evaluation and achievement unlocks.
func (e *Engine) RecordPractice(identity string, isCorrect bool, questionID string) PracticeResult {
	s := e.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.progress
	today := dateOf(e.now())

	if isCorrect {
		p.CorrectAnswers++
		if !p.HasAnswered(questionID) {
			p.AnsweredQuestionIDs = append(p.AnsweredQuestionIDs, questionID)
		}
		p.AnswerStreak++
	} else {
		p.AnswerStreak = 0
	}
	p.QuestionsAnswered++

	if p.LastQuestionDate == nil || !dateOf(*p.LastQuestionDate).Equal(today) {
		p.QuestionsAnsweredToday = 0
	}
	day := today
	p.LastQuestionDate = &day
	p.QuestionsAnsweredToday++

	xpGained := XPIncorrect
	if isCorrect {
		xpGained = XPCorrect
	}

	res := PracticeResult{XPGained: xpGained}

	if p.QuestionsAnsweredToday == DailyQuota {
		res.StreakExtended = e.extendStreak(p, today)
	}

	// Achievement bonuses are never auto-added; rewards are claimed
	// separately via CollectAchievementXP.
	res.NewAchievements = e.evaluateAchievements(p, today)

	p.TotalXP += xpGained
	res.NewDayStreak = p.DayStreak

	e.persist(identity, s)
	return res
}

// extendStreak applies the quota-day rule: consecutive days increment the
// streak, a gap resets it to 1, and a day already counted is a no-op.
func (e *Engine) extendStreak(p *Progress, today time.Time) bool {
	if p.LastValidStreakDate == nil {
		p.DayStreak++
	} else {
		switch daysBetween(dateOf(*p.LastValidStreakDate), today) {
		case 0:
			return false
		case 1:
			p.DayStreak++
		default:
			p.DayStreak = 1
		}
	}

	day := today
	p.LastValidStreakDate = &day
	return true
}

// AddBonusXP adds flat XP outside the practice flow, e.g. a streak
// celebration collection.
func (e *Engine) AddBonusXP(identity string, amount int) BonusResult {
	if amount < 0 {
		amount = 0
	}

	s := e.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.progress
	p.TotalXP += amount
	newly := e.evaluateAchievements(p, dateOf(e.now()))

	e.persist(identity, s)
	return BonusResult{XPGained: amount, NewAchievements: newly}
}

// CollectAchievementXP claims the reward for an unlocked achievement.
// Payout is at most once per achievement: a second call returns zero.
func (e *Engine) CollectAchievementXP(identity, achievementID string) CollectResult {
	s := e.session(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.progress
	if !p.HasAchievement(achievementID) || p.HasCollected(achievementID) {
		return CollectResult{}
	}
	def, ok := e.definition(achievementID)
	if !ok {
		return CollectResult{}
	}

	p.CollectedRewards = append(p.CollectedRewards, achievementID)
	p.TotalXP += def.XPReward
	newly := e.evaluateAchievements(p, dateOf(e.now()))

	e.persist(identity, s)
	return CollectResult{XPGained: def.XPReward, NewAchievements: newly}
}

// Flush pushes the pending remote write immediately. Intended for
// app-backgrounding and teardown paths.
func (e *Engine) Flush(identity string) {
	if s := e.peek(identity); s != nil {
		s.sync.Flush()
	}
}

func (e *Engine) FlushAll() {
	e.mu.Lock()
	sessions := make([]*session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()

	for _, s := range sessions {
		s.sync.Flush()
	}
}

// Clear wipes the identity's progress everywhere it is held locally. The
// remote row is left to the next sync from a fresh record.
func (e *Engine) Clear(identity string) {
	e.mu.Lock()
	s := e.sessions[identity]
	delete(e.sessions, identity)
	e.mu.Unlock()

	if s != nil {
		s.sync.Stop()
	}
	if err := e.local.Clear(identity); err != nil {
		log.WithError(err).WithField("identity", identity).Warn("Failed to clear local progress")
	}
}

func (e *Engine) Definitions() []Definition {
	return e.catalog
}

func (e *Engine) definition(achievementID string) (Definition, bool) {
	for _, def := range e.catalog {
		if def.ID == achievementID {
			return def, true
		}
	}
	return Definition{}, false
}

func (e *Engine) evaluateAchievements(p *Progress, today time.Time) []Definition {
	var newly []Definition
	for _, def := range e.catalog {
		if p.HasAchievement(def.ID) {
			continue
		}
		if def.Predicate(p) {
			p.Achievements = append(p.Achievements, def.ID)
			p.AchievementDates[def.ID] = today
			newly = append(newly, def)
		}
	}
	return newly
}

func (e *Engine) persist(identity string, s *session) {
	if err := e.local.Set(identity, s.progress); err != nil {
		log.WithError(err).WithField("identity", identity).Warn("Failed to write local progress")
	}
	s.sync.Schedule(e.snapshot(identity, s.progress))
}

func (e *Engine) snapshot(identity string, p *Progress) ProfileSnapshot {
	return ProfileSnapshot{
		Identity:          identity,
		TotalXP:           p.TotalXP,
		DayStreak:         p.DayStreak,
		QuestionsAnswered: p.QuestionsAnswered,
		CorrectAnswers:    p.CorrectAnswers,
		SyncedAt:          e.now(),
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days between two dates. Both are rebuilt in
// UTC first so a DST transition (a 23 or 25 hour local day) cannot skew the
// count.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
