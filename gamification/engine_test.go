package gamification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLocal struct {
	mu       sync.Mutex
	data     map[string]*Progress
	getCalls int
	getErr   error
	setErr   error
}

func newMemLocal() *memLocal {
	return &memLocal{data: map[string]*Progress{}}
}

func (m *memLocal) Get(identity string) (*Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.data[identity]
	if !ok {
		return nil, nil
	}
	return p.clone(), nil
}

func (m *memLocal) Set(identity string, p *Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[identity] = p.clone()
	return nil
}

func (m *memLocal) Clear(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, identity)
	return nil
}

func (m *memLocal) stored(identity string) *Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[identity]
}

type memRemote struct {
	mu    sync.Mutex
	snaps []ProfileSnapshot
	errs  []error
}

func (m *memRemote) UpsertProfile(_ context.Context, snap ProfileSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	return nil
}

func (m *memRemote) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

func (m *memRemote) last() ProfileSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snaps[len(m.snaps)-1]
}

// testClock walks calendar days without sleeping.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memLocal, *memRemote, *testClock) {
	t.Helper()
	local := newMemLocal()
	remote := &memRemote{}
	clock := newTestClock()
	base := []Option{WithClock(clock.Now), WithSyncDelay(time.Hour)}
	e := New(local, remote, append(base, opts...)...)
	return e, local, remote, clock
}

func answerQuota(e *Engine, identity string, day int) PracticeResult {
	var res PracticeResult
	for i := 0; i < DailyQuota; i++ {
		res = e.RecordPractice(identity, true, questionID(day, i))
	}
	return res
}

func questionID(day, i int) string {
	return fmt.Sprintf("q_d%d_%d", day, i)
}

func TestRecordPracticeAwardsXP(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	res := e.RecordPractice("u1", true, "q1")
	assert.Equal(t, XPCorrect, res.XPGained)

	res = e.RecordPractice("u1", false, "q2")
	assert.Equal(t, XPIncorrect, res.XPGained)

	p := e.Progress("u1")
	assert.Equal(t, XPCorrect+XPIncorrect, p.TotalXP)
	assert.Equal(t, 2, p.QuestionsAnswered)
	assert.Equal(t, 1, p.CorrectAnswers)
}

func TestAnswerStreakResetsOnWrongAnswer(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	e.RecordPractice("u1", true, "q1")
	e.RecordPractice("u1", true, "q2")
	assert.Equal(t, 2, e.Progress("u1").AnswerStreak)

	e.RecordPractice("u1", false, "q3")
	assert.Equal(t, 0, e.Progress("u1").AnswerStreak)
}

func TestAnsweredQuestionsTrackCorrectOnly(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	e.RecordPractice("u1", true, "q1")
	e.RecordPractice("u1", false, "q2")
	e.RecordPractice("u1", true, "q1")

	assert.True(t, e.HasAnsweredQuestion("u1", "q1"))
	assert.False(t, e.HasAnsweredQuestion("u1", "q2"))
	assert.Equal(t, []string{"q1"}, e.AnsweredQuestionIDs("u1"))
}

func TestFirstQuestionUnlocksAchievement(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	res := e.RecordPractice("u1", true, "q1")

	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, "first_question", res.NewAchievements[0].ID)
	assert.True(t, e.Progress("u1").HasAchievement("first_question"))
}

func TestDailyQuotaExtendsStreak(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	for i := 0; i < DailyQuota-1; i++ {
		res := e.RecordPractice("u1", true, questionID(0, i))
		assert.False(t, res.StreakExtended)
		assert.Equal(t, 0, res.NewDayStreak)
	}

	res := e.RecordPractice("u1", true, questionID(0, DailyQuota-1))
	assert.True(t, res.StreakExtended)
	assert.Equal(t, 1, res.NewDayStreak)

	// A sixth answer on the same day does not extend again.
	res = e.RecordPractice("u1", true, questionID(0, DailyQuota))
	assert.False(t, res.StreakExtended)
	assert.Equal(t, 1, res.NewDayStreak)
}

func TestConsecutiveQuotaDaysIncrementStreak(t *testing.T) {
	e, _, _, clock := newTestEngine(t)

	for day := 0; day < 7; day++ {
		res := answerQuota(e, "u1", day)
		assert.True(t, res.StreakExtended)
		assert.Equal(t, day+1, res.NewDayStreak)
		clock.AdvanceDays(1)
	}

	p := e.Progress("u1")
	assert.Equal(t, 7, p.DayStreak)
	assert.True(t, p.HasAchievement("week_streak"))
}

func TestMissedDayResetsStreakToOne(t *testing.T) {
	e, _, _, clock := newTestEngine(t)

	answerQuota(e, "u1", 0)
	clock.AdvanceDays(1)
	answerQuota(e, "u1", 1)
	assert.Equal(t, 2, e.Progress("u1").DayStreak)

	clock.AdvanceDays(2)
	res := answerQuota(e, "u1", 3)
	assert.True(t, res.StreakExtended)
	assert.Equal(t, 1, res.NewDayStreak)
}

func TestDateRolloverResetsDailyCount(t *testing.T) {
	e, _, _, clock := newTestEngine(t)

	e.RecordPractice("u1", true, "q1")
	e.RecordPractice("u1", true, "q2")
	assert.Equal(t, 2, e.Progress("u1").QuestionsAnsweredToday)

	clock.AdvanceDays(1)
	e.RecordPractice("u1", true, "q3")
	assert.Equal(t, 1, e.Progress("u1").QuestionsAnsweredToday)
}

func TestXPThresholdEvaluatedBeforePracticeAward(t *testing.T) {
	e, local, _, _ := newTestEngine(t)

	seed := NewProgress()
	seed.TotalXP = 995
	seed.QuestionsAnswered = 20
	seed.Achievements = []string{"first_question"}
	require.NoError(t, local.Set("u1", seed))

	// Evaluation runs before the answer's XP lands: 995 at check time.
	res := e.RecordPractice("u1", true, "q1")
	for _, def := range res.NewAchievements {
		assert.NotEqual(t, "xp_1000", def.ID)
	}
	assert.Equal(t, 1005, e.Progress("u1").TotalXP)

	// The next mutation sees the crossed threshold.
	res = e.RecordPractice("u1", true, "q2")
	ids := make([]string, 0, len(res.NewAchievements))
	for _, def := range res.NewAchievements {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, "xp_1000")
}

func TestBonusXPEvaluatedAfterAward(t *testing.T) {
	e, local, _, _ := newTestEngine(t)

	seed := NewProgress()
	seed.TotalXP = 995
	require.NoError(t, local.Set("u1", seed))

	res := e.AddBonusXP("u1", 10)
	assert.Equal(t, 10, res.XPGained)

	ids := make([]string, 0, len(res.NewAchievements))
	for _, def := range res.NewAchievements {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, "xp_1000")
}

func TestBonusXPNegativeClamped(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	res := e.AddBonusXP("u1", -50)
	assert.Equal(t, 0, res.XPGained)
	assert.Equal(t, 0, e.Progress("u1").TotalXP)
}

func TestCollectAchievementPaysOutOnce(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	e.RecordPractice("u1", true, "q1")
	require.True(t, e.Progress("u1").HasAchievement("first_question"))

	res := e.CollectAchievementXP("u1", "first_question")
	assert.Equal(t, 10, res.XPGained)

	res = e.CollectAchievementXP("u1", "first_question")
	assert.Equal(t, 0, res.XPGained)

	p := e.Progress("u1")
	assert.Equal(t, XPCorrect+10, p.TotalXP)
	assert.True(t, p.HasCollected("first_question"))
}

func TestCollectLockedAchievementIsNoOp(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	res := e.CollectAchievementXP("u1", "month_streak")
	assert.Equal(t, 0, res.XPGained)

	res = e.CollectAchievementXP("u1", "no_such_achievement")
	assert.Equal(t, 0, res.XPGained)
}

func TestInitializeLoadsLocalSnapshot(t *testing.T) {
	e, local, _, _ := newTestEngine(t)

	seed := NewProgress()
	seed.TotalXP = 250
	seed.DayStreak = 3
	require.NoError(t, local.Set("u1", seed))

	p := e.Progress("u1")
	assert.Equal(t, 250, p.TotalXP)
	assert.Equal(t, 3, p.DayStreak)
}

func TestInitializeFallsBackOnReadError(t *testing.T) {
	local := newMemLocal()
	local.getErr = errors.New("disk corrupt")
	e := New(local, &memRemote{}, WithSyncDelay(time.Hour))

	p := e.Progress("u1")
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, 0, p.QuestionsAnswered)
}

func TestEveryMutationPersistsLocally(t *testing.T) {
	e, local, _, _ := newTestEngine(t)

	e.RecordPractice("u1", true, "q1")
	stored := local.stored("u1")
	require.NotNil(t, stored)
	assert.Equal(t, XPCorrect, stored.TotalXP)

	e.AddBonusXP("u1", 5)
	assert.Equal(t, XPCorrect+5, local.stored("u1").TotalXP)
}

func TestDebounceCoalescesRemoteWrites(t *testing.T) {
	local := newMemLocal()
	remote := &memRemote{}
	e := New(local, remote, WithSyncDelay(30*time.Millisecond))

	e.RecordPractice("u1", true, "q1")
	e.RecordPractice("u1", true, "q2")
	e.RecordPractice("u1", true, "q3")

	require.Eventually(t, func() bool { return remote.count() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 1, remote.count())
	assert.Equal(t, 3*XPCorrect, remote.last().TotalXP)
}

func TestFlushBypassesDebounce(t *testing.T) {
	e, _, remote, _ := newTestEngine(t)

	e.RecordPractice("u1", true, "q1")
	assert.Equal(t, 0, remote.count())

	e.Flush("u1")
	require.Equal(t, 1, remote.count())
	assert.Equal(t, XPCorrect, remote.last().TotalXP)

	// No pending write left behind.
	e.Flush("u1")
	assert.Equal(t, 1, remote.count())
}

func TestFailedSyncRetries(t *testing.T) {
	local := newMemLocal()
	remote := &memRemote{errs: []error{errors.New("network down")}}

	attempts := make(chan error, 4)
	e := New(local, remote,
		WithSyncDelay(20*time.Millisecond),
		WithSyncObserver(func(_ string, err error) { attempts <- err }),
	)

	e.RecordPractice("u1", true, "q1")

	require.Error(t, <-attempts)
	require.NoError(t, waitResult(t, attempts))
	assert.Equal(t, 2, remote.count())
}

func waitResult(t *testing.T, ch chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sync attempt")
		return nil
	}
}

func TestClearResetsProgress(t *testing.T) {
	e, local, _, _ := newTestEngine(t)

	e.RecordPractice("u1", true, "q1")
	require.NotNil(t, local.stored("u1"))

	e.Clear("u1")
	assert.Nil(t, local.stored("u1"))
	assert.Equal(t, 0, e.Progress("u1").TotalXP)
}

func TestConcurrentInitializeLoadsOnce(t *testing.T) {
	e, local, _, _ := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Initialize("u1")
		}()
	}
	wg.Wait()

	local.mu.Lock()
	defer local.mu.Unlock()
	assert.Equal(t, 1, local.getCalls)
}

func TestStreakExtensionReportedOnReset(t *testing.T) {
	e, _, _, clock := newTestEngine(t)

	answerQuota(e, "u1", 0)
	clock.AdvanceDays(3)

	res := answerQuota(e, "u1", 3)
	assert.True(t, res.StreakExtended)
	assert.Equal(t, 1, res.NewDayStreak)
}

func TestConcurrentPracticeSerializesPerIdentity(t *testing.T) {
	e, local, _, _ := newTestEngine(t)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.RecordPractice("u1", true, fmt.Sprintf("q%d", i))
		}(i)
	}
	wg.Wait()

	p := e.Progress("u1")
	assert.Equal(t, workers, p.QuestionsAnswered)
	assert.Equal(t, workers, p.CorrectAnswers)
	assert.Equal(t, workers*XPCorrect, p.TotalXP)
	assert.Len(t, p.AnsweredQuestionIDs, workers)
	assert.Equal(t, workers, local.stored("u1").QuestionsAnswered)
}

func TestStreakSurvivesSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST starts 2026-03-08 in this zone, so the Mar 8 to Mar 9 local day
	// is only 23 hours long.
	clock := &testClock{now: time.Date(2026, 3, 8, 20, 0, 0, 0, loc)}
	e := New(newMemLocal(), &memRemote{}, WithClock(clock.Now), WithSyncDelay(time.Hour))

	res := answerQuota(e, "u1", 0)
	require.True(t, res.StreakExtended)
	require.Equal(t, 1, res.NewDayStreak)

	clock.AdvanceDays(1)
	res = answerQuota(e, "u1", 1)

	assert.True(t, res.StreakExtended)
	assert.Equal(t, 2, res.NewDayStreak)
}

func TestWithCatalogOverridesDefinitions(t *testing.T) {
	custom := []Definition{{
		ID:       "three_correct",
		Name:     "Hat Trick",
		XPReward: 30,
		Predicate: func(p *Progress) bool {
			return p.CorrectAnswers >= 3
		},
	}}
	e, _, _, _ := newTestEngine(t, WithCatalog(custom))

	require.Len(t, e.Definitions(), 1)

	e.RecordPractice("u1", true, "q1")
	e.RecordPractice("u1", true, "q2")
	res := e.RecordPractice("u1", true, "q3")

	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, "three_correct", res.NewAchievements[0].ID)

	collect := e.CollectAchievementXP("u1", "three_correct")
	assert.Equal(t, 30, collect.XPGained)
}
