package leaderboard

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satquest-app/satquest_api/shared"
)

// fakeStore keeps everything in maps and records the paging arguments the
// service passes down.
type fakeStore struct {
	profiles map[string]Row
	boards   map[string]*Board
	members  map[string]map[string]bool

	lastLimit  int
	lastOffset int

	boardErr  error
	memberErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[string]Row{},
		boards:   map[string]*Board{},
		members:  map[string]map[string]bool{},
	}
}

func (f *fakeStore) addProfile(r Row) {
	f.profiles[r.UserID] = r
}

func (f *fakeStore) visible(metric Metric) []Row {
	var rows []Row
	for _, r := range f.profiles {
		if r.Hidden || r.Username == "" {
			continue
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if metric.score(rows[i]) != metric.score(rows[j]) {
			return metric.score(rows[i]) > metric.score(rows[j])
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows
}

func (f *fakeStore) VisibleProfiles(metric Metric, limit, offset int) ([]Row, error) {
	f.lastLimit = limit
	f.lastOffset = offset

	rows := f.visible(metric)
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) VisibleCountAbove(metric Metric, score int) (int, error) {
	count := 0
	for _, r := range f.visible(metric) {
		if metric.score(r) > score {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Profile(userID string) (*Row, error) {
	r, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s not found", userID)
	}
	return &r, nil
}

func (f *fakeStore) ProfileByUsername(username string) (*Row, error) {
	for _, r := range f.profiles {
		if r.Username == username {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("username %s not found", username)
}

func (f *fakeStore) Board(leaderboardID string) (*Board, error) {
	if f.boardErr != nil {
		return nil, f.boardErr
	}
	b, ok := f.boards[leaderboardID]
	if !ok {
		return nil, fmt.Errorf("board %s not found", leaderboardID)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeStore) BoardsForUser(userID string) ([]Board, error) {
	var out []Board
	for id, b := range f.boards {
		if f.members[id][userID] {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) MemberRows(leaderboardID string) ([]Row, error) {
	var rows []Row
	for userID := range f.members[leaderboardID] {
		rows = append(rows, f.profiles[userID])
	}
	return rows, nil
}

func (f *fakeStore) MemberCount(leaderboardID string) (int, error) {
	return len(f.members[leaderboardID]), nil
}

func (f *fakeStore) IsMember(leaderboardID, userID string) (bool, error) {
	if f.memberErr != nil {
		return false, f.memberErr
	}
	return f.members[leaderboardID][userID], nil
}

func (f *fakeStore) CreateBoard(b *Board, ownerID string) error {
	copied := *b
	f.boards[b.ID] = &copied
	f.members[b.ID] = map[string]bool{ownerID: true}
	return nil
}

func (f *fakeStore) AddMember(leaderboardID, userID string) error {
	f.members[leaderboardID][userID] = true
	return nil
}

func (f *fakeStore) RemoveMember(leaderboardID, userID string) error {
	delete(f.members[leaderboardID], userID)
	return nil
}

func (f *fakeStore) SetOwner(leaderboardID, userID string) error {
	f.boards[leaderboardID].OwnerID = userID
	return nil
}

func (f *fakeStore) DeleteBoard(leaderboardID string) error {
	delete(f.boards, leaderboardID)
	delete(f.members, leaderboardID)
	return nil
}

var _ Store = (*fakeStore)(nil)

func newTestService(store Store) *Service {
	return NewService(store, WithRand(func() *rand.Rand {
		return rand.New(rand.NewSource(1))
	}))
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.StatusCode
}

// seedBoard creates a board owned by "owner" with the given extra members.
func seedBoard(t *testing.T, svc *Service, store *fakeStore, members ...string) *Board {
	t.Helper()
	store.addProfile(Row{UserID: "owner", Username: "owner", AllowInvites: true})
	board, err := svc.Create("owner", "Study Group", "", 0)
	require.NoError(t, err)
	for _, m := range members {
		store.addProfile(Row{UserID: m, Username: m, AllowInvites: true})
		store.members[board.ID][m] = true
	}
	return board
}

func TestGlobalClampsPaging(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.Global(MetricXP, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, 50, store.lastLimit)
	assert.Equal(t, 0, store.lastOffset)

	_, err = svc.Global(MetricXP, 500, 10)
	require.NoError(t, err)
	assert.Equal(t, 100, store.lastLimit)
	assert.Equal(t, 10, store.lastOffset)
}

func TestGlobalRanksFromOffset(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		store.addProfile(Row{
			UserID:   fmt.Sprintf("u%d", i),
			Username: fmt.Sprintf("user%d", i),
			TotalXP:  100 - i*10,
		})
	}
	svc := newTestService(store)

	entries, err := svc.Global(MetricXP, 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Rank)
	assert.Equal(t, 4, entries[1].Rank)
	assert.Equal(t, "u2", entries[0].UserID)
}

func TestGlobalExcludesHiddenAndUnnamed(t *testing.T) {
	store := newFakeStore()
	store.addProfile(Row{UserID: "u1", Username: "alice", TotalXP: 100})
	store.addProfile(Row{UserID: "u2", Username: "bob", TotalXP: 200, Hidden: true})
	store.addProfile(Row{UserID: "u3", TotalXP: 300})
	svc := newTestService(store)

	entries, err := svc.Global(MetricXP, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestUserRankComputesFromCountAbove(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 10; i++ {
		store.addProfile(Row{
			UserID:   fmt.Sprintf("u%d", i),
			Username: fmt.Sprintf("user%d", i),
			TotalXP:  1000 - i*100,
		})
	}
	svc := newTestService(store)

	view, err := svc.UserRank("u5", MetricXP)
	require.NoError(t, err)
	assert.True(t, view.Ranked)
	assert.Equal(t, 6, view.Rank)

	// Window of two on each side, ranked from its own offset.
	require.Len(t, view.Surrounding, 5)
	assert.Equal(t, 4, view.Surrounding[0].Rank)
	assert.Equal(t, "u3", view.Surrounding[0].UserID)
	assert.Equal(t, 8, view.Surrounding[4].Rank)
}

func TestUserRankWindowClampsAtTop(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 10; i++ {
		store.addProfile(Row{
			UserID:   fmt.Sprintf("u%d", i),
			Username: fmt.Sprintf("user%d", i),
			TotalXP:  1000 - i*100,
		})
	}
	svc := newTestService(store)

	view, err := svc.UserRank("u0", MetricXP)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Rank)
	require.NotEmpty(t, view.Surrounding)
	assert.Equal(t, 1, view.Surrounding[0].Rank)
}

func TestUserRankHiddenProfileIsUnranked(t *testing.T) {
	store := newFakeStore()
	store.addProfile(Row{UserID: "u1", Username: "alice", TotalXP: 100, Hidden: true})
	svc := newTestService(store)

	view, err := svc.UserRank("u1", MetricXP)
	require.NoError(t, err)
	assert.False(t, view.Ranked)
	assert.Zero(t, view.Rank)
	assert.Empty(t, view.Surrounding)
}

func TestUserRankWithoutUsernameIsUnranked(t *testing.T) {
	store := newFakeStore()
	store.addProfile(Row{UserID: "u1", TotalXP: 100})
	svc := newTestService(store)

	view, err := svc.UserRank("u1", MetricXP)
	require.NoError(t, err)
	assert.False(t, view.Ranked)
}

func TestUserRankUnknownUserIs404(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.UserRank("missing", MetricXP)
	assert.Equal(t, 404, statusOf(t, err))
}

func TestCreateValidatesName(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Create("owner", "", "", 0)
	assert.Equal(t, 400, statusOf(t, err))

	long := make([]byte, maxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Create("owner", string(long), "", 0)
	assert.Equal(t, 400, statusOf(t, err))
}

func TestCreateCapsMaxMembers(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Create("owner", "Study Group", "", MaxMembers+1)
	assert.Equal(t, 400, statusOf(t, err))
}

func TestCreateDefaultsAndEnrollsOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	board, err := svc.Create("owner", "Study Group", "weeknights", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, board.ID)
	assert.Equal(t, "owner", board.OwnerID)
	assert.Equal(t, MaxMembers, board.MaxMembers)

	isMember, err := store.IsMember(board.ID, "owner")
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestAddMemberHappyPath(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)
	store.addProfile(Row{UserID: "u2", Username: "bob", AllowInvites: true})

	row, err := svc.AddMember(board.ID, "bob", "owner")
	require.NoError(t, err)
	assert.Equal(t, "u2", row.UserID)

	isMember, _ := store.IsMember(board.ID, "u2")
	assert.True(t, isMember)
}

func TestAddMemberUnknownBoardIs404(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.AddMember("missing", "bob", "owner")
	assert.Equal(t, 404, statusOf(t, err))
}

func TestAddMemberNonMemberInviterIs403(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)
	store.addProfile(Row{UserID: "u2", Username: "bob", AllowInvites: true})

	_, err := svc.AddMember(board.ID, "bob", "outsider")
	assert.Equal(t, 403, statusOf(t, err))
}

func TestAddMemberMembershipCheckFailsClosed(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)
	store.memberErr = errors.New("connection reset")

	_, err := svc.AddMember(board.ID, "bob", "owner")
	assert.Equal(t, 403, statusOf(t, err))
}

func TestAddMemberUnknownUsernameIs400(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)

	_, err := svc.AddMember(board.ID, "nobody", "owner")
	assert.Equal(t, 400, statusOf(t, err))
}

func TestAddMemberRespectsInvitePreference(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)
	store.addProfile(Row{UserID: "u2", Username: "bob", AllowInvites: false})

	_, err := svc.AddMember(board.ID, "bob", "owner")
	assert.Equal(t, 400, statusOf(t, err))
}

func TestAddMemberDuplicateIs409(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store, "u2")

	_, err := svc.AddMember(board.ID, "u2", "owner")
	assert.Equal(t, 409, statusOf(t, err))
}

func TestAddMemberFullBoardIs409(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)
	for i := 1; i < MaxMembers; i++ {
		userID := fmt.Sprintf("u%d", i)
		store.addProfile(Row{UserID: userID, Username: userID, AllowInvites: true})
		store.members[board.ID][userID] = true
	}
	store.addProfile(Row{UserID: "late", Username: "late", AllowInvites: true})

	_, err := svc.AddMember(board.ID, "late", "owner")
	assert.Equal(t, 409, statusOf(t, err))
}

func TestRemoveMemberIsOwnerOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store, "u2", "u3")

	err := svc.RemoveMember(board.ID, "u3", "u2")
	assert.Equal(t, 403, statusOf(t, err))

	require.NoError(t, svc.RemoveMember(board.ID, "u3", "owner"))
	isMember, _ := store.IsMember(board.ID, "u3")
	assert.False(t, isMember)
}

func TestRemoveMemberCannotRemoveOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store, "u2")

	err := svc.RemoveMember(board.ID, "owner", "owner")
	assert.Equal(t, 400, statusOf(t, err))
}

func TestRemoveMemberUnknownTargetIs404(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)

	err := svc.RemoveMember(board.ID, "ghost", "owner")
	assert.Equal(t, 404, statusOf(t, err))
}

func TestLeaveOwnerMustTransferFirst(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store, "u2")

	err := svc.Leave(board.ID, "owner")
	assert.Equal(t, 400, statusOf(t, err))

	require.NoError(t, svc.TransferOwnership(board.ID, "u2", "owner"))
	require.NoError(t, svc.Leave(board.ID, "owner"))

	isMember, _ := store.IsMember(board.ID, "owner")
	assert.False(t, isMember)
}

func TestLeaveNonMemberIs404(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store)

	err := svc.Leave(board.ID, "outsider")
	assert.Equal(t, 404, statusOf(t, err))
}

func TestTransferOwnershipRequiresOwnerAndMemberTarget(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store, "u2")

	err := svc.TransferOwnership(board.ID, "u2", "u2")
	assert.Equal(t, 403, statusOf(t, err))

	err = svc.TransferOwnership(board.ID, "outsider", "owner")
	assert.Equal(t, 400, statusOf(t, err))

	require.NoError(t, svc.TransferOwnership(board.ID, "u2", "owner"))
	refreshed, err := store.Board(board.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", refreshed.OwnerID)
}

func TestDeleteIsOwnerOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store, "u2")

	err := svc.Delete(board.ID, "u2")
	assert.Equal(t, 403, statusOf(t, err))

	require.NoError(t, svc.Delete(board.ID, "owner"))
	_, err = store.Board(board.ID)
	assert.Error(t, err)
}

func TestMembersIncludesHiddenProfiles(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	board := seedBoard(t, svc, store, "u2")
	store.profiles["u2"] = Row{UserID: "u2", Username: "bob", TotalXP: 500, Hidden: true}
	store.profiles["owner"] = Row{UserID: "owner", Username: "owner", TotalXP: 100, AllowInvites: true}

	_, entries, err := svc.Members(board.ID, MetricXP)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestMembersUnknownBoardIs404(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, _, err := svc.Members("missing", MetricXP)
	assert.Equal(t, 404, statusOf(t, err))
}
