package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"moodwall/internal/models"
	"moodwall/internal/mood"
)

// Memory is an in-process Store with the same constraints as the Postgres
// schema: unique encouragements per (sender, post), foreign keys, cascading
// deletes and the trigger-maintained encouragement counter.
type Memory struct {
	mu  sync.Mutex
	now func() time.Time
	seq int64

	accounts       map[string]models.AuthAccount
	users          map[string]models.User
	checkins       []memRow[models.MoodCheckin]
	posts          []memRow[models.MoodWallPost]
	encouragements []models.Encouragement
	support        []models.SupportMessage
}

type memRow[T any] struct {
	seq int64
	row T
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		accounts: map[string]models.AuthAccount{},
		users:    map[string]models.User{},
	}
}

// SetClock replaces the source of server-assigned timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) next() int64 {
	m.seq++
	return m.seq
}

func (m *Memory) CreateAuthAccount(_ context.Context, a *models.AuthAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.EmailBlindIndex == a.EmailBlindIndex {
			return ErrConflict
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = m.now()
	m.accounts[a.ID] = *a
	return nil
}

func (m *Memory) GetAuthAccount(_ context.Context, id string) (*models.AuthAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) GetAuthAccountByBlindIndex(_ context.Context, blindIndex string) (*models.AuthAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.EmailBlindIndex == blindIndex {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) DeleteAuthAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	for uid, u := range m.users {
		if u.AuthAccountID != nil && *u.AuthAccountID == id {
			u.AuthAccountID = nil
			m.users[uid] = u
		}
	}
	return nil
}

func copyUser(u models.User) *models.User {
	u.Preferences = u.Preferences.Clone()
	return &u
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.AuthAccountID != nil {
		if _, ok := m.accounts[*u.AuthAccountID]; !ok {
			return ErrMissingReference
		}
		if m.linkedLocked(*u.AuthAccountID) {
			return ErrConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = m.now()
	u.Preferences = u.Preferences.Clone()
	m.users[u.ID] = *copyUser(*u)
	return nil
}

func (m *Memory) linkedLocked(accountID string) bool {
	for _, u := range m.users {
		if u.AuthAccountID != nil && *u.AuthAccountID == accountID {
			return true
		}
	}
	return false
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *Memory) GetUserByAuthAccount(_ context.Context, accountID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.AuthAccountID != nil && *u.AuthAccountID == accountID {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateUser(_ context.Context, id string, upd UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.DisplayName != nil {
		name := *upd.DisplayName
		u.DisplayName = &name
	}
	if upd.Preferences != nil {
		u.Preferences = upd.Preferences.Clone()
	}
	m.users[id] = u
	return copyUser(u), nil
}

func (m *Memory) LinkAuthAccount(_ context.Context, userID, accountID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.AuthAccountID != nil {
		return nil, ErrNotFound
	}
	if _, ok := m.accounts[accountID]; !ok {
		return nil, ErrMissingReference
	}
	if m.linkedLocked(accountID) {
		return nil, ErrConflict
	}
	acct := accountID
	u.AuthAccountID = &acct
	m.users[userID] = u
	return copyUser(u), nil
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)

	checkins := m.checkins[:0]
	for _, c := range m.checkins {
		if c.row.UserID != id {
			checkins = append(checkins, c)
		}
	}
	m.checkins = checkins

	removedPosts := map[string]bool{}
	posts := m.posts[:0]
	for _, p := range m.posts {
		if p.row.UserID == id {
			removedPosts[p.row.ID] = true
			continue
		}
		posts = append(posts, p)
	}
	m.posts = posts

	encs := m.encouragements[:0]
	for _, e := range m.encouragements {
		if removedPosts[e.ToPostID] {
			continue
		}
		if e.FromUserID == id {
			m.bumpCountLocked(e.ToPostID, -1)
			continue
		}
		encs = append(encs, e)
	}
	m.encouragements = encs
	return nil
}

func (m *Memory) InsertCheckin(_ context.Context, c *models.MoodCheckin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[c.UserID]; !ok {
		return ErrMissingReference
	}
	c.ID = uuid.NewString()
	if c.Timestamp.IsZero() {
		c.Timestamp = m.now()
	}
	m.checkins = append(m.checkins, memRow[models.MoodCheckin]{seq: m.next(), row: *c})
	return nil
}

// userCheckinsLocked returns the user's check-ins newest first.
func (m *Memory) userCheckinsLocked(userID string) []models.MoodCheckin {
	rows := []memRow[models.MoodCheckin]{}
	for _, c := range m.checkins {
		if c.row.UserID == userID {
			rows = append(rows, c)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].row.Timestamp.Equal(rows[j].row.Timestamp) {
			return rows[i].row.Timestamp.After(rows[j].row.Timestamp)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]models.MoodCheckin, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out
}

func (m *Memory) ListCheckins(_ context.Context, userID string, limit int) ([]models.MoodCheckin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.userCheckinsLocked(userID)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CheckinTimestamps(_ context.Context, userID string) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.userCheckinsLocked(userID)
	out := make([]time.Time, len(rows))
	for i, c := range rows {
		out[i] = c.Timestamp
	}
	return out, nil
}

func (m *Memory) CountCheckinsBetween(_ context.Context, userID string, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.checkins {
		ts := c.row.Timestamp
		if c.row.UserID == userID && !ts.Before(from) && ts.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) InsertWallPost(_ context.Context, p *models.MoodWallPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[p.UserID]; !ok {
		return ErrMissingReference
	}
	p.ID = uuid.NewString()
	if p.Timestamp.IsZero() {
		p.Timestamp = m.now()
	}
	p.EncouragementCount = 0
	m.posts = append(m.posts, memRow[models.MoodWallPost]{seq: m.next(), row: *p})
	return nil
}

func (m *Memory) ListWallPosts(_ context.Context, q WallQuery) ([]models.MoodWallPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := []memRow[models.MoodWallPost]{}
	for _, p := range m.posts {
		if q.Range != nil && !q.Range.Contains(p.row.MoodValue) {
			continue
		}
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].row.Timestamp.Equal(rows[j].row.Timestamp) {
			return rows[i].row.Timestamp.After(rows[j].row.Timestamp)
		}
		return rows[i].seq > rows[j].seq
	})
	if q.Limit >= 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	out := make([]models.MoodWallPost, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out, nil
}

func (m *Memory) bumpCountLocked(postID string, delta int) {
	for i := range m.posts {
		if m.posts[i].row.ID == postID {
			m.posts[i].row.EncouragementCount += delta
			return
		}
	}
}

func (m *Memory) hasPostLocked(postID string) bool {
	for _, p := range m.posts {
		if p.row.ID == postID {
			return true
		}
	}
	return false
}

func (m *Memory) InsertEncouragement(_ context.Context, e *models.Encouragement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[e.FromUserID]; !ok {
		return ErrMissingReference
	}
	if !m.hasPostLocked(e.ToPostID) {
		return ErrMissingReference
	}
	for _, existing := range m.encouragements {
		if existing.FromUserID == e.FromUserID && existing.ToPostID == e.ToPostID {
			return ErrConflict
		}
	}
	e.ID = uuid.NewString()
	e.Timestamp = m.now()
	m.encouragements = append(m.encouragements, *e)
	m.bumpCountLocked(e.ToPostID, 1)
	return nil
}

func (m *Memory) LeastUsedSupportMessage(_ context.Context, category mood.Category, value int) (*models.SupportMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.SupportMessage
	for i := range m.support {
		s := &m.support[i]
		if s.Category != string(category) || value < s.RangeStart || value > s.RangeEnd {
			continue
		}
		if best == nil || s.UsageCount < best.UsageCount || (s.UsageCount == best.UsageCount && s.ID < best.ID) {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	out := *best
	return &out, nil
}

func (m *Memory) IncrementSupportUsage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.support {
		if m.support[i].ID == id {
			m.support[i].UsageCount++
			return nil
		}
	}
	return nil
}

func (m *Memory) UpsertSupportMessages(_ context.Context, msgs []models.SupportMessage) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range msgs {
		updated := false
		for i := range m.support {
			s := &m.support[i]
			if s.Category == in.Category && s.Message == in.Message {
				s.RangeStart, s.RangeEnd = in.RangeStart, in.RangeEnd
				updated = true
				break
			}
		}
		if !updated {
			in.ID = uuid.NewString()
			in.UsageCount = 0
			m.support = append(m.support, in)
		}
	}
	return len(msgs), nil
}

func (m *Memory) Overview(_ context.Context, since time.Time) (*models.Overview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := models.Overview{
		TotalUsers:          len(m.users),
		TotalCheckins:       len(m.checkins),
		TotalWallPosts:      len(m.posts),
		TotalEncouragements: len(m.encouragements),
	}
	for _, u := range m.users {
		if u.IsGuest() {
			o.GuestUsers++
		}
	}
	active := map[string]bool{}
	for _, c := range m.checkins {
		if !c.row.Timestamp.Before(since) {
			active[c.row.UserID] = true
		}
	}
	o.ActiveUsersThisWeek = len(active)
	return &o, nil
}

// SetAdmin flips the admin flag. Postgres deployments set it with SQL.
func (m *Memory) SetAdmin(userID string, admin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.IsAdmin = admin
	m.users[userID] = u
	return nil
}
