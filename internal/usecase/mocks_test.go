package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
)

// memStore is the shared in-memory backing for all mock repositories, so a
// transaction snapshot can restore every table at once.
type memStore struct {
	mu          sync.Mutex
	users       map[string]model.User
	batches     map[string]model.CodeBatch
	codes       map[string]model.AccessCode
	memberships map[string]model.Membership
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]model.User),
		batches:     make(map[string]model.CodeBatch),
		codes:       make(map[string]model.AccessCode),
		memberships: make(map[string]model.Membership),
	}
}

func (s *memStore) snapshot() (map[string]model.User, map[string]model.CodeBatch, map[string]model.AccessCode, map[string]model.Membership) {
	u := make(map[string]model.User, len(s.users))
	for k, v := range s.users {
		u[k] = v
	}
	b := make(map[string]model.CodeBatch, len(s.batches))
	for k, v := range s.batches {
		b[k] = v
	}
	c := make(map[string]model.AccessCode, len(s.codes))
	for k, v := range s.codes {
		c[k] = v
	}
	m := make(map[string]model.Membership, len(s.memberships))
	for k, v := range s.memberships {
		m[k] = v
	}
	return u, b, c, m
}

// memTxManager serializes transactions on the store mutex and restores a
// snapshot when the callback fails, mirroring a database rollback.
type memTxManager struct {
	store *memStore
}

type memTx struct{}

var _ repository.TransactionManager = (*memTxManager)(nil)

func (tm *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	u, b, c, m := tm.store.snapshot()
	if err := fn(ctx, memTx{}); err != nil {
		tm.store.users, tm.store.batches, tm.store.codes, tm.store.memberships = u, b, c, m
		return err
	}
	return nil
}

// lock acquires the store mutex for non-transactional calls. Inside a
// transaction the manager already holds it.
func (s *memStore) lock(tx repository.Tx) func() {
	if tx != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ---- users ----

type mockUserRepo struct{ store *memStore }

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (r *mockUserRepo) Save(_ context.Context, tx repository.Tx, u *model.User) error {
	defer r.store.lock(tx)()
	for _, other := range r.store.users {
		if other.Email == u.Email && other.ID != u.ID {
			return domain.ErrAlreadyExists
		}
	}
	r.store.users[u.ID] = *u
	return nil
}

func (r *mockUserRepo) FindByID(_ context.Context, tx repository.Tx, id string) (*model.User, error) {
	defer r.store.lock(tx)()
	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (r *mockUserRepo) FindByEmail(_ context.Context, tx repository.Tx, email string) (*model.User, error) {
	defer r.store.lock(tx)()
	for _, u := range r.store.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mockUserRepo) List(_ context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	defer r.store.lock(tx)()
	all := r.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *mockUserRepo) ListRecent(_ context.Context, tx repository.Tx, limit int) ([]*model.User, error) {
	defer r.store.lock(tx)()
	all := r.sorted()
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *mockUserRepo) sorted() []*model.User {
	var all []*model.User
	for _, u := range r.store.users {
		cp := u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (r *mockUserRepo) Delete(_ context.Context, tx repository.Tx, id string) error {
	defer r.store.lock(tx)()
	if _, ok := r.store.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.users, id)
	return nil
}

func (r *mockUserRepo) CountByStatus(_ context.Context, tx repository.Tx) (map[model.UserStatus]int, error) {
	defer r.store.lock(tx)()
	out := make(map[model.UserStatus]int)
	for _, u := range r.store.users {
		out[u.Status]++
	}
	return out, nil
}

// ---- code batches ----

type mockBatchRepo struct{ store *memStore }

var _ repository.CodeBatchRepository = (*mockBatchRepo)(nil)

func (r *mockBatchRepo) Save(_ context.Context, tx repository.Tx, b *model.CodeBatch) error {
	defer r.store.lock(tx)()
	r.store.batches[b.ID] = *b
	return nil
}

func (r *mockBatchRepo) FindByID(_ context.Context, tx repository.Tx, id string) (*model.CodeBatch, error) {
	defer r.store.lock(tx)()
	b, ok := r.store.batches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (r *mockBatchRepo) ListAll(_ context.Context, tx repository.Tx) ([]*model.CodeBatch, error) {
	defer r.store.lock(tx)()
	var all []*model.CodeBatch
	for _, b := range r.store.batches {
		cp := b
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ImportedAt.After(all[j].ImportedAt) })
	return all, nil
}

func (r *mockBatchRepo) SetTotal(_ context.Context, tx repository.Tx, id string, total int) error {
	defer r.store.lock(tx)()
	b, ok := r.store.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.TotalCodes = total
	r.store.batches[id] = b
	return nil
}

func (r *mockBatchRepo) AdjustAssigned(_ context.Context, tx repository.Tx, id string, delta int) error {
	defer r.store.lock(tx)()
	b, ok := r.store.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.AssignedCodes += delta
	if b.AssignedCodes < 0 || b.AssignedCodes > b.TotalCodes {
		return domain.ErrOperationFailed
	}
	r.store.batches[id] = b
	return nil
}

func (r *mockBatchRepo) Delete(_ context.Context, tx repository.Tx, id string) error {
	defer r.store.lock(tx)()
	if _, ok := r.store.batches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.batches, id)
	return nil
}

func (r *mockBatchRepo) CountImportedBy(_ context.Context, tx repository.Tx, userID string) (int, error) {
	defer r.store.lock(tx)()
	n := 0
	for _, b := range r.store.batches {
		if b.ImportedBy == userID {
			n++
		}
	}
	return n, nil
}

func (r *mockBatchRepo) Lock(_ context.Context, tx repository.Tx, id string) error {
	if tx == nil {
		return domain.ErrInvalidExecContext
	}
	// The transaction manager already serializes writers.
	return nil
}

// ---- access codes ----

type mockCodeRepo struct{ store *memStore }

var _ repository.AccessCodeRepository = (*mockCodeRepo)(nil)

func (r *mockCodeRepo) BulkInsert(_ context.Context, tx repository.Tx, codes []*model.AccessCode) error {
	defer r.store.lock(tx)()
	for _, c := range codes {
		for _, other := range r.store.codes {
			if other.Code == c.Code {
				return domain.ErrDuplicateCode
			}
		}
		r.store.codes[c.ID] = *c
	}
	return nil
}

func (r *mockCodeRepo) Save(_ context.Context, tx repository.Tx, c *model.AccessCode) error {
	defer r.store.lock(tx)()
	if _, ok := r.store.codes[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.codes[c.ID] = *c
	return nil
}

func (r *mockCodeRepo) FindByID(_ context.Context, tx repository.Tx, id string) (*model.AccessCode, error) {
	defer r.store.lock(tx)()
	c, ok := r.store.codes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r *mockCodeRepo) ExistsByCode(_ context.Context, tx repository.Tx, code string) (bool, error) {
	defer r.store.lock(tx)()
	for _, c := range r.store.codes {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockCodeRepo) ListByBatch(_ context.Context, tx repository.Tx, batchID string) ([]*model.AccessCode, error) {
	defer r.store.lock(tx)()
	return r.batchCodes(batchID), nil
}

func (r *mockCodeRepo) batchCodes(batchID string) []*model.AccessCode {
	var all []*model.AccessCode
	for _, c := range r.store.codes {
		if c.BatchID == batchID {
			cp := c
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all
}

func (r *mockCodeRepo) ListByUser(_ context.Context, tx repository.Tx, userID string, now time.Time) ([]*model.AccessCode, error) {
	defer r.store.lock(tx)()
	var all []*model.AccessCode
	for _, c := range r.store.codes {
		if c.AssignedTo != nil && *c.AssignedTo == userID && !c.ExpiresAt.Before(now) {
			cp := c
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AssignedAt.After(*all[j].AssignedAt) })
	return all, nil
}

func (r *mockCodeRepo) ClaimUnassigned(_ context.Context, tx repository.Tx, batchID, userID string, count int, at time.Time) ([]*model.AccessCode, error) {
	if tx == nil {
		return nil, domain.ErrInvalidExecContext
	}
	var claimed []*model.AccessCode
	for _, c := range r.batchCodes(batchID) {
		if len(claimed) == count {
			break
		}
		if !c.Assignable() {
			continue
		}
		if err := c.Assign(userID, at); err != nil {
			return nil, err
		}
		r.store.codes[c.ID] = *c
		claimed = append(claimed, c)
	}
	return claimed, nil
}

func (r *mockCodeRepo) UnassignByUser(_ context.Context, tx repository.Tx, userID string) (map[string]int, error) {
	if tx == nil {
		return nil, domain.ErrInvalidExecContext
	}
	released := make(map[string]int)
	for id, c := range r.store.codes {
		if c.AssignedTo != nil && *c.AssignedTo == userID {
			c.AssignedTo = nil
			c.AssignedAt = nil
			r.store.codes[id] = c
			released[c.BatchID]++
		}
	}
	return released, nil
}

func (r *mockCodeRepo) DeleteByBatch(_ context.Context, tx repository.Tx, batchID string) (int, error) {
	defer r.store.lock(tx)()
	n := 0
	for id, c := range r.store.codes {
		if c.BatchID == batchID {
			delete(r.store.codes, id)
			n++
		}
	}
	return n, nil
}

func (r *mockCodeRepo) MarkEmailSent(_ context.Context, tx repository.Tx, codeIDs []string, at time.Time) error {
	defer r.store.lock(tx)()
	for _, id := range codeIDs {
		c, ok := r.store.codes[id]
		if !ok {
			continue
		}
		c.EmailSent = true
		sent := at
		c.EmailSentAt = &sent
		r.store.codes[id] = c
	}
	return nil
}

func (r *mockCodeRepo) Counts(_ context.Context, tx repository.Tx) (int, int, int, error) {
	defer r.store.lock(tx)()
	var total, assigned, used int
	for _, c := range r.store.codes {
		total++
		if c.AssignedTo != nil {
			assigned++
		}
		if c.IsUsed {
			used++
		}
	}
	return total, assigned, used, nil
}

// ---- memberships ----

type mockMembershipRepo struct{ store *memStore }

var _ repository.MembershipRepository = (*mockMembershipRepo)(nil)

func (r *mockMembershipRepo) Save(_ context.Context, tx repository.Tx, m *model.Membership) error {
	defer r.store.lock(tx)()
	r.store.memberships[m.ID] = *m
	return nil
}

func (r *mockMembershipRepo) FindByID(_ context.Context, tx repository.Tx, id string) (*model.Membership, error) {
	defer r.store.lock(tx)()
	m, ok := r.store.memberships[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := m
	return &cp, nil
}

func (r *mockMembershipRepo) FindActiveByUser(_ context.Context, tx repository.Tx, userID string, now time.Time) (*model.Membership, error) {
	defer r.store.lock(tx)()
	for _, m := range r.store.memberships {
		if m.UserID == userID && m.IsActive && !m.EndDate.Before(now) {
			cp := m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *mockMembershipRepo) ListAll(_ context.Context, tx repository.Tx) ([]*model.Membership, error) {
	defer r.store.lock(tx)()
	return r.filter(func(model.Membership) bool { return true }), nil
}

func (r *mockMembershipRepo) ListActive(_ context.Context, tx repository.Tx, now time.Time) ([]*model.Membership, error) {
	defer r.store.lock(tx)()
	return r.filter(func(m model.Membership) bool { return m.IsActive && !m.EndDate.Before(now) }), nil
}

func (r *mockMembershipRepo) ListExpiring(_ context.Context, tx repository.Tx, now time.Time, window time.Duration) ([]*model.Membership, error) {
	defer r.store.lock(tx)()
	limit := now.Add(window)
	return r.filter(func(m model.Membership) bool {
		return m.IsActive && m.EndDate.After(now) && !m.EndDate.After(limit)
	}), nil
}

func (r *mockMembershipRepo) ListExpired(_ context.Context, tx repository.Tx, now time.Time) ([]*model.Membership, error) {
	defer r.store.lock(tx)()
	return r.filter(func(m model.Membership) bool { return m.EndDate.Before(now) }), nil
}

func (r *mockMembershipRepo) ListByUser(_ context.Context, tx repository.Tx, userID string) ([]*model.Membership, error) {
	defer r.store.lock(tx)()
	return r.filter(func(m model.Membership) bool { return m.UserID == userID }), nil
}

func (r *mockMembershipRepo) filter(keep func(model.Membership) bool) []*model.Membership {
	var all []*model.Membership
	for _, m := range r.store.memberships {
		if keep(m) {
			cp := m
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

func (r *mockMembershipRepo) Delete(_ context.Context, tx repository.Tx, id string) error {
	defer r.store.lock(tx)()
	if _, ok := r.store.memberships[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.memberships, id)
	return nil
}

func (r *mockMembershipRepo) DeactivateExpired(_ context.Context, tx repository.Tx, now time.Time) ([]string, error) {
	defer r.store.lock(tx)()
	var userIDs []string
	for id, m := range r.store.memberships {
		if m.IsActive && m.EndDate.Before(now) {
			m.IsActive = false
			m.UpdatedAt = now
			r.store.memberships[id] = m
			userIDs = append(userIDs, m.UserID)
		}
	}
	return userIDs, nil
}

func (r *mockMembershipRepo) Stats(_ context.Context, tx repository.Tx, now time.Time, year int) (*repository.MembershipStats, error) {
	defer r.store.lock(tx)()
	var s repository.MembershipStats
	limit := now.Add(expiringWindow)
	for _, m := range r.store.memberships {
		s.Total++
		if m.IsActive && !m.EndDate.Before(now) {
			s.Active++
		}
		if m.IsActive && m.EndDate.After(now) && !m.EndDate.After(limit) {
			s.Expiring++
		}
		if m.EndDate.Before(now) {
			s.Expired++
		}
		if m.CreatedAt.Year() == year {
			s.ByMonth[int(m.CreatedAt.Month())-1]++
		}
	}
	return &s, nil
}

// ---- adapters ----

// mockSpreadsheet serves pre-baked rows regardless of the reader content.
type mockSpreadsheet struct {
	rows []adapter.Row
	err  error
}

var _ adapter.SpreadsheetReader = (*mockSpreadsheet)(nil)

func (m *mockSpreadsheet) Rows(io.Reader) ([]adapter.Row, error) { return m.rows, m.err }

type sentMail struct {
	userID  string
	batchID string
	codes   int
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	notices []string // membership IDs
	fail    bool
}

var _ adapter.Mailer = (*mockMailer)(nil)

func (m *mockMailer) SendAccessCodes(_ context.Context, user *model.User, codes []*model.AccessCode, batch *model.CodeBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return domain.ErrOperationFailed
	}
	m.sent = append(m.sent, sentMail{userID: user.ID, batchID: batch.ID, codes: len(codes)})
	return nil
}

func (m *mockMailer) SendExpirationNotice(_ context.Context, _ *model.User, membership *model.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return domain.ErrOperationFailed
	}
	m.notices = append(m.notices, membership.ID)
	return nil
}

type mockCache struct {
	mu          sync.Mutex
	stats       *model.DashboardStats
	invalidated int
}

var _ DashboardCache = (*mockCache)(nil)

func (c *mockCache) Get(context.Context) (*model.DashboardStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil {
		return nil, domain.ErrNotFound
	}
	return c.stats, nil
}

func (c *mockCache) Store(_ context.Context, stats *model.DashboardStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
	return nil
}

func (c *mockCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	c.invalidated++
	return nil
}

type mockLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

var _ LoginRateLimiter = (*mockLimiter)(nil)

func (l *mockLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

func (l *mockLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
	return nil
}
