package web

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/worker"
	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

// Function-field stubs. Unset fields return ErrNotFound so routes under
// test only need the calls they exercise.

type stubUserUC struct {
	authenticate func(ctx context.Context, email, password string) (*model.User, error)
	register     func(ctx context.Context, first, last, email, password, phone string) (*model.User, error)
	get          func(ctx context.Context, id string) (*model.User, error)
	list         func(ctx context.Context, offset, limit int) ([]*model.User, error)
	listRecent   func(ctx context.Context, limit int) ([]*model.User, error)
	del          func(ctx context.Context, id string) error
}

var _ usecase.UserUseCase = (*stubUserUC)(nil)

func (s *stubUserUC) Register(ctx context.Context, first, last, email, password, phone string) (*model.User, error) {
	if s.register == nil {
		return nil, domain.ErrNotFound
	}
	return s.register(ctx, first, last, email, password, phone)
}

func (s *stubUserUC) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if s.authenticate == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.authenticate(ctx, email, password)
}

func (s *stubUserUC) Get(ctx context.Context, id string) (*model.User, error) {
	if s.get == nil {
		return nil, domain.ErrNotFound
	}
	return s.get(ctx, id)
}

func (s *stubUserUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	if s.list == nil {
		return nil, nil
	}
	return s.list(ctx, offset, limit)
}

func (s *stubUserUC) ListRecent(ctx context.Context, limit int) ([]*model.User, error) {
	if s.listRecent == nil {
		return nil, nil
	}
	return s.listRecent(ctx, limit)
}

func (s *stubUserUC) Update(context.Context, string, usecase.UserUpdate) (*model.User, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUserUC) ChangePassword(context.Context, string, string, string) error {
	return domain.ErrNotFound
}

func (s *stubUserUC) Delete(ctx context.Context, id string) error {
	if s.del == nil {
		return domain.ErrNotFound
	}
	return s.del(ctx, id)
}

type stubImportUC struct {
	importCodes func(ctx context.Context, req usecase.ImportRequest, file io.Reader) (*usecase.ImportResult, error)
}

var _ usecase.ImportUseCase = (*stubImportUC)(nil)

func (s *stubImportUC) ImportCodes(ctx context.Context, req usecase.ImportRequest, file io.Reader) (*usecase.ImportResult, error) {
	if s.importCodes == nil {
		return nil, domain.ErrOperationFailed
	}
	return s.importCodes(ctx, req, file)
}

type stubAssignUC struct {
	assign func(ctx context.Context, batchID, userID string, count int) ([]*model.AccessCode, error)
}

var _ usecase.AssignUseCase = (*stubAssignUC)(nil)

func (s *stubAssignUC) Assign(ctx context.Context, batchID, userID string, count int) ([]*model.AccessCode, error) {
	if s.assign == nil {
		return nil, domain.ErrNotFound
	}
	return s.assign(ctx, batchID, userID, count)
}

type stubCodeUC struct {
	listByUser func(ctx context.Context, userID string) ([]*model.AccessCode, error)
	update     func(ctx context.Context, codeID string, upd usecase.CodeUpdate) (*model.AccessCode, error)
}

var _ usecase.CodeUseCase = (*stubCodeUC)(nil)

func (s *stubCodeUC) Get(context.Context, string) (*model.AccessCode, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCodeUC) ListByBatch(context.Context, string) ([]*model.AccessCode, error) {
	return nil, nil
}

func (s *stubCodeUC) ListByUser(ctx context.Context, userID string) ([]*model.AccessCode, error) {
	if s.listByUser == nil {
		return nil, nil
	}
	return s.listByUser(ctx, userID)
}

func (s *stubCodeUC) Update(ctx context.Context, codeID string, upd usecase.CodeUpdate) (*model.AccessCode, error) {
	if s.update == nil {
		return nil, domain.ErrNotFound
	}
	return s.update(ctx, codeID, upd)
}

func (s *stubCodeUC) Unassign(ctx context.Context, codeID string) (*model.AccessCode, error) {
	empty := ""
	return s.Update(ctx, codeID, usecase.CodeUpdate{AssignTo: &empty})
}

type stubBatchUC struct {
	get    func(ctx context.Context, id string) (*model.CodeBatch, error)
	list   func(ctx context.Context) ([]*model.CodeBatch, error)
	delete func(ctx context.Context, id string) (int, error)
}

var _ usecase.BatchUseCase = (*stubBatchUC)(nil)

func (s *stubBatchUC) Get(ctx context.Context, id string) (*model.CodeBatch, error) {
	if s.get == nil {
		return nil, domain.ErrNotFound
	}
	return s.get(ctx, id)
}

func (s *stubBatchUC) List(ctx context.Context) ([]*model.CodeBatch, error) {
	if s.list == nil {
		return nil, nil
	}
	return s.list(ctx)
}

func (s *stubBatchUC) Delete(ctx context.Context, id string) (int, error) {
	if s.delete == nil {
		return 0, domain.ErrNotFound
	}
	return s.delete(ctx, id)
}

type stubMembershipUC struct {
	create       func(ctx context.Context, req usecase.MembershipRequest) (*model.Membership, error)
	listByUser   func(ctx context.Context, userID string) ([]*model.Membership, error)
	listExpiring func(ctx context.Context, window time.Duration) ([]*model.Membership, error)
}

var _ usecase.MembershipUseCase = (*stubMembershipUC)(nil)

func (s *stubMembershipUC) Create(ctx context.Context, req usecase.MembershipRequest) (*model.Membership, error) {
	if s.create == nil {
		return nil, domain.ErrNotFound
	}
	return s.create(ctx, req)
}

func (s *stubMembershipUC) Get(context.Context, string) (*model.Membership, error) {
	return nil, domain.ErrNotFound
}

func (s *stubMembershipUC) ListAll(context.Context) ([]*model.Membership, error) { return nil, nil }

func (s *stubMembershipUC) ListActive(context.Context) ([]*model.Membership, error) {
	return nil, nil
}

func (s *stubMembershipUC) ListExpiring(ctx context.Context, window time.Duration) ([]*model.Membership, error) {
	if s.listExpiring == nil {
		return nil, nil
	}
	return s.listExpiring(ctx, window)
}

func (s *stubMembershipUC) ListExpired(context.Context) ([]*model.Membership, error) {
	return nil, nil
}

func (s *stubMembershipUC) ListByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	if s.listByUser == nil {
		return nil, nil
	}
	return s.listByUser(ctx, userID)
}

func (s *stubMembershipUC) Renew(context.Context, string) (*model.Membership, error) {
	return nil, domain.ErrNotFound
}

func (s *stubMembershipUC) RecordPayment(context.Context, string, string) (*model.Membership, error) {
	return nil, domain.ErrNotFound
}

func (s *stubMembershipUC) Update(context.Context, string, usecase.MembershipUpdate) (*model.Membership, error) {
	return nil, domain.ErrNotFound
}

func (s *stubMembershipUC) Delete(context.Context, string) error { return domain.ErrNotFound }

func (s *stubMembershipUC) ExpireLapsed(context.Context) (int, error) { return 0, nil }

type stubStatsUC struct {
	dashboard func(ctx context.Context) (*model.DashboardStats, error)
}

var _ usecase.StatsUseCase = (*stubStatsUC)(nil)

func (s *stubStatsUC) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	if s.dashboard == nil {
		return &model.DashboardStats{GeneratedAt: time.Now()}, nil
	}
	return s.dashboard(ctx)
}

type stubNotifyUC struct {
	deliver func(ctx context.Context, userID, batchID string, codes []*model.AccessCode) error
	expiry  func(ctx context.Context, window time.Duration) (int, error)
}

var _ usecase.NotificationUseCase = (*stubNotifyUC)(nil)

func (s *stubNotifyUC) DeliverAccessCodes(ctx context.Context, userID, batchID string, codes []*model.AccessCode) error {
	if s.deliver == nil {
		return nil
	}
	return s.deliver(ctx, userID, batchID, codes)
}

func (s *stubNotifyUC) NotifyExpiring(ctx context.Context, window time.Duration) (int, error) {
	if s.expiry == nil {
		return 0, nil
	}
	return s.expiry(ctx, window)
}

// syncQueue runs submitted tasks inline so tests observe their effects
// without timing games.
type syncQueue struct{ tasks int }

func (q *syncQueue) Submit(task worker.Task) error {
	q.tasks++
	return task(context.Background())
}

type serverFixture struct {
	users       *stubUserUC
	importer    *stubImportUC
	assigner    *stubAssignUC
	codes       *stubCodeUC
	batches     *stubBatchUC
	memberships *stubMembershipUC
	stats       *stubStatsUC
	notify      *stubNotifyUC
	queue       *syncQueue
	auth        *AuthManager
	srv         *Server
}

func newServerFixture() *serverFixture {
	nop := zerolog.Nop()
	f := &serverFixture{
		users:       &stubUserUC{},
		importer:    &stubImportUC{},
		assigner:    &stubAssignUC{},
		codes:       &stubCodeUC{},
		batches:     &stubBatchUC{},
		memberships: &stubMembershipUC{},
		stats:       &stubStatsUC{},
		notify:      &stubNotifyUC{},
		queue:       &syncQueue{},
		auth:        NewAuthManager("test-secret", false, "", time.Hour),
	}
	f.srv = NewServer(f.users, f.importer, f.assigner, f.codes, f.batches,
		f.memberships, f.stats, f.notify, f.auth, f.queue, &nop)
	return f
}

func testUser(id string, role model.UserRole) *model.User {
	return &model.User{
		ID:        id,
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     id + "@astt.fr",
		Role:      role,
		Status:    model.StatusActive,
		CreatedAt: time.Now(),
	}
}
