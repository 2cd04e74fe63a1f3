package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
)

type testEnv struct {
	store       *memStore
	users       *mockUserRepo
	batches     *mockBatchRepo
	codes       *mockCodeRepo
	memberships *mockMembershipRepo
	tm          *memTxManager
	cache       *mockCache
	log         *zerolog.Logger
}

func newTestEnv() *testEnv {
	store := newMemStore()
	nop := zerolog.Nop()
	return &testEnv{
		store:       store,
		users:       &mockUserRepo{store: store},
		batches:     &mockBatchRepo{store: store},
		codes:       &mockCodeRepo{store: store},
		memberships: &mockMembershipRepo{store: store},
		tm:          &memTxManager{store: store},
		cache:       &mockCache{},
		log:         &nop,
	}
}

func (e *testEnv) addUser(t *testing.T, email string, role model.UserRole) *model.User {
	t.Helper()
	u, err := model.NewUser("", "Jean", "Dupont", email, "$2a$10$hash")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	u.Role = role
	if err := e.users.Save(context.Background(), nil, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return u
}

func (e *testEnv) addBatch(t *testing.T, admin *model.User, n int) *model.CodeBatch {
	t.Helper()
	ctx := context.Background()
	b, err := model.NewCodeBatch("Saison 2026", "", admin.ID, time.Now().Add(90*24*time.Hour))
	if err != nil {
		t.Fatalf("NewCodeBatch: %v", err)
	}
	b.TotalCodes = n
	if err := e.batches.Save(ctx, nil, b); err != nil {
		t.Fatalf("save batch: %v", err)
	}
	for i := 0; i < n; i++ {
		c, _ := model.NewAccessCode(fmt.Sprintf("VR-%s-%04d", b.ID[len(b.ID)-6:], i), b.ID, b.ExpiryDate)
		if err := e.codes.BulkInsert(ctx, nil, []*model.AccessCode{c}); err != nil {
			t.Fatalf("insert code: %v", err)
		}
	}
	return b
}

func codeRows(values ...string) []adapter.Row {
	rows := make([]adapter.Row, len(values))
	for i, v := range values {
		rows[i] = adapter.Row{"code": v}
	}
	return rows
}

func importReq(admin *model.User) ImportRequest {
	return ImportRequest{
		Name:       "Saison 2026",
		SourceFile: "codes.xlsx",
		ExpiryDate: time.Now().Add(90 * 24 * time.Hour),
		ImportedBy: admin.ID,
	}
}

func TestImportCodes(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "admin@astt.fr", model.RoleAdmin)
	uc := NewImportUseCase(&mockSpreadsheet{rows: codeRows("VR-0001", "VR-0002", "VR-0003")},
		env.batches, env.codes, env.tm, env.cache, env.log)

	res, err := uc.ImportCodes(context.Background(), importReq(admin), strings.NewReader(""))
	if err != nil {
		t.Fatalf("ImportCodes: %v", err)
	}
	if res.Imported != 3 || len(res.Duplicates) != 0 || res.SkippedRows != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Batch.TotalCodes != 3 {
		t.Fatalf("expected total 3, got %d", res.Batch.TotalCodes)
	}

	stored, err := env.batches.FindByID(context.Background(), nil, res.Batch.ID)
	if err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if stored.TotalCodes != 3 || stored.AssignedCodes != 0 {
		t.Fatalf("unexpected stored batch %+v", stored)
	}
	codes, _ := env.codes.ListByBatch(context.Background(), nil, res.Batch.ID)
	if len(codes) != 3 {
		t.Fatalf("expected 3 persisted codes, got %d", len(codes))
	}
	for _, c := range codes {
		if !c.ExpiresAt.Equal(stored.ExpiryDate) {
			t.Errorf("code %s expiry not copied from batch", c.Code)
		}
	}
	if env.cache.invalidated == 0 {
		t.Error("expected stats cache invalidation")
	}
}

func TestImportCodes_RejectsDuplicatesAndEmptyRows(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "admin@astt.fr", model.RoleAdmin)

	// One code already exists from a previous batch.
	prev := env.addBatch(t, admin, 1)
	existing, _ := env.codes.ListByBatch(context.Background(), nil, prev.ID)

	rows := codeRows("VR-1001", existing[0].Code, "VR-1001", "")
	uc := NewImportUseCase(&mockSpreadsheet{rows: rows}, env.batches, env.codes, env.tm, env.cache, env.log)

	res, err := uc.ImportCodes(context.Background(), importReq(admin), strings.NewReader(""))
	if err != nil {
		t.Fatalf("ImportCodes: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", res.Imported)
	}
	if len(res.Duplicates) != 2 {
		t.Fatalf("expected 2 duplicates, got %v", res.Duplicates)
	}
	if res.SkippedRows != 1 {
		t.Fatalf("expected 1 skipped row, got %d", res.SkippedRows)
	}
	if res.Batch.TotalCodes != 1 {
		t.Fatalf("total must match accepted codes, got %d", res.Batch.TotalCodes)
	}
}

func TestImportCodes_AllRejectedKeepsEmptyBatch(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "admin@astt.fr", model.RoleAdmin)
	prev := env.addBatch(t, admin, 2)
	existing, _ := env.codes.ListByBatch(context.Background(), nil, prev.ID)

	rows := codeRows(existing[0].Code, existing[1].Code)
	uc := NewImportUseCase(&mockSpreadsheet{rows: rows}, env.batches, env.codes, env.tm, env.cache, env.log)

	res, err := uc.ImportCodes(context.Background(), importReq(admin), strings.NewReader(""))
	if err != nil {
		t.Fatalf("ImportCodes: %v", err)
	}
	if res.Imported != 0 || len(res.Duplicates) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	// The batch record survives with zero codes for auditability.
	stored, err := env.batches.FindByID(context.Background(), nil, res.Batch.ID)
	if err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if stored.TotalCodes != 0 {
		t.Fatalf("expected empty batch, got total %d", stored.TotalCodes)
	}
}

func TestImportCodes_EmptyFile(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser(t, "admin@astt.fr", model.RoleAdmin)
	uc := NewImportUseCase(&mockSpreadsheet{rows: nil}, env.batches, env.codes, env.tm, env.cache, env.log)

	_, err := uc.ImportCodes(context.Background(), importReq(admin), strings.NewReader(""))
	if !errors.Is(err, domain.ErrEmptyImport) {
		t.Fatalf("expected ErrEmptyImport, got %v", err)
	}
	batches, _ := env.batches.ListAll(context.Background(), nil)
	if len(batches) != 0 {
		t.Fatalf("no batch must be persisted for an empty file, got %d", len(batches))
	}
}
