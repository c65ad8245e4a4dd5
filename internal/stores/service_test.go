package stores

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
)

type stubRepo struct {
	stores map[int64]*models.Store
	nextID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{stores: make(map[int64]*models.Store), nextID: 1}
}

func (s *stubRepo) Create(_ context.Context, store *models.Store) (*models.Store, error) {
	store.ID = s.nextID
	s.nextID++
	s.stores[store.ID] = store
	return store, nil
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*models.Store, error) {
	store, ok := s.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return store, nil
}

func (s *stubRepo) FindActiveByOwner(_ context.Context, ownerUserID int64) (*models.Store, error) {
	for _, store := range s.stores {
		if store.OwnerUserID == ownerUserID && store.IsActive {
			return store, nil
		}
	}
	return nil, nil
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected pkg error with code %s, got %v", want, err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, appErr.Code(), err)
	}
}

func TestCreateStore(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	store, err := svc.Create(context.Background(), 9, CreateStoreInput{
		Name:    "  Surat Audio Hub  ",
		City:    "Surat",
		Pincode: "395007",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.Name != "Surat Audio Hub" {
		t.Fatalf("expected trimmed name, got %q", store.Name)
	}
	if store.OwnerUserID != 9 || !store.IsActive {
		t.Fatalf("unexpected store: %+v", store)
	}
}

func TestCreateStoreRejectsSecondActiveStore(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), 9, CreateStoreInput{Name: "First", City: "Surat", Pincode: "395007"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Create(context.Background(), 9, CreateStoreInput{Name: "Second", City: "Surat", Pincode: "395001"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateStoreValidation(t *testing.T) {
	svc, _ := NewService(newStubRepo())

	cases := []struct {
		name  string
		owner int64
		input CreateStoreInput
	}{
		{"missing owner", 0, CreateStoreInput{Name: "A", City: "Surat", Pincode: "395001"}},
		{"missing name", 9, CreateStoreInput{City: "Surat", Pincode: "395001"}},
		{"missing city", 9, CreateStoreInput{Name: "A", Pincode: "395001"}},
		{"short pincode", 9, CreateStoreInput{Name: "A", City: "Surat", Pincode: "3950"}},
		{"non-numeric pincode", 9, CreateStoreInput{Name: "A", City: "Surat", Pincode: "39500x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.owner, tc.input)
			assertCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestGetStore(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), 4, CreateStoreInput{Name: "A", City: "Surat", Pincode: "394210"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected store %d, got %d", created.ID, got.ID)
	}

	_, err = svc.Get(context.Background(), 999)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetMine(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	_, err := svc.GetMine(context.Background(), 4)
	assertCode(t, err, pkgerrors.CodeNotFound)

	if _, err := svc.Create(context.Background(), 4, CreateStoreInput{Name: "A", City: "Surat", Pincode: "394210"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := svc.GetMine(context.Background(), 4)
	if err != nil {
		t.Fatalf("get mine: %v", err)
	}
	if mine.OwnerUserID != 4 {
		t.Fatalf("expected owner 4, got %d", mine.OwnerUserID)
	}
}
