package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestProductFindByIDMalformedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	// Ids decoded from webhook remarks are attacker-controlled; a non-uuid
	// value must be a miss, never a query against the uuid column.
	for _, id := range []string{"plan_123", "", "not-a-uuid"} {
		product, err := repo.FindByID(context.Background(), id)
		if err != nil {
			t.Errorf("FindByID(%q): %v", id, err)
		}
		if product != nil {
			t.Errorf("FindByID(%q) = %+v, want nil", id, product)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}

func TestProductFindByIDMiss(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	id := uuid.NewString()
	mock.ExpectQuery(`SELECT .+ FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	product, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if product != nil {
		t.Errorf("product = %+v, want nil", product)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUserFindByIDMalformedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	user, err := repo.FindByID(context.Background(), "not-a-uuid")
	if err != nil {
		t.Errorf("FindByID: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected SQL issued: %v", err)
	}
}
