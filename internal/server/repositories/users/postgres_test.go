package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestCreate_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	id, _ := ident.New(ident.UserIDLength)
	user := &models.User{ID: id, Email: "ann@example.com", Name: "Ann", PasswordHash: "$argon2id$..."}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs([]byte(id), user.Email, user.Name, user.PasswordHash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewPostgresRepository(db)
	if err := r.Create(context.Background(), user); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_EmailTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	id, _ := ident.New(ident.UserIDLength)
	r := NewPostgresRepository(db)
	err = r.Create(context.Background(), &models.User{ID: id, Email: "ann@example.com"})
	if !errors.Is(err, common.ErrorEmailTaken) {
		t.Fatalf("error = %v, want ErrorEmailTaken", err)
	}
}

func TestCreate_PKCollisionStaysClassifiable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: PKConstraint})

	id, _ := ident.New(ident.UserIDLength)
	r := NewPostgresRepository(db)
	err = r.Create(context.Background(), &models.User{ID: id, Email: "ann@example.com"})
	if err == nil {
		t.Fatal("expected an error")
	}
	// The wrap must keep the pg error reachable for the collision loop.
	if !dbx.IsUniqueViolation(err, PKConstraint) {
		t.Fatalf("PK collision lost its classification: %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	id, _ := ident.New(ident.UserIDLength)
	created := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at"}).
		AddRow([]byte(id), "ann@example.com", "Ann", "$argon2id$...", created)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password_hash, created_at FROM users")).
		WithArgs("ann@example.com").
		WillReturnRows(rows)

	r := NewPostgresRepository(db)
	user, err := r.GetByEmail(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if !user.ID.Equal(id) || user.Name != "Ann" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password_hash, created_at FROM users")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at"}))

	r := NewPostgresRepository(db)
	if _, err := r.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("error = %v, want ErrorNotFound", err)
	}
}
