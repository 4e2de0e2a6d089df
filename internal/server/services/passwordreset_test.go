package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/cryptox"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/server/models"
)

func TestResetRequest_KnownEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	expectRerollTx(mock)

	user := testUser(t, "hunter2hunter2")
	pr := &fakePasswordResetsRepo{}
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		}},
		pr: pr,
	}
	mail := &fakeMailer{}
	s := NewPasswordResetService(db, rm, mail, &fakeCaptcha{ok: true}, testConfig(), testLogger())

	if err := s.Request(context.Background(), user.Email, "cap-token"); err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if len(pr.deletedUsers) != 1 || !pr.deletedUsers[0].Equal(user.ID) {
		t.Fatal("previous pending reset was not replaced")
	}
	if pr.createCalls != 1 {
		t.Fatalf("create calls = %d, want 1", pr.createCalls)
	}

	msgs := mail.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Body, "/reset-password?token=") {
		t.Fatalf("expected a reset link mail, got %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResetRequest_UnknownEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	pr := &fakePasswordResetsRepo{}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, pr: pr}
	mail := &fakeMailer{}
	s := NewPasswordResetService(db, rm, mail, &fakeCaptcha{ok: true}, testConfig(), testLogger())

	if err := s.Request(context.Background(), "nobody@example.com", "cap-token"); err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if pr.createCalls != 0 {
		t.Fatal("no reset row should be created for an unknown email")
	}

	msgs := mail.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Subject, "Password reset failed") {
		t.Fatalf("expected a reset-failed notice, got %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResetComplete_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	userID, _ := ident.New(ident.UserIDLength)
	token, _ := ident.New(ident.TokenLength)
	u := &fakeUsersRepo{}
	rm := &fakeRepoManager{
		u: u,
		pr: &fakePasswordResetsRepo{consumeFn: func(ctx context.Context, tokenHash []byte) (ident.ID, error) {
			return userID, nil
		}},
	}
	s := NewPasswordResetService(db, rm, &fakeMailer{}, &fakeCaptcha{ok: true}, testConfig(), testLogger())

	if err := s.Complete(context.Background(), token.String(), "new-password-1"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if u.updatePasswdCall != 1 || !u.updatedID.Equal(userID) {
		t.Fatal("password hash was not updated for the consumed user")
	}
	if !cryptox.VerifySalted([]byte("new-password-1"), u.updatedHash) {
		t.Fatal("updated hash does not verify against the new password")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResetComplete_UnknownToken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	token, _ := ident.New(ident.TokenLength)
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, pr: &fakePasswordResetsRepo{}}
	s := NewPasswordResetService(db, rm, &fakeMailer{}, &fakeCaptcha{ok: true}, testConfig(), testLogger())

	err := s.Complete(context.Background(), token.String(), "new-password-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("error = %v, want ErrorNotFound", err)
	}
}
