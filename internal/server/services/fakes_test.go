package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/logging"
	"github.com/filehaven/filehaven/internal/server/mailer"
	"github.com/filehaven/filehaven/internal/server/models"
	filesrepo "github.com/filehaven/filehaven/internal/server/repositories/files"
	passwordresetsrepo "github.com/filehaven/filehaven/internal/server/repositories/passwordresets"
	sessionsrepo "github.com/filehaven/filehaven/internal/server/repositories/sessions"
	unverifiedemailsrepo "github.com/filehaven/filehaven/internal/server/repositories/unverifiedemails"
	usersrepo "github.com/filehaven/filehaven/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// expectRerollTx sets up the statements RerollOnCollision issues for a
// first-try insert inside a serializable transaction.
func expectRerollTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec("^SAVEPOINT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("^RELEASE SAVEPOINT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

// --- fake repositories ---

type fakeUsersRepo struct {
	createFn         func(ctx context.Context, user *models.User) error
	getByEmailFn     func(ctx context.Context, email string) (*models.User, error)
	updatedID        ident.ID
	updatedHash      string
	updatePasswdErr  error
	createCalls      int
	getByEmailCalls  int
	updatePasswdCall int
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) error {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(ctx, user)
	}
	return nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.getByEmailCalls++
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id ident.ID) (*models.User, error) {
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id ident.ID, passwordHash string) error {
	f.updatePasswdCall++
	f.updatedID = id
	f.updatedHash = passwordHash
	return f.updatePasswdErr
}

type fakeSessionsRepo struct {
	createFn      func(ctx context.Context, tokenHash []byte, userID ident.ID) error
	getUserFn     func(ctx context.Context, tokenHash []byte) (*models.User, error)
	deletedHashes [][]byte
	deleteErr     error
	createCalls   int
}

func (f *fakeSessionsRepo) Create(ctx context.Context, tokenHash []byte, userID ident.ID) error {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(ctx, tokenHash, userID)
	}
	return nil
}

func (f *fakeSessionsRepo) GetUser(ctx context.Context, tokenHash []byte) (*models.User, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, tokenHash)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, tokenHash []byte) error {
	f.deletedHashes = append(f.deletedHashes, tokenHash)
	return f.deleteErr
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	return 0, nil
}

type fakeUnverifiedEmailsRepo struct {
	createFn       func(ctx context.Context, tokenHash []byte, email string) error
	findByTokenFn  func(ctx context.Context, tokenHash []byte) (*models.UnverifiedEmail, error)
	findByEmailFn  func(ctx context.Context, email string) (*models.UnverifiedEmail, error)
	setCodeHashFn  func(ctx context.Context, tokenHash []byte, codeHash string) (string, error)
	deletedEmails  []string
	deleteErr      error
	createCalls    int
	lastCreatedFor string
}

func (f *fakeUnverifiedEmailsRepo) Create(ctx context.Context, tokenHash []byte, email string) error {
	f.createCalls++
	f.lastCreatedFor = email
	if f.createFn != nil {
		return f.createFn(ctx, tokenHash, email)
	}
	return nil
}

func (f *fakeUnverifiedEmailsRepo) FindByTokenHash(ctx context.Context, tokenHash []byte) (*models.UnverifiedEmail, error) {
	if f.findByTokenFn != nil {
		return f.findByTokenFn(ctx, tokenHash)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUnverifiedEmailsRepo) FindByEmail(ctx context.Context, email string) (*models.UnverifiedEmail, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUnverifiedEmailsRepo) SetCodeHash(ctx context.Context, tokenHash []byte, codeHash string) (string, error) {
	if f.setCodeHashFn != nil {
		return f.setCodeHashFn(ctx, tokenHash, codeHash)
	}
	return "", common.ErrorNotFound
}

func (f *fakeUnverifiedEmailsRepo) DeleteByEmail(ctx context.Context, email string) error {
	f.deletedEmails = append(f.deletedEmails, email)
	return f.deleteErr
}

type fakePasswordResetsRepo struct {
	createFn     func(ctx context.Context, tokenHash []byte, userID ident.ID) error
	findEmailFn  func(ctx context.Context, tokenHash []byte) (string, error)
	consumeFn    func(ctx context.Context, tokenHash []byte) (ident.ID, error)
	deletedUsers []ident.ID
	createCalls  int
}

func (f *fakePasswordResetsRepo) Create(ctx context.Context, tokenHash []byte, userID ident.ID) error {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(ctx, tokenHash, userID)
	}
	return nil
}

func (f *fakePasswordResetsRepo) FindEmail(ctx context.Context, tokenHash []byte) (string, error) {
	if f.findEmailFn != nil {
		return f.findEmailFn(ctx, tokenHash)
	}
	return "", common.ErrorNotFound
}

func (f *fakePasswordResetsRepo) Consume(ctx context.Context, tokenHash []byte) (ident.ID, error) {
	if f.consumeFn != nil {
		return f.consumeFn(ctx, tokenHash)
	}
	return nil, common.ErrorNotFound
}

func (f *fakePasswordResetsRepo) DeleteByUser(ctx context.Context, userID ident.ID) error {
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

type fakeFilesRepo struct {
	createFn    func(ctx context.Context, file *models.File) error
	getFn       func(ctx context.Context, userID, id ident.ID) (*models.File, error)
	listFn      func(ctx context.Context, userID ident.ID) ([]*models.File, error)
	deleteFn    func(ctx context.Context, userID, id ident.ID) (*models.File, error)
	markedIDs   []ident.ID
	markErr     error
	createCalls int
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) error {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(ctx, file)
	}
	return nil
}

func (f *fakeFilesRepo) Get(ctx context.Context, userID, id ident.ID) (*models.File, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID, id)
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFilesRepo) List(ctx context.Context, userID ident.ID) ([]*models.File, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeFilesRepo) MarkUploaded(ctx context.Context, userID, id ident.ID) error {
	f.markedIDs = append(f.markedIDs, id)
	return f.markErr
}

func (f *fakeFilesRepo) Delete(ctx context.Context, userID, id ident.ID) (*models.File, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}
	return nil, common.ErrorNotFound
}

// --- fake repository manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	s  *fakeSessionsRepo
	ue *fakeUnverifiedEmailsRepo
	pr *fakePasswordResetsRepo
	f  *fakeFilesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository {
	return m.s
}
func (m *fakeRepoManager) UnverifiedEmails(db dbx.DBTX) unverifiedemailsrepo.Repository {
	return m.ue
}
func (m *fakeRepoManager) PasswordResets(db dbx.DBTX) passwordresetsrepo.Repository {
	return m.pr
}
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository { return m.f }

// --- fake collaborators ---

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

type fakeCaptcha struct {
	ok     bool
	err    error
	tokens []string
}

func (f *fakeCaptcha) Verify(ctx context.Context, token string) (bool, error) {
	f.tokens = append(f.tokens, token)
	return f.ok, f.err
}
