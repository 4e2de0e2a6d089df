package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/filehaven/filehaven/internal/common"
	"github.com/filehaven/filehaven/internal/dbx"
	"github.com/filehaven/filehaven/internal/ident"
	"github.com/filehaven/filehaven/internal/logging"
	sc "github.com/filehaven/filehaven/internal/server/config"
	"github.com/filehaven/filehaven/internal/server/models"
	"github.com/filehaven/filehaven/internal/server/repositories/files"
	"github.com/filehaven/filehaven/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// FileService manages file metadata rows and the presigned URLs clients use
// to move content in and out of object storage.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
	txOpts      *dbx.Options
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, logger logging.Logger) *FileService {
	l := logger.With("service", "files")
	return &FileService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      l,
		txOpts:      txOptions(cfg, l),
	}
}

// GetRandomStorageKey produces an object key that never collides and never
// derives from user input.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *FileService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

func (s *FileService) getPresignClient() (*s3.PresignClient, error) {
	client, err := s.getS3Client()
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// Create records file metadata and returns a presigned PUT URL for the
// content. The 8-byte file ID rerolls inside a savepoint on collision; a
// duplicate (user, name) pair surfaces as common.ErrorNameTaken. The URL is
// presigned only after the row has committed.
func (s *FileService) Create(ctx context.Context, userID ident.ID, name string, size int64, contentType string) (*models.File, string, error) {
	id, err := ident.New(ident.UserIDLength)
	if err != nil {
		return nil, "", fmt.Errorf("error generating file id: %w", err)
	}

	file := &models.File{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Size:        size,
		ContentType: contentType,
		StorageKey:  GetRandomStorageKey(),
	}

	file, err = dbx.Serializable(ctx, s.db, s.txOpts, func(ctx context.Context, tx dbx.DBTX) (*models.File, error) {
		filesRepo := s.repomanager.Files(tx)
		err := dbx.RerollOnCollision(ctx, tx, files.PKConstraint, id.Reroll, func(ctx context.Context) error {
			return filesRepo.Create(ctx, file)
		})
		return file, err
	})
	if err != nil {
		return nil, "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", err
	}
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(file.StorageKey),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, "", err
	}

	return file, req.URL, nil
}

// MarkUploaded flips the uploaded flag once the client has finished the
// presigned PUT.
func (s *FileService) MarkUploaded(ctx context.Context, userID, id ident.ID) error {
	return s.repomanager.Files(s.db).MarkUploaded(ctx, userID, id)
}

// List returns the user's files, newest first.
func (s *FileService) List(ctx context.Context, userID ident.ID) ([]*models.File, error) {
	return s.repomanager.Files(s.db).List(ctx, userID)
}

// Download returns a presigned GET URL for a fully uploaded file.
func (s *FileService) Download(ctx context.Context, userID, id ident.ID) (*models.File, string, error) {
	file, err := s.repomanager.Files(s.db).Get(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if !file.Uploaded {
		return nil, "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", err
	}
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(file.StorageKey),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, "", err
	}
	return file, req.URL, nil
}

// Delete removes the metadata row, then the stored object. The object
// delete runs after commit; if it fails the orphan is logged and left for
// storage cleanup rather than failing the request.
func (s *FileService) Delete(ctx context.Context, userID, id ident.ID) error {
	file, err := dbx.Serializable(ctx, s.db, s.txOpts, func(ctx context.Context, tx dbx.DBTX) (*models.File, error) {
		return s.repomanager.Files(tx).Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	client, err := s.getS3Client()
	if err != nil {
		s.logger.Error(ctx, "error deleting object", "key", file.StorageKey, "error", err)
		return nil
	}
	if _, err := deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(file.StorageKey),
	}); err != nil {
		s.logger.Error(ctx, "error deleting object", "key", file.StorageKey, "error", err)
	}
	return nil
}
