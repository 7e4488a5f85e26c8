// Package database persists board state in PostgreSQL or SQLite through sqlx
// and keeps the optional MongoDB moderation audit log.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Repository holds every query the board services run. Implementations are
// either bound to the pool or to a single transaction.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	CountUsers(ctx context.Context) (int, error)

	// Post methods
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	IncrementPostViews(ctx context.Context, id uuid.UUID) error
	AdjustPostLikes(ctx context.Context, id uuid.UUID, delta int) error
	ListPosts(ctx context.Context, page models.Page) ([]*models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, page models.Page) ([]*models.Post, error)
	CountPosts(ctx context.Context) (total int, active int, err error)
	CountPostsByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)

	// Vote methods
	GetPostVote(ctx context.Context, postID, userID uuid.UUID) (*models.PostVote, error)
	CreatePostVote(ctx context.Context, vote *models.PostVote) error
	UpdatePostVote(ctx context.Context, id uuid.UUID, isUpvote bool) error
	DeletePostVote(ctx context.Context, id uuid.UUID) error
	CountPostVotes(ctx context.Context, postID uuid.UUID) (*models.VoteCounts, error)

	// Comment methods
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	AdjustCommentLikes(ctx context.Context, id uuid.UUID, delta int) error
	ListTopLevelComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error)
	ListCommentsByAuthor(ctx context.Context, authorID uuid.UUID, page models.Page) ([]*models.Comment, error)
	CountActiveCommentsByPost(ctx context.Context, postID uuid.UUID) (int, error)
	CountComments(ctx context.Context) (total int, active int, err error)
	CountCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)

	// Like methods
	GetCommentLike(ctx context.Context, commentID, userID uuid.UUID) (*models.CommentLike, error)
	CreateCommentLike(ctx context.Context, like *models.CommentLike) error
	DeleteCommentLike(ctx context.Context, id uuid.UUID) error
	CountCommentLikes(ctx context.Context, commentID uuid.UUID) (int, error)

	// Report methods
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	FindReport(ctx context.Context, targetType models.TargetType, targetID, reporterID uuid.UUID) (*models.Report, error)
	UpdateReportStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, at time.Time) error
	ListReports(ctx context.Context, filter models.ReportFilter, page models.Page) ([]*models.Report, error)
	ListReportsForTarget(ctx context.Context, targetType models.TargetType, targetID uuid.UUID) ([]*models.Report, error)
	CountReports(ctx context.Context) ([]models.ReportCount, error)
}

// Store is a Repository that can also open transactions.
type Store interface {
	Repository
	// InTx runs fn against a transaction-bound Repository. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Repository) error) error
	Close(ctx context.Context) error
}

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// repo runs queries against either the pool or a transaction.
type repo struct {
	ext sqlx.ExtContext
	// lock is appended to row reads inside a transaction to take a row lock
	lock string
}

// SQLStore is the sqlx-backed Store used for both PostgreSQL and SQLite.
type SQLStore struct {
	*repo
	DB     *sqlx.DB
	driver string
}

// NewSQLStore opens a connection pool for driver ("postgres" or "sqlite3").
func NewSQLStore(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", driver, err)
	}

	// Configure connection pool
	if driver == DriverSQLite {
		// A single connection keeps in-memory databases alive and serializes writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %v", driver, err)
	}

	slog.Info("Connected to database", "driver", driver)

	return &SQLStore{
		repo:   &repo{ext: db},
		DB:     db,
		driver: driver,
	}, nil
}

// Driver returns the driver name the store was opened with.
func (s *SQLStore) Driver() string {
	return s.driver
}

// Close closes the database connection
func (s *SQLStore) Close(ctx context.Context) error {
	slog.Info("Closing database connection", "driver", s.driver)
	return s.DB.Close()
}

func (s *SQLStore) InTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if Commit succeeds

	txRepo := &repo{ext: tx}
	if s.driver == DriverPostgres {
		txRepo.lock = " FOR UPDATE"
	}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to commit transaction", err)
	}
	return nil
}

func (r *repo) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, r.ext, dest, r.ext.Rebind(query), args...)
}

func (r *repo) selectRows(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.ext, dest, r.ext.Rebind(query), args...)
}

func (r *repo) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.ext.ExecContext(ctx, r.ext.Rebind(query), args...)
}

// execOne runs an update that must touch exactly one row.
func (r *repo) execOne(ctx context.Context, resource string, id uuid.UUID, query string, args ...interface{}) error {
	result, err := r.exec(ctx, query, args...)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to update "+resource, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to get rows affected after update", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError(resource, id)
	}
	return nil
}

func (r *repo) count(ctx context.Context, what string, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.get(ctx, &n, query, args...); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count "+what, err)
	}
	return n, nil
}

// lookupError maps a single-row read failure to NOT_FOUND or a database error.
func lookupError(err error, resource string, id fmt.Stringer) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NewNotFoundError(resource, id)
	}
	return utils.NewAppError(utils.ErrDatabase, "failed to query "+resource, err)
}

// insertError maps unique violations to DUPLICATE.
func insertError(err error, resource string) error {
	if isUniqueViolation(err) {
		return utils.NewAppError(utils.ErrDuplicate, resource+" already exists", err)
	}
	return utils.NewAppError(utils.ErrDatabase, "failed to save "+resource, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

type stringKey string

func (k stringKey) String() string { return string(k) }
