package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

const userColumns = `id, work_email, username, password_hash, full_name, last_login,
	refresh_token, profile_pic, created_at, updated_at`

// UserRepository implements the UserRepository interface for SQLite
type UserRepository struct {
	*BaseRepository[models.User]
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(db *sql.DB, logger *logrus.Logger) repositories.UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository[models.User](db, "users", "user", logger),
	}
}

func scanUser(s scanner) (*models.User, error) {
	var (
		user         models.User
		lastLogin    sql.NullTime
		refreshToken sql.NullString
		profilePic   sql.NullString
	)

	err := s.Scan(
		&user.ID,
		&user.WorkEmail,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&lastLogin,
		&refreshToken,
		&profilePic,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.LastLogin = timePtr(lastLogin)
	user.RefreshToken = stringPtr(refreshToken)
	user.ProfilePic = stringPtr(profilePic)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		user.ID,
		user.WorkEmail,
		user.Username,
		user.PasswordHash,
		user.FullName,
		nullableTime(user.LastLogin),
		nullableString(user.RefreshToken),
		nullableString(user.ProfilePic),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			column := uniqueColumn(err)
			value := user.Username
			if column == "work_email" {
				value = user.WorkEmail
			}
			return repositories.DuplicateError("user", column, value)
		}
		return err
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, operation, where, key string, args ...interface{}) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`

	user, err := scanUser(r.executeQueryRow(ctx, operation, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("user", key)
		}
		return nil, repositories.NewRepositoryError(operation, "user", key, err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}
	return r.getOne(ctx, "get_by_id", "id = ?", id, id)
}

// GetByIdentifier retrieves a user by work email or username
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.getOne(ctx, "get_by_identifier", "work_email = ? OR username = ?", identifier,
		strings.ToLower(identifier), identifier)
}

// ExistsByEmailOrUsername reports whether either value is taken
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	query := `SELECT COUNT(*) FROM users WHERE work_email = ? OR username = ?`
	err := r.executeQueryRow(ctx, "exists_by_email_or_username", query,
		strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(username)).Scan(&count)
	if err != nil {
		return false, repositories.NewRepositoryError("exists_by_email_or_username", "user", "", err)
	}
	return count > 0, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	user.UpdatedAt = models.Now()

	query := `
		UPDATE users
		SET work_email = ?, username = ?, password_hash = ?, full_name = ?, last_login = ?,
			refresh_token = ?, profile_pic = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.executeExec(ctx, "update", query,
		user.WorkEmail,
		user.Username,
		user.PasswordHash,
		user.FullName,
		nullableTime(user.LastLogin),
		nullableString(user.RefreshToken),
		nullableString(user.ProfilePic),
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repositories.DuplicateError("user", uniqueColumn(err), user.Username)
		}
		return err
	}

	return r.checkRowsAffected(result, "update", user.ID)
}
