package repository

import (
	"database/sql"
	"errors"
	"go-tube-api/logger"
	"go-tube-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ErrDuplicateUser is returned when an insert hits the unique index on
// username or email.
var ErrDuplicateUser = errors.New("username or email already exists")

// IUserRepository defines the contract for account storage operations.
type IUserRepository interface {
	Create(user *model.User) error
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	GetByUsernameOrEmail(identifier string) (*model.User, error)
	GetByID(id int) (*model.User, error)
	GetPublicByID(id int) (*model.User, error)
	UpdateAccountDetails(id int, fullName, email string) (*model.User, error)
	UpdateAvatar(id int, url string) (*model.User, error)
	UpdateCoverImage(id int, url string) (*model.User, error)
	UpdatePassword(id int, hashedPassword string) error
	SetRefreshToken(id int, token string) error
	ClearRefreshToken(id int) error
	RotateRefreshToken(id int, presented, next string) (bool, error)
}

// UserRepository implements IUserRepository on top of Postgres.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, username, email, full_name, avatar, cover_image, password, refresh_token, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.Avatar, &user.CoverImage, &user.Password, &user.RefreshToken,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new account. Username and email are expected to be
// normalized (lowercased, trimmed) and the password already hashed.
func (r *UserRepository) Create(user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
	})
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (username, email, full_name, avatar, cover_image, password)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(query, user.Username, user.Email, user.FullName,
		user.Avatar, user.CoverImage, user.Password).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateUser
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

// ExistsByUsernameOrEmail reports whether any account already uses the given
// username or email.
func (r *UserRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	err := r.DB.QueryRow(query, username, email).Scan(&exists)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute user existence query")
		return false, err
	}
	return exists, nil
}

// GetByUsernameOrEmail resolves an account by either identifier. The caller
// passes the normalized form; matching is exact against the stored values.
func (r *UserRepository) GetByUsernameOrEmail(identifier string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1`
	return scanUser(r.DB.QueryRow(query, identifier))
}

func (r *UserRepository) GetByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRow(query, id))
}

// GetPublicByID loads an account without its password and refresh token.
// This is the projection attached to authenticated requests.
func (r *UserRepository) GetPublicByID(id int) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, email, full_name, avatar, cover_image, created_at, updated_at
		FROM users WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(&user.ID, &user.Username, &user.Email,
		&user.FullName, &user.Avatar, &user.CoverImage, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateAccountDetails(id int, fullName, email string) (*model.User, error) {
	log := logger.Log.WithField("user_id", id)
	log.Info("Executing query to update account details")

	query := `UPDATE users SET full_name = $1, email = $2, updated_at = now()
		WHERE id = $3 RETURNING ` + userColumns
	user, err := scanUser(r.DB.QueryRow(query, fullName, email, id))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute update account details query")
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateAvatar(id int, url string) (*model.User, error) {
	query := `UPDATE users SET avatar = $1, updated_at = now()
		WHERE id = $2 RETURNING ` + userColumns
	return scanUser(r.DB.QueryRow(query, url, id))
}

func (r *UserRepository) UpdateCoverImage(id int, url string) (*model.User, error) {
	query := `UPDATE users SET cover_image = $1, updated_at = now()
		WHERE id = $2 RETURNING ` + userColumns
	return scanUser(r.DB.QueryRow(query, url, id))
}

// UpdatePassword stores an already-hashed password. Plaintext never reaches
// this layer and no other update touches the password column, so a value is
// hashed exactly once per change.
func (r *UserRepository) UpdatePassword(id int, hashedPassword string) error {
	log := logger.Log.WithField("user_id", id)
	log.Info("Executing query to update password")

	query := `UPDATE users SET password = $1, updated_at = now() WHERE id = $2`
	_, err := r.DB.Exec(query, hashedPassword, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute update password query")
	}
	return err
}

// SetRefreshToken replaces the stored refresh token, invalidating whatever
// value was there before.
func (r *UserRepository) SetRefreshToken(id int, token string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`
	_, err := r.DB.Exec(query, token, id)
	if err != nil {
		logger.Log.WithField("user_id", id).WithError(err).Error("Failed to execute set refresh token query")
	}
	return err
}

func (r *UserRepository) ClearRefreshToken(id int) error {
	query := `UPDATE users SET refresh_token = '', updated_at = now() WHERE id = $1`
	_, err := r.DB.Exec(query, id)
	if err != nil {
		logger.Log.WithField("user_id", id).WithError(err).Error("Failed to execute clear refresh token query")
	}
	return err
}

// RotateRefreshToken swaps the stored refresh token for a new one, but only
// if the stored value still equals the presented token. The compare-and-swap
// closes the race between two concurrent refresh attempts: exactly one of
// them observes a row update.
func (r *UserRepository) RotateRefreshToken(id int, presented, next string) (bool, error) {
	log := logger.Log.WithField("user_id", id)
	log.Info("Executing query to rotate refresh token")

	query := `UPDATE users SET refresh_token = $1, updated_at = now()
		WHERE id = $2 AND refresh_token = $3`
	res, err := r.DB.Exec(query, next, id, presented)
	if err != nil {
		log.WithError(err).Error("Failed to execute rotate refresh token query")
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
