package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tutorhub/internal/model"
	"tutorhub/internal/repository/base"
)

const userColumns = `id, name, email, password_hash, account_kind, phone_number, profile_image_url,
		education_level, subjects_of_interest, subjects_to_teach, education_levels_to_teach,
		hourly_rate, bio, rating, total_reviews, created_at`

type UserRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{pool: pool, logger: logger}
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, account_kind, phone_number, profile_image_url,
			education_level, subjects_of_interest, subjects_to_teach, education_levels_to_teach,
			hourly_rate, bio, rating, total_reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.AccountKind,
		user.PhoneNumber,
		user.ProfileImageURL,
		user.EducationLevel,
		user.SubjectsOfInterest,
		user.SubjectsToTeach,
		user.EducationLevelsToTeach,
		user.HourlyRate,
		user.Bio,
		user.Rating,
		user.TotalReviews,
	).Scan(&user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// Update обновляет профиль пользователя. Account kind назначается один раз
// при регистрации и здесь не меняется.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $1, phone_number = $2, education_level = $3, subjects_of_interest = $4,
			subjects_to_teach = $5, education_levels_to_teach = $6, hourly_rate = $7, bio = $8
		WHERE id = $9
	`

	result, err := r.pool.Exec(
		ctx, query,
		user.Name,
		user.PhoneNumber,
		user.EducationLevel,
		user.SubjectsOfInterest,
		user.SubjectsToTeach,
		user.EducationLevelsToTeach,
		user.HourlyRate,
		user.Bio,
		user.ID,
	)

	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdateProfileImage обновляет ссылку на аватар
func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, url string) error {
	query := `UPDATE users SET profile_image_url = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, url, id)
	if err != nil {
		return fmt.Errorf("update profile image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// GetTutors получает все аккаунты репетиторов для каталога
func (r *UserRepository) GetTutors(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE account_kind = $1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, model.AccountKindTutor)
	if err != nil {
		return nil, fmt.Errorf("get tutors: %w", err)
	}
	defer rows.Close()

	var tutors []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			// Одна битая запись не должна ронять весь каталог
			r.logger.Warn("Skipping malformed user row", zap.Error(err))
			continue
		}
		tutors = append(tutors, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tutors: %w", err)
	}

	return tutors, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.AccountKind,
		&user.PhoneNumber,
		&user.ProfileImageURL,
		&user.EducationLevel,
		&user.SubjectsOfInterest,
		&user.SubjectsToTeach,
		&user.EducationLevelsToTeach,
		&user.HourlyRate,
		&user.Bio,
		&user.Rating,
		&user.TotalReviews,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
