package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tutorhub/internal/model"
)

const tokenTTL = 30 * 24 * time.Hour

// UserStore persists accounts. Implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdateProfileImage(ctx context.Context, id, url string) error
}

// BlobStore holds uploaded profile images. Implemented by storage.MinioStore.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

type UserService struct {
	users     UserStore
	blobs     BlobStore
	jwtSecret string
	logger    *zap.Logger
	now       func() time.Time
}

func NewUserService(users UserStore, blobs BlobStore, jwtSecret string, logger *zap.Logger) *UserService {
	return &UserService{
		users:     users,
		blobs:     blobs,
		jwtSecret: jwtSecret,
		logger:    logger,
		now:       time.Now,
	}
}

// Register создаёт аккаунт. Вид аккаунта (student/tutor) фиксируется здесь
// и больше не меняется.
func (s *UserService) Register(ctx context.Context, name, email, password string, kind model.AccountKind) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	switch {
	case name == "":
		return nil, "", fmt.Errorf("%w: name is required", ErrValidation)
	case email == "" || !strings.Contains(email, "@"):
		return nil, "", fmt.Errorf("%w: a valid email is required", ErrValidation)
	case len(password) < 6:
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	case !kind.Valid():
		return nil, "", fmt.Errorf("%w: account type must be student or tutor", ErrValidation)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w: email already registered", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		AccountKind:  kind,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("New user registered",
		zap.String("user_id", user.ID),
		zap.String("account_kind", string(user.AccountKind)),
	)

	return user, token, nil
}

// Login проверяет учётные данные и выдаёт токен
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))

	return user, token, nil
}

// GenerateJWT выдаёт подписанный токен с ID пользователя
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateJWT проверяет токен и возвращает ID пользователя
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("invalid token claims")
	}

	return userID, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return user, nil
}

// ProfileUpdate carries the editable profile fields. Fields outside the
// account's kind are ignored.
type ProfileUpdate struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`

	// Student fields
	EducationLevel     string   `json:"educationLevel"`
	SubjectsOfInterest []string `json:"subjectsOfInterest"`

	// Tutor fields
	SubjectsToTeach        []string `json:"subjectsToTeach"`
	EducationLevelsToTeach []string `json:"educationLevelsToTeach"`
	HourlyRate             float64  `json:"hourlyRate"`
	Bio                    string   `json:"bio"`
}

// UpdateProfile обновляет поля профиля, относящиеся к виду аккаунта
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if user.IsTutor() {
		if in.HourlyRate < 0 {
			return nil, fmt.Errorf("%w: hourly rate must not be negative", ErrValidation)
		}
		user.SubjectsToTeach = in.SubjectsToTeach
		user.EducationLevelsToTeach = in.EducationLevelsToTeach
		user.HourlyRate = in.HourlyRate
		user.Bio = in.Bio
	} else {
		user.EducationLevel = in.EducationLevel
		user.SubjectsOfInterest = in.SubjectsOfInterest
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", user.ID))

	return user, nil
}

// UploadAvatar сохраняет картинку профиля в объектное хранилище и
// прописывает ссылку в аккаунт
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key := "avatars/" + user.ID
	if err := s.blobs.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	url := s.blobs.PublicURL(key)
	if err := s.users.UpdateProfileImage(ctx, user.ID, url); err != nil {
		return "", fmt.Errorf("save avatar url: %w", err)
	}

	s.logger.Info("Avatar uploaded", zap.String("user_id", user.ID))

	return url, nil
}
