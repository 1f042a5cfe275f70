package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"tutorhub/internal/model"
)

type fakeAccountStore struct {
	byID map[string]*model.User
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{byID: make(map[string]*model.User)}
}

func (f *fakeAccountStore) Create(_ context.Context, user *model.User) error {
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) Update(_ context.Context, user *model.User) error {
	stored, ok := f.byID[user.ID]
	if !ok {
		return errors.New("user not found")
	}
	stored.Name = user.Name
	stored.PhoneNumber = user.PhoneNumber
	stored.EducationLevel = user.EducationLevel
	stored.SubjectsOfInterest = user.SubjectsOfInterest
	stored.SubjectsToTeach = user.SubjectsToTeach
	stored.EducationLevelsToTeach = user.EducationLevelsToTeach
	stored.HourlyRate = user.HourlyRate
	stored.Bio = user.Bio
	return nil
}

func (f *fakeAccountStore) UpdateProfileImage(_ context.Context, id, url string) error {
	stored, ok := f.byID[id]
	if !ok {
		return errors.New("user not found")
	}
	stored.ProfileImageURL = url
	return nil
}

type fakeBlobStore struct {
	objects map[string][]byte
}

func (f *fakeBlobStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobStore) PublicURL(key string) string {
	return "http://storage.local/tutorhub/" + key
}

func newUserFixture() (*UserService, *fakeAccountStore, *fakeBlobStore) {
	store := newFakeAccountStore()
	blobs := &fakeBlobStore{}
	return NewUserService(store, blobs, "test-secret", zap.NewNop()), store, blobs
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newUserFixture()

	user, token, err := svc.Register(context.Background(), "  Alice  ", " ALICE@Example.com ", "secret1", model.AccountKindStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Name != "Alice" {
		t.Errorf("Name = %q, want trimmed Alice", user.Name)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized lower-case", user.Email)
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("password must be stored as a hash")
	}
	if token == "" {
		t.Error("registration must issue a token")
	}

	// Логин нечувствителен к регистру email
	logged, token, err := svc.Login(context.Background(), "Alice@example.COM", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Error("login returned wrong account or empty token")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newUserFixture()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		kind     model.AccountKind
	}{
		{"empty name", "", "a@b.com", "secret1", model.AccountKindStudent},
		{"bad email", "Alice", "not-an-email", "secret1", model.AccountKindStudent},
		{"short password", "Alice", "a@b.com", "12345", model.AccountKindStudent},
		{"bad kind", "Alice", "a@b.com", "secret1", model.AccountKind("admin")},
	}

	for _, tt := range tests {
		_, _, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password, tt.kind)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tt.name, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture()

	if _, _, err := svc.Register(context.Background(), "Alice", "a@b.com", "secret1", model.AccountKindStudent); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "Other", "A@B.COM", "secret2", model.AccountKindTutor); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate email: err = %v, want ErrValidation", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newUserFixture()

	if _, _, err := svc.Register(context.Background(), "Alice", "a@b.com", "secret1", model.AccountKindStudent); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "a@b.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost@b.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	svc, _, _ := newUserFixture()

	token, err := svc.GenerateJWT("u1")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, err := svc.ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}

	// Токен с другим секретом не проходит
	other, _, _ := newUserFixture()
	other.jwtSecret = "other-secret"
	foreign, err := other.GenerateJWT("u1")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := svc.ValidateJWT(foreign); err == nil {
		t.Error("expected validation failure for token signed with another secret")
	}

	if _, err := svc.ValidateJWT("garbage"); err == nil {
		t.Error("expected validation failure for malformed token")
	}
}

func TestUpdateProfileKindSpecificFields(t *testing.T) {
	svc, store, _ := newUserFixture()

	student, _, err := svc.Register(context.Background(), "Alice", "a@b.com", "secret1", model.AccountKindStudent)
	if err != nil {
		t.Fatalf("Register student: %v", err)
	}
	tutor, _, err := svc.Register(context.Background(), "Bob", "b@b.com", "secret1", model.AccountKindTutor)
	if err != nil {
		t.Fatalf("Register tutor: %v", err)
	}

	update := ProfileUpdate{
		Name:               "Alice Tan",
		EducationLevel:     "Secondary School",
		SubjectsOfInterest: []string{"Mathematics"},
		SubjectsToTeach:    []string{"Physics"}, // чужое поле, должно игнорироваться
		HourlyRate:         99,
	}
	updated, err := svc.UpdateProfile(context.Background(), student.ID, update)
	if err != nil {
		t.Fatalf("UpdateProfile student: %v", err)
	}
	if updated.EducationLevel != "Secondary School" {
		t.Errorf("EducationLevel = %q", updated.EducationLevel)
	}
	if len(updated.SubjectsToTeach) != 0 || updated.HourlyRate != 0 {
		t.Error("tutor fields must not apply to a student account")
	}

	tutorUpdate := ProfileUpdate{
		Name:            "Bob Lee",
		SubjectsToTeach: []string{"Physics", "Mathematics"},
		HourlyRate:      60,
		Bio:             "Ten years of teaching",
	}
	updatedTutor, err := svc.UpdateProfile(context.Background(), tutor.ID, tutorUpdate)
	if err != nil {
		t.Fatalf("UpdateProfile tutor: %v", err)
	}
	if updatedTutor.HourlyRate != 60 || len(updatedTutor.SubjectsToTeach) != 2 {
		t.Errorf("tutor fields not applied: %+v", updatedTutor)
	}

	if _, err := svc.UpdateProfile(context.Background(), tutor.ID, ProfileUpdate{Name: "Bob", HourlyRate: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative rate: err = %v, want ErrValidation", err)
	}
	if _, err := svc.UpdateProfile(context.Background(), tutor.ID, ProfileUpdate{Name: "  "}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name: err = %v, want ErrValidation", err)
	}

	if store.byID[student.ID].AccountKind != model.AccountKindStudent {
		t.Error("account kind must never change")
	}
}

func TestUploadAvatar(t *testing.T) {
	svc, store, blobs := newUserFixture()

	user, _, err := svc.Register(context.Background(), "Alice", "a@b.com", "secret1", model.AccountKindStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	image := bytes.NewReader([]byte("png-bytes"))
	url, err := svc.UploadAvatar(context.Background(), user.ID, image, 9, "image/png")
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}

	if !strings.HasSuffix(url, "avatars/"+user.ID) {
		t.Errorf("url = %q, want avatars/<id> suffix", url)
	}
	if string(blobs.objects["avatars/"+user.ID]) != "png-bytes" {
		t.Error("image bytes not stored")
	}
	if store.byID[user.ID].ProfileImageURL != url {
		t.Errorf("profile image url not saved: %q", store.byID[user.ID].ProfileImageURL)
	}
}
