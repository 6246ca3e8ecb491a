package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem/learnly/internal/app/models"
	"github.com/kerem/learnly/internal/app/models/dto"
	"github.com/kerem/learnly/internal/pkg/apperrors"
	"github.com/kerem/learnly/internal/pkg/auth"
)

type fakeUserStore struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) (int64, error) {
	f.nextID++
	u := *user
	u.ID = f.nextID
	f.users[u.ID] = &u
	return u.ID, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(context.Background(), email)
	return err == nil, nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, userID int64) error {
	now := time.Now()
	f.users[userID].LastLoginAt = &now
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, userID int64, firstName, lastName, email string) error {
	u := f.users[userID]
	u.FirstName = firstName
	u.LastName = lastName
	u.Email = email
	return nil
}

type noopEmailService struct{}

func (noopEmailService) SendWelcomeEmail(string, string) error { return nil }
func (noopEmailService) SendCourseReminderEmail(string, string, string, time.Time) error {
	return nil
}

func newAuthFixture() (*fakeUserStore, IAuthService) {
	store := newFakeUserStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "test",
	})
	return store, NewAuthService(store, jwtService, noopEmailService{})
}

func TestRegisterAndLogin(t *testing.T) {
	store, svc := newAuthFixture()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "new@example.com",
		Password:  "Password1!",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, string(models.RoleNormal), resp.User.Role)

	// The stored password is hashed.
	stored := store.users[resp.User.ID]
	assert.NotEqual(t, "Password1!", stored.Password)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "new@example.com",
		Password: "Password1!",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
	assert.NotNil(t, store.users[resp.User.ID].LastLoginAt)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture()

	req := &dto.RegisterRequest{
		Email: "dup@example.com", Password: "Password1!", FirstName: "A", LastName: "B",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLoginFailures(t *testing.T) {
	store, svc := newAuthFixture()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "user@example.com", Password: "Password1!", FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)

	// Unknown email and wrong password both map to invalid credentials so
	// the response does not reveal which part was wrong.
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	for _, u := range store.users {
		u.IsActive = false
	}
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "Password1!"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestUpdateProfile(t *testing.T) {
	_, svc := newAuthFixture()

	reg, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "a@example.com", Password: "Password1!", FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "taken@example.com", Password: "Password1!", FirstName: "C", LastName: "D",
	})
	require.NoError(t, err)

	// Changing to a taken email conflicts.
	_, err = svc.UpdateProfile(context.Background(), reg.User.ID, &dto.UpdateProfileRequest{
		FirstName: "A", LastName: "B", Email: "taken@example.com",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	updated, err := svc.UpdateProfile(context.Background(), reg.User.ID, &dto.UpdateProfileRequest{
		FirstName: "Anna", LastName: "B", Email: "a@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FirstName)
}
