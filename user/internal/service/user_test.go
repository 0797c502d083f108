package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopique/storefront/internal/common"
	"github.com/shopique/storefront/internal/constants"
	inErrors "github.com/shopique/storefront/internal/errors"
	"github.com/shopique/storefront/internal/repository"
	"github.com/shopique/storefront/user/pkg/request"
)

const testSecretKey = "test-secret-key"

type fakeUserStore struct {
	users map[uuid.UUID]repository.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]repository.User{}}
}

func (f *fakeUserStore) Insert(_ context.Context, u repository.User) (repository.User, error) {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, pgx.ErrNoRows
}

func (f *fakeUserStore) FindByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) FindAll(_ context.Context) ([]repository.User, error) {
	users := []repository.User{}
	for _, u := range f.users {
		users = append(users, u)
	}
	return users, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, password string) error {
	u, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Password = password
	f.users[id] = u
	return nil
}

func newFixture() (*UserService, *fakeUserStore) {
	users := newFakeUserStore()
	return NewUserService(users, testSecretKey, 30*time.Minute), users
}

func TestRegisterHashesPasswordAndAssignsUserRole(t *testing.T) {
	svc, users := newFixture()

	registered, err := svc.Register(context.Background(), request.Register{
		Name: "Lan Pham", Email: "lan@example.com", Password: "sup3rsecret",
	})

	require.NoError(t, err)
	assert.Equal(t, constants.RoleUser, registered.Role)
	stored := users.users[registered.ID]
	assert.NotEqual(t, "sup3rsecret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("sup3rsecret")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newFixture()

	_, err := svc.Register(context.Background(), request.Register{
		Name: "Lan Pham", Email: "lan@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), request.Register{
		Name: "Other Lan", Email: "lan@example.com", Password: "an0thersecret",
	})

	assert.ErrorIs(t, err, inErrors.ErrUserExist)
}

func TestLoginReturnsParsableToken(t *testing.T) {
	svc, _ := newFixture()
	registered, err := svc.Register(context.Background(), request.Register{
		Name: "Lan Pham", Email: "lan@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), request.Login{
		Email: "lan@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	claims, err := common.ParseToken(login.Token, testSecretKey)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)
	assert.Equal(t, "lan@example.com", claims.Email)
	assert.Equal(t, constants.RoleUser, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.Register(context.Background(), request.Register{
		Name: "Lan Pham", Email: "lan@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), request.Login{
		Email: "lan@example.com", Password: "wr0ngsecret",
	})

	assert.ErrorIs(t, err, inErrors.ErrPasswordMismatch)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newFixture()

	_, err := svc.Login(context.Background(), request.Login{
		Email: "nobody@example.com", Password: "sup3rsecret",
	})

	assert.ErrorIs(t, err, inErrors.ErrUserNotFound)
}

func TestForgotPasswordReplacesHash(t *testing.T) {
	svc, _ := newFixture()
	_, err := svc.Register(context.Background(), request.Register{
		Name: "Lan Pham", Email: "lan@example.com", Password: "sup3rsecret",
	})
	require.NoError(t, err)

	err = svc.ForgotPassword(context.Background(), request.ForgotPassword{
		Email: "lan@example.com", NewPassword: "brandn3wsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), request.Login{
		Email: "lan@example.com", Password: "sup3rsecret",
	})
	assert.ErrorIs(t, err, inErrors.ErrPasswordMismatch)

	_, err = svc.Login(context.Background(), request.Login{
		Email: "lan@example.com", Password: "brandn3wsecret",
	})
	assert.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _ := newFixture()

	err := svc.ForgotPassword(context.Background(), request.ForgotPassword{
		Email: "nobody@example.com", NewPassword: "brandn3wsecret",
	})

	assert.ErrorIs(t, err, inErrors.ErrUserNotFound)
}

func TestFindUsers(t *testing.T) {
	svc, _ := newFixture()
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := svc.Register(context.Background(), request.Register{
			Name: "User", Email: email, Password: "sup3rsecret",
		})
		require.NoError(t, err)
	}

	users, err := svc.FindUsers(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 2)
}
