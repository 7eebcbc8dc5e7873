package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bhokexpress/internal/domain/cart"
	"bhokexpress/internal/domain/model"
	repo "bhokexpress/internal/repository"
)

type RefreshTokenRepoMock struct{ mock.Mock }

func (m *RefreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) FindByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	t, _ := args.Get(0).(model.RefreshToken)
	return t, args.Error(1)
}

func (m *RefreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *RefreshTokenRepoMock) RevokeAllByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type plainVerifier struct{}

func (plainVerifier) Verify(plain string, hashed string) bool { return "hashed:"+plain == hashed }

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	return "access-token", now.Add(15 * time.Minute), nil
}

type stubIDGen struct{}

func (stubIDGen) NewID() string { return "rt-id-1" }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newAuthUsecaseForTest(users *UserRepoMock, tokens *RefreshTokenRepoMock) *AuthUsecase {
	return newAuthUsecaseWithCart(users, tokens, newMemCartStore())
}

func newAuthUsecaseWithCart(users *UserRepoMock, tokens *RefreshTokenRepoMock, store repo.CartStore) *AuthUsecase {
	return NewAuthUsecase(
		users,
		tokens,
		store,
		plainHasher{},
		plainVerifier{},
		stubIssuer{},
		stubIDGen{},
		fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		14*24*time.Hour,
	)
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "sita@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 7
	}).Return(nil)

	u := newAuthUsecaseForTest(users, new(RefreshTokenRepoMock))

	out, err := u.Register(context.Background(), RegisterInput{
		Name:     " Sita ",
		Email:    "sita@example.com",
		Phone:    "9812345678",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Sita", out.Name)
	assert.Equal(t, 0, out.FreeDelivery)
}

func TestAuthUsecase_Register_Validation(t *testing.T) {
	u := newAuthUsecaseForTest(new(UserRepoMock), new(RefreshTokenRepoMock))
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"empty name", RegisterInput{Email: "a@b.com", Phone: "9812345678", Password: "password"}, "name is required"},
		{"bad email", RegisterInput{Name: "Sita", Email: "not-an-email", Phone: "9812345678", Password: "password"}, "invalid email format"},
		{"bad phone", RegisterInput{Name: "Sita", Email: "a@b.com", Phone: "12345", Password: "password"}, "invalid phone number"},
		{"short password", RegisterInput{Name: "Sita", Email: "a@b.com", Phone: "9812345678", Password: "short"}, "password too short"},
	}

	for _, tc := range cases {
		_, err := u.Register(ctx, tc.in)
		he, ok := AsHTTPError(err)
		assert.True(t, ok, tc.name)
		assert.Equal(t, 400, he.Status, tc.name)
		assert.Equal(t, tc.msg, he.Message, tc.name)
	}
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "sita@example.com").Return(model.User{ID: 1}, nil)

	u := newAuthUsecaseForTest(users, new(RefreshTokenRepoMock))

	_, err := u.Register(context.Background(), RegisterInput{
		Name: "Sita", Email: "sita@example.com", Phone: "9812345678", Password: "password123",
	})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 409, he.Status)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	users := new(UserRepoMock)
	tokens := new(RefreshTokenRepoMock)

	users.On("FindByEmail", mock.Anything, "sita@example.com").Return(model.User{
		ID:           7,
		Name:         "Sita",
		Email:        "sita@example.com",
		PasswordHash: "hashed:password123",
		Role:         model.RoleUser,
		FreeDelivery: 2,
		IsActive:     true,
	}, nil)

	var saved *model.RefreshToken
	tokens.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*model.RefreshToken)
	}).Return(nil)
	users.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	u := newAuthUsecaseForTest(users, tokens)

	out, err := u.Login(context.Background(), LoginInput{
		Email: "sita@example.com", Password: "password123", UserAgent: "test-agent",
	})
	assert.NoError(t, err)
	assert.Equal(t, "access-token", out.AccessToken)
	assert.Equal(t, 15*60, out.ExpiresIn)
	assert.Equal(t, 2, out.User.FreeDelivery)
	assert.NotEmpty(t, out.RefreshToken)

	//平文は保存されない。sha256 hexだけがDBへ行く
	assert.NotNil(t, saved)
	assert.NotEqual(t, out.RefreshToken, saved.TokenHash)
	assert.Equal(t, hashToken(out.RefreshToken), saved.TokenHash)
	assert.Equal(t, "test-agent", saved.UserAgent)
}

func TestAuthUsecase_Login_InvalidCredentials(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "sita@example.com").Return(model.User{
		ID: 7, PasswordHash: "hashed:other", IsActive: true,
	}, nil)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(model.User{}, repo.ErrNotFound)

	u := newAuthUsecaseForTest(users, new(RefreshTokenRepoMock))
	ctx := context.Background()

	//パスワード不一致と存在しないemailは同じ401を返す
	_, err := u.Login(ctx, LoginInput{Email: "sita@example.com", Password: "wrong"})
	he, _ := AsHTTPError(err)
	assert.Equal(t, 401, he.Status)

	_, err = u.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "wrong"})
	he, _ = AsHTTPError(err)
	assert.Equal(t, 401, he.Status)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByEmail", mock.Anything, "sita@example.com").Return(model.User{
		ID: 7, PasswordHash: "hashed:password123", IsActive: false,
	}, nil)

	u := newAuthUsecaseForTest(users, new(RefreshTokenRepoMock))

	_, err := u.Login(context.Background(), LoginInput{Email: "sita@example.com", Password: "password123"})
	he, _ := AsHTTPError(err)
	assert.Equal(t, 403, he.Status)
}

func TestAuthUsecase_Refresh_RotatesToken(t *testing.T) {
	users := new(UserRepoMock)
	tokens := new(RefreshTokenRepoMock)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tokens.On("FindByHash", mock.Anything, hashToken("old-refresh")).Return(model.RefreshToken{
		ID:        "rt-old",
		UserID:    7,
		TokenHash: hashToken("old-refresh"),
		ExpiresAt: now.Add(time.Hour),
	}, nil)
	users.On("FindByID", mock.Anything, int64(7)).Return(model.User{
		ID: 7, Role: model.RoleUser, IsActive: true,
	}, nil)
	tokens.On("MarkUsed", mock.Anything, "rt-old").Return(nil)
	tokens.On("Create", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	u := newAuthUsecaseForTest(users, tokens)

	out, err := u.Refresh(context.Background(), RefreshInput{RefreshToken: "old-refresh"})
	assert.NoError(t, err)
	assert.Equal(t, "access-token", out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.NotEqual(t, "old-refresh", out.RefreshToken)

	//古いtokenは使用済みになる
	tokens.AssertCalled(t, "MarkUsed", mock.Anything, "rt-old")
}

func TestAuthUsecase_Logout_RevokesTokensAndClearsCart(t *testing.T) {
	ctx := context.Background()
	users := new(UserRepoMock)
	tokens := new(RefreshTokenRepoMock)
	store := newMemCartStore()

	//ログアウト前のカートを置いておく
	c := cart.New()
	c.AddItem(cart.Line{ProductID: 1, RestaurantID: 10, Name: "Momo", UnitPrice: decimal.NewFromInt(250)})
	assert.NoError(t, store.Save(ctx, 7, c))

	tokens.On("RevokeAllByUserID", mock.Anything, int64(7)).Return(nil)
	users.On("IncrementTokenVersion", mock.Anything, int64(7)).Return(nil)

	u := newAuthUsecaseWithCart(users, tokens, store)

	assert.NoError(t, u.Logout(ctx, 7))

	//refreshは全失効、token_versionは加算、カートは空
	tokens.AssertCalled(t, "RevokeAllByUserID", mock.Anything, int64(7))
	users.AssertCalled(t, "IncrementTokenVersion", mock.Anything, int64(7))

	got, err := store.Get(ctx, 7)
	assert.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestAuthUsecase_Logout_Unauthorized(t *testing.T) {
	u := newAuthUsecaseForTest(new(UserRepoMock), new(RefreshTokenRepoMock))

	err := u.Logout(context.Background(), 0)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 401, he.Status)
}

func TestAuthUsecase_Refresh_RejectsUsedOrExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	used := now.Add(-time.Hour)

	cases := []struct {
		name  string
		token model.RefreshToken
	}{
		{"already used", model.RefreshToken{ID: "rt-1", UserID: 7, UsedAt: &used, ExpiresAt: now.Add(time.Hour)}},
		{"revoked", model.RefreshToken{ID: "rt-2", UserID: 7, RevokedAt: &used, ExpiresAt: now.Add(time.Hour)}},
		{"expired", model.RefreshToken{ID: "rt-3", UserID: 7, ExpiresAt: now.Add(-time.Minute)}},
	}

	for _, tc := range cases {
		tokens := new(RefreshTokenRepoMock)
		tokens.On("FindByHash", mock.Anything, mock.Anything).Return(tc.token, nil)

		u := newAuthUsecaseForTest(new(UserRepoMock), tokens)

		_, err := u.Refresh(context.Background(), RefreshInput{RefreshToken: "whatever"})
		he, ok := AsHTTPError(err)
		assert.True(t, ok, tc.name)
		assert.Equal(t, 401, he.Status, tc.name)
		tokens.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
	}
}
