package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"saasbase/internal/models/db_models"
	"saasbase/internal/models/request_models"
	"saasbase/pkg/auth"
	"saasbase/pkg/memcache"
	"saasbase/pkg/utils"
)

type fakeRoleRepo struct {
	byID map[string]*db_models.UserRole
}

func newFakeRoleRepo(roles ...*db_models.UserRole) *fakeRoleRepo {
	r := &fakeRoleRepo{byID: map[string]*db_models.UserRole{}}
	for _, role := range roles {
		r.byID[role.ID] = role
	}
	return r
}

func (r *fakeRoleRepo) FindByID(ctx context.Context, id string) (*db_models.UserRole, error) {
	return r.byID[id], nil
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]db_models.UserRole, error) { return nil, nil }

func (r *fakeRoleRepo) Save(ctx context.Context, role *db_models.UserRole) error {
	r.byID[role.ID] = role
	return nil
}

func (r *fakeRoleRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeRoleRepo) EnsureExists(ctx context.Context, role *db_models.UserRole) error {
	if _, ok := r.byID[role.ID]; !ok {
		r.byID[role.ID] = role
	}
	return nil
}

type fakeNotifier struct {
	sent []string
}

func (n *fakeNotifier) SendValidCode(ctx context.Context, email, code string) error {
	n.sent = append(n.sent, email)
	return nil
}

func newAccountFixture() (AccountServiceInterface, *fakeUserRepo, *memcache.ValidCodes, *fakeNotifier) {
	users := newFakeUserRepo()
	codes := memcache.NewValidCodes()
	notifier := &fakeNotifier{}
	roles := newFakeRoleRepo(&db_models.UserRole{ID: auth.RoleUser, Permissions: []string{"USER_*"}})
	svc := NewAccountService(users, roles, codes, notifier, zap.NewNop().Sugar())
	return svc, users, codes, notifier
}

func registerTestUser(t *testing.T, svc AccountServiceInterface, codes *memcache.ValidCodes, email, password string) {
	t.Helper()
	codes.Set(email, "123456", validCodeTTL)
	err := svc.CreateAccount(context.Background(), request_models.SignUpRequest{
		Email:       email,
		Password:    password,
		DisplayName: "Buyer",
		ValidCode:   "123456",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
}

func TestCreateAccountDefaults(t *testing.T) {
	svc, users, codes, _ := newAccountFixture()
	registerTestUser(t, svc, codes, "new@example.com", "s3cret-pass")

	user := users.byEmail["new@example.com"]
	if user == nil {
		t.Fatal("user was not inserted")
	}
	if user.RoleID != auth.RoleUser {
		t.Errorf("RoleID = %q, want USER", user.RoleID)
	}
	if user.ProductType != db_models.ProductFree {
		t.Errorf("ProductType = %q, want FREE", user.ProductType)
	}
	if user.EndSubscriptionAt != db_models.EndSubscriptionPlaceholder {
		t.Errorf("EndSubscriptionAt = %d, want placeholder", user.EndSubscriptionAt)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret-pass" {
		t.Error("password stored unhashed")
	}
}

func TestCreateAccountRequiresValidCode(t *testing.T) {
	svc, _, codes, _ := newAccountFixture()
	codes.Set("new@example.com", "123456", validCodeTTL)

	err := svc.CreateAccount(context.Background(), request_models.SignUpRequest{
		Email:       "new@example.com",
		Password:    "s3cret-pass",
		DisplayName: "Buyer",
		ValidCode:   "999999",
	})
	if !errors.Is(err, utils.ErrInvalidValidCode) {
		t.Errorf("err = %v, want ErrInvalidValidCode", err)
	}
}

func TestCreateAccountRejectsDuplicateEmail(t *testing.T) {
	svc, _, codes, _ := newAccountFixture()
	registerTestUser(t, svc, codes, "dup@example.com", "s3cret-pass")

	codes.Set("dup@example.com", "123456", validCodeTTL)
	err := svc.CreateAccount(context.Background(), request_models.SignUpRequest{
		Email:       "dup@example.com",
		Password:    "other-pass-1",
		DisplayName: "Buyer",
		ValidCode:   "123456",
	})
	if !errors.Is(err, utils.ErrEmailAlreadyExists) {
		t.Errorf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestLogin(t *testing.T) {
	svc, users, codes, _ := newAccountFixture()
	registerTestUser(t, svc, codes, "buyer@example.com", "s3cret-pass")

	resp, err := svc.Login(context.Background(), request_models.LoginRequest{
		Email:    "buyer@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Error("empty token")
	}
	if resp.Role != auth.RoleUser {
		t.Errorf("Role = %q", resp.Role)
	}

	claims, err := utils.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Email != "buyer@example.com" || claims.Role != auth.RoleUser {
		t.Errorf("claims = %+v", claims)
	}
	if len(claims.Permissions) != 1 || claims.Permissions[0] != "USER_*" {
		t.Errorf("Permissions = %v", claims.Permissions)
	}

	if _, err := svc.Login(context.Background(), request_models.LoginRequest{
		Email:    "buyer@example.com",
		Password: "wrong-pass",
	}); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := svc.Login(context.Background(), request_models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret-pass",
	}); !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v", err)
	}

	users.byEmail["buyer@example.com"].Forbidden = true
	if _, err := svc.Login(context.Background(), request_models.LoginRequest{
		Email:    "buyer@example.com",
		Password: "s3cret-pass",
	}); !errors.Is(err, utils.ErrAccountForbidden) {
		t.Errorf("forbidden account: err = %v", err)
	}
}

func TestLoginRejectsOAuthOnlyAccounts(t *testing.T) {
	svc, users, _, _ := newAccountFixture()
	users.Insert(context.Background(), &db_models.User{
		Email:  "oauth@example.com",
		RoleID: auth.RoleUser,
	})

	_, err := svc.Login(context.Background(), request_models.LoginRequest{
		Email:    "oauth@example.com",
		Password: "anything-at-all",
	})
	if !errors.Is(err, utils.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}
