package auth

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"civicfix/backend/db"
	"civicfix/backend/server/api"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
	"golang.org/x/crypto/bcrypt"
)

var (
	dbc     *sql.DB
	mock    sqlmock.Sqlmock
	service *Service
)

func setUp() {
	dbc, mock, _ = sqlmock.New()
	service = NewService(dbc, "test-secret")
}

func tearDown() {
	dbc.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func TestTokenRoundTrip(t *testing.T) {
	it(func() {
		token, err := service.GenerateToken("u1", api.RoleAdmin)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		actor, err := service.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken: %v", err)
		}
		if actor.ID != "u1" || actor.Role != api.RoleAdmin {
			t.Errorf("actor = %+v, want u1/admin", actor)
		}
	})
}

func TestValidateTokenWrongSecret(t *testing.T) {
	it(func() {
		other := NewService(dbc, "other-secret")
		token, err := other.GenerateToken("u1", api.RoleUser)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, err := service.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})
}

func TestValidateTokenExpired(t *testing.T) {
	it(func() {
		service.tokenTTL = -time.Minute
		token, err := service.GenerateToken("u1", api.RoleUser)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, err := service.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("err = %v, want ErrInvalidToken", err)
		}
	})
}

func TestValidateTokenUnknownRoleDowngraded(t *testing.T) {
	it(func() {
		token, err := service.GenerateToken("u1", "superadmin")
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		actor, err := service.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken: %v", err)
		}
		if actor.Role != api.RoleUser {
			t.Errorf("role = %q, want user", actor.Role)
		}
	})
}

func TestRegisterValidation(t *testing.T) {
	it(func() {
		testCases := []struct {
			name string
			req  api.RegisterArgs
		}{
			{"missing username", api.RegisterArgs{Email: "a@b.c", Password: "secret1", AadharNumber: "123456789012"}},
			{"missing email", api.RegisterArgs{Username: "asha", Password: "secret1", AadharNumber: "123456789012"}},
			{"short password", api.RegisterArgs{Username: "asha", Email: "a@b.c", Password: "abc", AadharNumber: "123456789012"}},
			{"short aadhar", api.RegisterArgs{Username: "asha", Email: "a@b.c", Password: "secret1", AadharNumber: "1234"}},
			{"non-numeric aadhar", api.RegisterArgs{Username: "asha", Email: "a@b.c", Password: "secret1", AadharNumber: "12345678901x"}},
		}
		for _, tc := range testCases {
			req := tc.req
			if _, err := service.Register(&req); !errors.Is(err, db.ErrValidation) {
				t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
			}
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestRegisterStripsAadharSpaces(t *testing.T) {
	it(func() {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(sqlmock.AnyArg(), "asha", "a@b.c", "", "123456789012", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := service.Register(&api.RegisterArgs{
			Username:     "asha",
			Email:        "A@b.c ",
			Password:     "secret1",
			AadharNumber: "1234 5678 9012",
		})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if user.Role != api.RoleUser || user.Email != "a@b.c" {
			t.Errorf("user = %+v, want user role and normalized email", user)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestLogin(t *testing.T) {
	it(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
			WithArgs("a@b.c").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role", "password_hash"}).
				AddRow("u1", "asha", "a@b.c", "user", string(hash)))

		token, user, err := service.Login(&api.LoginArgs{Email: "a@b.c", Password: "secret1"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if token == "" || user.ID != "u1" {
			t.Errorf("token=%q user=%+v", token, user)
		}

		actor, err := service.ValidateToken(token)
		if err != nil || actor.ID != "u1" {
			t.Errorf("issued token does not validate: actor=%+v err=%v", actor, err)
		}
	})
}

func TestLoginWrongPassword(t *testing.T) {
	it(func() {
		hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role", "password_hash"}).
				AddRow("u1", "asha", "a@b.c", "user", string(hash)))

		if _, _, err := service.Login(&api.LoginArgs{Email: "a@b.c", Password: "nope"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestLoginUnknownEmail(t *testing.T) {
	it(func() {
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
			WillReturnError(sql.ErrNoRows)

		if _, _, err := service.Login(&api.LoginArgs{Email: "ghost@b.c", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("err = %v, want ErrInvalidCredentials", err)
		}
	})
}
