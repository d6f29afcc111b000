// Package auth owns user accounts and request identity: registration,
// login, and JWT issue/verify. The rest of the backend only sees api.Actor.
package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"civicfix/backend/db"
	"civicfix/backend/server/api"

	"github.com/apex/log"
	"github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

var aadharRe = regexp.MustCompile(`^\d{12}$`)

type Service struct {
	dbc       *sql.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(dbc *sql.DB, jwtSecret string) *Service {
	return &Service{
		dbc:       dbc,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Register creates a user account with the default user role.
func (s *Service) Register(req *api.RegisterArgs) (*api.UserInfo, error) {
	aadhar := strings.TrimSpace(strings.ReplaceAll(req.AadharNumber, " ", ""))
	switch {
	case req.Username == "":
		return nil, fmt.Errorf("%w: username is required", db.ErrValidation)
	case req.Email == "":
		return nil, fmt.Errorf("%w: email is required", db.ErrValidation)
	case len(req.Password) < 6:
		return nil, fmt.Errorf("%w: password must be at least 6 characters", db.ErrValidation)
	case !aadharRe.MatchString(aadhar):
		return nil, fmt.Errorf("%w: please provide a valid 12-digit Aadhar number", db.ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := uuid.NewString()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	_, err = s.dbc.Exec(`INSERT INTO users (id, username, email, phone_number, aadhar_number, password_hash)
	  VALUES (?, ?, ?, ?, ?, ?)`,
		userID, req.Username, email, req.PhoneNumber, aadhar, string(passwordHash))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return nil, fmt.Errorf("%w: %s", db.ErrValidation, duplicateFieldMessage(me.Message))
		}
		log.Errorf("Error inserting user: %v", err)
		return nil, err
	}

	return &api.UserInfo{
		ID:       userID,
		Username: req.Username,
		Email:    email,
		Role:     api.RoleUser,
	}, nil
}

// duplicateFieldMessage maps a MySQL duplicate-entry message to the
// user-facing wording, keyed on the violated index name.
func duplicateFieldMessage(msg string) string {
	switch {
	case strings.Contains(msg, "email"):
		return "email already registered"
	case strings.Contains(msg, "aadhar"):
		return "Aadhar number already registered"
	case strings.Contains(msg, "username"):
		return "username already taken"
	}
	return "account already exists"
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(req *api.LoginArgs) (string, *api.UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var (
		user         api.UserInfo
		passwordHash string
	)
	err := s.dbc.QueryRow(`SELECT id, username, email, role, password_hash
	  FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.Role, &passwordHash)
	if err == sql.ErrNoRows {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Errorf("Error reading user %s: %v", email, err)
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// GenerateToken issues an HS256 token carrying the actor identity.
func (s *Service) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// ValidateToken checks the signature and expiry and returns the actor.
func (s *Service) ValidateToken(tokenString string) (*api.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if role != api.RoleAdmin {
		role = api.RoleUser
	}
	return &api.Actor{ID: userID, Role: role}, nil
}

// GetUser returns the public profile for an account.
func (s *Service) GetUser(userID string) (*api.UserInfo, error) {
	var user api.UserInfo
	err := s.dbc.QueryRow(`SELECT id, username, email, role FROM users WHERE id = ?`, userID).
		Scan(&user.ID, &user.Username, &user.Email, &user.Role)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
