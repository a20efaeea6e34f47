package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/forttask/forttask/internal/store"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords so the response cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Verifier checks a username/password pair against stored credentials.
// It performs no lockout or rate limiting; that is a boundary concern.
type Verifier struct {
	users      *store.UserStore
	households *store.HouseholdStore
}

func NewVerifier(users *store.UserStore, households *store.HouseholdStore) *Verifier {
	return &Verifier{users: users, households: households}
}

// Verify returns the Identity for the given credentials or
// ErrInvalidCredentials. bcrypt's comparison is constant-time.
func (v *Verifier) Verify(username, password string) (*Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := v.users.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	household, err := v.households.GetByID(user.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("look up household: %w", err)
	}
	if household == nil {
		// Orphaned user; treat like a bad credential rather than leak state.
		return nil, ErrInvalidCredentials
	}

	return &Identity{
		UserID:        user.ID,
		Username:      user.Username,
		HouseholdID:   household.ID,
		HouseholdName: household.Name,
	}, nil
}

// HashPassword produces the bcrypt hash stored for new accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
