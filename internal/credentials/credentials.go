package credentials

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxEmailLength    = 320
	MaxUsernameLength = 64
)

// Letters, digits, ". @ + - _" and spaces.
var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+\- ]+$`)

// HashCost is the bcrypt cost used for new hashes. Tests lower it.
var HashCost = bcrypt.DefaultCost

// UserStore is the persistence the credential rules need.
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

// NewUser describes a user to be created. The superuser flags are only
// consulted by CreateSuperuser.
type NewUser struct {
	Email       string
	Username    string
	Password    string
	IsStaff     *bool
	IsSuperuser *bool
}

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.NewValidationError("email", "This field is required.")
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return "", apperrors.NewValidationError("email",
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxEmailLength))
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || strings.Count(email, "@") != 1 {
		return "", apperrors.NewValidationError("email", "Enter a valid email address.")
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]
	if local == "" || domain == "" {
		return "", apperrors.NewValidationError("email", "Enter a valid email address.")
	}
	return local + "@" + strings.ToLower(domain), nil
}

// ValidateUsername checks the display name against the widened username rules.
func ValidateUsername(username string) error {
	if username == "" {
		return apperrors.NewValidationError("username", "This field is required.")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return apperrors.NewValidationError("username",
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxUsernameLength))
	}
	if !usernameRegex.MatchString(username) {
		return apperrors.NewValidationError("username",
			"Enter a valid username. This value may contain only letters, numbers, spaces, and @/./+/-/_ characters.")
	}
	return nil
}

// ValidatePassword checks presence only. No strength or length policy is
// enforced.
func ValidatePassword(password string) error {
	if password == "" {
		return apperrors.NewValidationError("password", "This field is required.")
	}
	return nil
}

// prehash digests raw so bcrypt sees a fixed 44 byte input and passwords past
// its 72 byte limit are neither rejected nor truncated.
func prehash(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword returns a salted one-way hash of raw.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(raw), HashCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether raw matches the stored hash.
func CheckPassword(hash, raw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(raw)) == nil
}

// CreateUser validates, hashes and persists a regular user.
func CreateUser(ctx context.Context, store UserStore, nu NewUser) (*models.User, error) {
	return createUser(ctx, store, nu, models.RoleMember)
}

// CreateSuperuser persists a user with staff and superuser rights. The flags
// are forced: an explicit false for either of them is rejected.
func CreateSuperuser(ctx context.Context, store UserStore, nu NewUser) (*models.User, error) {
	verr := &apperrors.ValidationError{}
	if nu.IsStaff != nil && !*nu.IsStaff {
		verr.Add("is_staff", "Superuser must have is_staff=True.")
	}
	if nu.IsSuperuser != nil && !*nu.IsSuperuser {
		verr.Add("is_superuser", "Superuser must have is_superuser=True.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return createUser(ctx, store, nu, models.RoleSuperuser)
}

func createUser(ctx context.Context, store UserStore, nu NewUser, role models.Role) (*models.User, error) {
	verr := &apperrors.ValidationError{}

	email, err := NormalizeEmail(nu.Email)
	collect(verr, err)
	collect(verr, ValidateUsername(nu.Username))
	collect(verr, ValidatePassword(nu.Password))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	exists, err := store.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking email uniqueness: %w", err)
	}
	if exists {
		return nil, apperrors.DuplicateEmail()
	}

	hash, err := HashPassword(nu.Password)
	if err != nil {
		return nil, err
	}

	return store.CreateUser(ctx, &models.User{
		Email:    email,
		Username: nu.Username,
		Password: hash,
		Role:     role,
		IsActive: true,
	})
}

func collect(dst *apperrors.ValidationError, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		dst.Merge(verr)
	}
}
