package devapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/layer-3/portal/core"
	"golang.org/x/crypto/bcrypt"
)

// FieldError is an API failure reported as {errors: {field: [code]}}
type FieldError struct {
	Status int
	Field  string
	Code   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

type account struct {
	passwordHash []byte
	verified     bool
	schedules    []core.Schedule
}

// Directory keeps accounts, reset tokens and timetables in memory
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]*account
	resets   map[string]string // reset token -> email
	programs []core.StudyProgram
	domain   string
}

// NewDirectory creates an empty directory. When domain is set, only
// addresses of that domain may register.
func NewDirectory(domain string, programs []core.StudyProgram) *Directory {
	return &Directory{
		accounts: make(map[string]*account),
		resets:   make(map[string]string),
		programs: programs,
		domain:   domain,
	}
}

// Seed adds a verified account with a timetable
func (d *Directory) Seed(email, password string, schedules []core.Schedule) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.accounts[normalize(email)] = &account{passwordHash: hash, verified: true, schedules: schedules}
	return nil
}

// Register creates an unverified account
func (d *Directory) Register(email, password, confirmPassword string) error {
	email = normalize(email)
	if d.domain != "" && !strings.HasSuffix(email, "@"+d.domain) {
		return &FieldError{Status: http.StatusUnprocessableEntity, Field: "email", Code: "INVALID_DOMAIN"}
	}
	if password != confirmPassword {
		return &FieldError{Status: http.StatusBadRequest, Field: "confirmPassword", Code: "PASSWORD_MISMATCH"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.accounts[email]; exists {
		return &FieldError{Status: http.StatusConflict, Field: "email", Code: "ALREADY_EXISTS"}
	}
	d.accounts[email] = &account{passwordHash: hash}

	return nil
}

// Authenticate checks email and password
func (d *Directory) Authenticate(email, password string) error {
	d.mu.RLock()
	acc, ok := d.accounts[normalize(email)]
	d.mu.RUnlock()

	if !ok {
		return &FieldError{Status: http.StatusNotFound, Field: "email", Code: "NOT_FOUND"}
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return &FieldError{Status: http.StatusUnauthorized, Field: "password", Code: "INVALID"}
	}
	if !acc.verified {
		return &FieldError{Status: http.StatusForbidden, Field: "email", Code: "NOT_VERIFIED"}
	}

	return nil
}

// RequestReset issues a password reset token for the account
func (d *Directory) RequestReset(email string) (string, error) {
	email = normalize(email)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.accounts[email]; !ok {
		return "", &FieldError{Status: http.StatusNotFound, Field: "email", Code: "NOT_FOUND"}
	}

	token := uuid.NewString()
	d.resets[token] = email

	return token, nil
}

// Reset sets a new password and marks the mailbox as verified
func (d *Directory) Reset(token, password, confirmPassword string) error {
	if token == "" {
		return &FieldError{Status: http.StatusBadRequest, Field: "token", Code: "REQUIRED"}
	}
	if password != confirmPassword {
		return &FieldError{Status: http.StatusBadRequest, Field: "confirmPassword", Code: "PASSWORD_MISMATCH"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	email, ok := d.resets[token]
	if !ok {
		return &FieldError{Status: http.StatusBadRequest, Field: "token", Code: "INVALID"}
	}
	acc, ok := d.accounts[email]
	if !ok {
		return &FieldError{Status: http.StatusNotFound, Field: "email", Code: "NOT_FOUND"}
	}

	delete(d.resets, token)
	acc.passwordHash = hash
	acc.verified = true

	return nil
}

// Schedules returns the timetable of the account
func (d *Directory) Schedules(email string) ([]core.Schedule, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	acc, ok := d.accounts[normalize(email)]
	if !ok {
		return nil, &FieldError{Status: http.StatusNotFound, Field: "user", Code: "NOT_FOUND"}
	}
	if !acc.verified {
		return nil, &FieldError{Status: http.StatusForbidden, Field: "user", Code: "NOT_VERIFIED"}
	}

	return append([]core.Schedule(nil), acc.schedules...), nil
}

// StudyPrograms lists the configured study programs
func (d *Directory) StudyPrograms() []core.StudyProgram {
	return d.programs
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
