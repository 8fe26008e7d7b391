// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/omtalent/portal-go/internal/auth"
	"github.com/omtalent/portal-go/internal/model"
	"github.com/omtalent/portal-go/internal/store"
)

// AccountService creates users, authenticates credentials and performs
// admin account management.
type AccountService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{
		db:      db,
		queries: store.New(db),
	}
}

// RegisterParams holds the registration form fields.
type RegisterParams struct {
	FirstName string
	Surname   string
	Username  string
	IDNumber  string
	Email     string
	DOB       string
	Phone     string
	Gender    string
	Password  string
}

// Register creates a new student account. Required fields are username,
// email and password; username, email and id-number must be unique.
// The insert is a single statement, so a constraint violation leaves no
// partial row behind.
func (s *AccountService) Register(ctx context.Context, arg RegisterParams) (model.User, error) {
	username := strings.TrimSpace(arg.Username)
	email := strings.TrimSpace(arg.Email)
	idNumber := strings.TrimSpace(arg.IDNumber)

	if username == "" {
		return model.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if email == "" {
		return model.User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if arg.Password == "" {
		return model.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	// Friendly duplicate checks up front; the unique constraints remain the
	// authority when two registrations race.
	if err := s.checkDuplicate(ctx, username, email, idNumber); err != nil {
		return model.User{}, err
	}

	passwordHash, err := auth.HashPassword(arg.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		FirstName:    strings.TrimSpace(arg.FirstName),
		Surname:      strings.TrimSpace(arg.Surname),
		Username:     username,
		IDNumber:     nullString(idNumber),
		Email:        email,
		DOB:          nullString(strings.TrimSpace(arg.DOB)),
		Phone:        nullString(strings.TrimSpace(arg.Phone)),
		Gender:       nullString(strings.TrimSpace(arg.Gender)),
		PasswordHash: passwordHash,
		Role:         model.RoleStudent,
		Status:       model.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("%w: username, email or id number already exists", ErrDuplicate)
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// checkDuplicate reports ErrDuplicate when username, email or id-number is taken.
func (s *AccountService) checkDuplicate(ctx context.Context, username, email, idNumber string) error {
	if _, err := s.queries.GetUserByUsername(ctx, username); err == nil {
		return fmt.Errorf("%w: username already exists", ErrDuplicate)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking username: %w", err)
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: email already exists", ErrDuplicate)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking email: %w", err)
	}

	if idNumber != "" {
		if _, err := s.queries.GetUserByIDNumber(ctx, idNumber); err == nil {
			return fmt.Errorf("%w: id number already exists", ErrDuplicate)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking id number: %w", err)
		}
	}

	return nil
}

// Authenticate verifies the credential pair and returns the matching user.
// Blocked accounts cannot log in. There is no credential bypass of any kind.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	user, err := s.queries.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
		return model.User{}, ErrInvalidCredentials
	}
	if !valid {
		return model.User{}, ErrInvalidCredentials
	}

	if user.IsBlocked() {
		return model.User{}, ErrAccountBlocked
	}

	// Re-hash if the stored hash uses outdated parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
		ID:          user.ID,
	}); err != nil {
		// Don't block login on this error
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	return user, nil
}

// GetUser fetches a user by ID, mapping missing rows to ErrNotFound.
func (s *AccountService) GetUser(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// ListStudents returns all non-admin accounts for the admin panel.
func (s *AccountService) ListStudents(ctx context.Context) ([]model.User, error) {
	return s.queries.ListStudents(ctx)
}

// SetStatus sets a user's account status. Admin only.
func (s *AccountService) SetStatus(ctx context.Context, actor model.User, userID int64, status string) (model.User, error) {
	if !actor.IsAdmin() {
		return model.User{}, ErrForbidden
	}
	if !model.IsValidStatus(status) {
		return model.User{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if err := s.queries.UpdateUserStatus(ctx, store.UpdateUserStatusParams{
		Status:    status,
		UpdatedAt: time.Now(),
		ID:        userID,
	}); err != nil {
		return model.User{}, fmt.Errorf("updating status: %w", err)
	}

	user.Status = status
	slog.Info("user status changed", "user_id", userID, "status", status, "changed_by", actor.ID)
	return user, nil
}

// ToggleStatus flips a user between active and blocked. Admin only.
func (s *AccountService) ToggleStatus(ctx context.Context, actor model.User, userID int64) (model.User, error) {
	if !actor.IsAdmin() {
		return model.User{}, ErrForbidden
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	status := model.StatusBlocked
	if user.IsBlocked() {
		status = model.StatusActive
	}
	return s.SetStatus(ctx, actor, userID, status)
}

// Delete removes a user together with their messages. Admin only. The two
// deletes run in one transaction so a failure leaves both tables untouched;
// the ON DELETE CASCADE foreign key is the schema-level backstop.
func (s *AccountService) Delete(ctx context.Context, actor model.User, userID int64) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.ID == userID {
		return fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return fmt.Errorf("%w: cannot delete an admin account", ErrForbidden)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	if err := qtx.DeleteMessagesByReceiver(ctx, userID); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	if err := qtx.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	slog.Info("user deleted", "user_id", userID, "username", user.Username, "deleted_by", actor.ID)
	return nil
}

// nullString converts an optional form value to its SQL representation.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
// Both SQLite drivers surface the same message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
