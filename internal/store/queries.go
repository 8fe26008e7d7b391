// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/omtalent/portal-go/internal/model"
)

// DBTX is the interface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to the portal tables.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const userColumns = `id, first_name, surname, username, id_number, email, dob, phone, gender,
	password_hash, role, status, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(dest ...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.Surname, &u.Username, &u.IDNumber, &u.Email,
		&u.DOB, &u.Phone, &u.Gender, &u.PasswordHash, &u.Role, &u.Status,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	return u, err
}

// CreateUserParams holds the fields for creating a user.
type CreateUserParams struct {
	FirstName    string
	Surname      string
	Username     string
	IDNumber     sql.NullString
	Email        string
	DOB          sql.NullString
	Phone        sql.NullString
	Gender       sql.NullString
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (first_name, surname, username, id_number, email, dob, phone, gender,
			password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.FirstName, arg.Surname, arg.Username, arg.IDNumber, arg.Email,
		arg.DOB, arg.Phone, arg.Gender, arg.PasswordHash, arg.Role, arg.Status,
		arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           id,
		FirstName:    arg.FirstName,
		Surname:      arg.Surname,
		Username:     arg.Username,
		IDNumber:     arg.IDNumber,
		Email:        arg.Email,
		DOB:          arg.DOB,
		Phone:        arg.Phone,
		Gender:       arg.Gender,
		PasswordHash: arg.PasswordHash,
		Role:         arg.Role,
		Status:       arg.Status,
		CreatedAt:    arg.CreatedAt,
		UpdatedAt:    arg.UpdatedAt,
	}, nil
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername fetches a user by username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByIDNumber fetches a user by external id-number.
func (q *Queries) GetUserByIDNumber(ctx context.Context, idNumber string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id_number = ?`, idNumber)
	return scanUser(row)
}

// ListStudents returns all non-admin users, oldest first.
func (q *Queries) ListStudents(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role != ? ORDER BY id`, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountStudents returns the number of non-admin users.
func (q *Queries) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role != ?`, model.RoleAdmin).Scan(&count)
	return count, err
}

// CountUsersByRole returns the number of users with the given role.
func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&count)
	return count, err
}

// UpdateUserStatusParams holds the fields for a status update.
type UpdateUserStatusParams struct {
	Status    string
	UpdatedAt time.Time
	ID        int64
}

// UpdateUserStatus sets a user's account status.
func (q *Queries) UpdateUserStatus(ctx context.Context, arg UpdateUserStatusParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		arg.Status, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserPasswordParams holds the fields for a password update.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserLastLoginParams holds the fields for a last-login update.
type UpdateUserLastLoginParams struct {
	LastLoginAt sql.NullTime
	ID          int64
}

// UpdateUserLastLogin records the time of the user's latest successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, arg.LastLoginAt, arg.ID)
	return err
}

// DeleteUser removes a user row.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// CreateMessageParams holds the fields for creating a message.
type CreateMessageParams struct {
	Content    string
	ReceiverID int64
	SentAt     time.Time
}

// CreateMessage inserts a directed message.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (model.Message, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO messages (content, receiver_id, sent_at) VALUES (?, ?, ?)`,
		arg.Content, arg.ReceiverID, arg.SentAt)
	if err != nil {
		return model.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, err
	}
	return model.Message{
		ID:         id,
		Content:    arg.Content,
		ReceiverID: arg.ReceiverID,
		SentAt:     arg.SentAt,
	}, nil
}

// ListMessagesByReceiver returns all messages addressed to a user, newest first.
func (q *Queries) ListMessagesByReceiver(ctx context.Context, receiverID int64) ([]model.Message, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, content, receiver_id, sent_at FROM messages
		WHERE receiver_id = ? ORDER BY sent_at DESC, id DESC`, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.ReceiverID, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteMessagesByReceiver removes all messages addressed to a user.
func (q *Queries) DeleteMessagesByReceiver(ctx context.Context, receiverID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM messages WHERE receiver_id = ?`, receiverID)
	return err
}

// CreateAnnouncementParams holds the fields for creating an announcement.
type CreateAnnouncementParams struct {
	Title    string
	Content  string
	PostedAt time.Time
}

// CreateAnnouncement inserts a broadcast announcement.
func (q *Queries) CreateAnnouncement(ctx context.Context, arg CreateAnnouncementParams) (model.Announcement, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO announcements (title, content, posted_at) VALUES (?, ?, ?)`,
		arg.Title, arg.Content, arg.PostedAt)
	if err != nil {
		return model.Announcement{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Announcement{}, err
	}
	return model.Announcement{
		ID:       id,
		Title:    arg.Title,
		Content:  arg.Content,
		PostedAt: arg.PostedAt,
	}, nil
}

// ListAnnouncements returns all announcements, newest first.
func (q *Queries) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, title, content, posted_at FROM announcements
		ORDER BY posted_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var announcements []model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.PostedAt); err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// CreateEventParams holds the fields for creating an audit event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	RequestID string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an audit log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, request_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.RequestID, arg.Metadata, arg.CreatedAt)
	if err != nil {
		return model.Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		ID:        id,
		Level:     arg.Level,
		Category:  arg.Category,
		Message:   arg.Message,
		UserID:    arg.UserID,
		RequestID: arg.RequestID,
		Metadata:  arg.Metadata,
		CreatedAt: arg.CreatedAt,
	}, nil
}

// ListRecentEvents returns the newest audit events up to limit.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, request_id, metadata, created_at
		FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
			&e.RequestID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEventsBefore removes audit events created before the cutoff time.
// Returns the number of rows removed.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
