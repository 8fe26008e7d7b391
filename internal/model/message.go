// Copyright (c) 2026 OM Talent
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Message is a directed notice from an admin to a single student.
// Messages are immutable once sent and are removed with their receiver.
type Message struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	ReceiverID int64     `json:"receiver_id"`
	SentAt     time.Time `json:"sent_at"`
}

// Announcement is a broadcast visible to every authenticated student.
// Content is Markdown, rendered and sanitized at display time.
type Announcement struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	PostedAt time.Time `json:"posted_at"`
}
