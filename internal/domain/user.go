package domain

import "time"

// User models a citizen or ouvidoria administrator account.
type User struct {
	ID                  string
	Name                string
	Email               string
	CPF                 *string
	Phone               *string
	PasswordHash        string
	Admin               bool
	Active              bool
	CreatedAt           time.Time
	LastLoginAt         *time.Time
	NotificationsSeenAt *time.Time
}

// NotificationWatermark is the reference instant for unread computation:
// the first non-absent of last-seen, last-login and account creation.
func (u *User) NotificationWatermark() time.Time {
	if u.NotificationsSeenAt != nil {
		return *u.NotificationsSeenAt
	}
	if u.LastLoginAt != nil {
		return *u.LastLoginAt
	}
	return u.CreatedAt
}
