// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// User is a tracked account as stored locally.
type User struct {
	ID        int64     `json:"id"`
	Login     string    `json:"user"`
	Platform  Platform  `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserAvatar points at the avatar image stored for a user.
// Ext is empty when the image type could not be determined.
type UserAvatar struct {
	ID     int64
	UserID int64
	Ext    string
}

// Filename returns the on-disk file name, e.g. "12.png".
func (a *UserAvatar) Filename() string {
	name := strconv.FormatInt(a.ID, 10)
	if a.Ext != "" {
		name += "." + a.Ext
	}
	return name
}

// FullUser is the read-only record returned by get_user.
// CreatedAt is when the user was added locally and UpdatedAt when it was
// last synced from the platform.
type FullUser struct {
	User         string       `json:"user"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Avatar       string       `json:"avatar"`
	PlatformUser PlatformUser `json:"platform_user"`
}

// GitHubProfile returns the embedded GitHub profile, or nil for other platforms.
func (u *FullUser) GitHubProfile() *GitHubUser {
	if u == nil || u.PlatformUser.GitHub == nil {
		return nil
	}
	return &u.PlatformUser.GitHub.User
}
