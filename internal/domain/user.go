// Package domain contains core types shared across the console.
//
// All resource types mirror the JSON shapes served by the SafaStep
// platform API; the console never owns or mutates platform data locally.
package domain

import "time"

// User represents a registered SafaStep platform user as returned by
// the admin listing and detail endpoints.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStats holds the per-user counters attached to a detail response.
type UserStats struct {
	PostsCount int64 `json:"posts_count"`
	LikesCount int64 `json:"likes_count"`
}

// UserDetail is the payload of GET /admin/users/{id}.
type UserDetail struct {
	User  User
	Stats UserStats
}

// DisplayName returns the name to show in listings, preferring the
// full name over the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
