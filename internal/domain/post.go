package domain

import "time"

// Post represents a user-authored post on the SafaStep platform.
//
// Content is user-generated and must be sanitized before it is rendered
// in the console (see handler.PostHandler).
type Post struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url"`
	LikesCount int64     `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostStats holds the counters attached to a post detail response.
type PostStats struct {
	LikesCount int64 `json:"likes_count"`
}

// PostDetail is the payload of GET /admin/posts/{id}.
type PostDetail struct {
	Post  Post
	Stats PostStats
}

// Excerpt returns the first n runes of the post content for table display.
func (p *Post) Excerpt(n int) string {
	runes := []rune(p.Content)
	if len(runes) <= n {
		return p.Content
	}
	return string(runes[:n]) + "…"
}
