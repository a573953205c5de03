package models

import "time"

// Post is one blog entry as declared in Content/posts.json.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	File        string    `json:"file"`            // markdown file relative to the content dir
	Image       string    `json:"image,omitempty"` // optional cover image relative to the content dir
	Tags        []string  `json:"tags,omitempty"`
}

// PostIndex is the top-level shape of posts.json.
type PostIndex struct {
	Posts []Post `json:"posts"`
}

// RenderedPost is a post with its markdown body rendered to HTML.
type RenderedPost struct {
	Post
	HTML string `json:"html"`
}
