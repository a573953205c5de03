package models

import "time"

// ContactMessage is one submission from the contact form. Every message is
// persisted before any delivery attempt so a mail outage loses nothing.
type ContactMessage struct {
	ID        string    `json:"id" badgerhold:"key"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}
