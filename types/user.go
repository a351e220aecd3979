package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the system.
type User struct {
	// ID is the unique identifier assigned by the database at creation.
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`

	// Display is the user's public display name (1-32 characters).
	Display string `json:"display" bson:"display"`

	// Email is the user's address. A unique index on this field enforces
	// one account per address.
	Email string `json:"email" bson:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// It is empty for accounts created through the Google flow and is never
	// exposed in API responses.
	PasswordHash string `json:"-" bson:"password,omitempty"`

	// Avatar is an optional URL to the user's profile picture.
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`

	// Google indicates the account was created through Google sign-in.
	Google bool `json:"google" bson:"google"`

	// Verified indicates the user has confirmed their email address.
	// Most authenticated actions are gated on this flag.
	Verified bool `json:"verified" bson:"verified"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"dateCreated" bson:"dateCreated"`
}

// UserRef is the public projection of a user attached to records they
// authored. It carries only what list endpoints need to display.
type UserRef struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Display string             `json:"display" bson:"display"`
}

// Ref returns the public projection of the user.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Display: u.Display}
}
