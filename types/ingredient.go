package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ingredient represents a reusable ingredient document that recipes
// reference by id.
type Ingredient struct {
	// ID is the unique identifier of the ingredient.
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`

	// Author references the user who created the ingredient.
	Author primitive.ObjectID `json:"author" bson:"author"`

	// Name is the display name of the ingredient.
	Name string `json:"name" bson:"name"`

	// Image is an optional picture of the ingredient.
	Image string `json:"image,omitempty" bson:"image,omitempty"`

	// DateCreated is the timestamp when the ingredient was created.
	DateCreated time.Time `json:"dateCreated" bson:"dateCreated"`
}
