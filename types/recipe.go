package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recipe represents a shared recipe document.
type Recipe struct {
	// ID is the unique identifier of the recipe.
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`

	// Author references the user who created the recipe.
	Author primitive.ObjectID `json:"author" bson:"author"`

	// Name is the human-readable title of the recipe.
	Name string `json:"name" bson:"name"`

	// Ingredients references the ingredient documents used by the recipe.
	Ingredients []primitive.ObjectID `json:"ingredients" bson:"ingredients"`

	// Directions contains the full preparation instructions.
	Directions string `json:"directions" bson:"directions"`

	// Tags are free-form labels used for categorization and search.
	Tags []string `json:"tags" bson:"tags"`

	// Image is the object key or URL of the finished-dish picture.
	// Every recipe must carry one.
	Image string `json:"image" bson:"image"`

	// NumFavorites counts how many users favorited the recipe.
	NumFavorites int `json:"numFavorites" bson:"numFavorites"`

	// NumHits counts how many times the recipe detail was viewed.
	NumHits int `json:"numHits" bson:"numHits"`

	// Rating is the average user rating, from 0 to 5.
	Rating float64 `json:"rating" bson:"rating"`

	// Difficulty is the author-assigned difficulty, from 0 to 10.
	Difficulty int `json:"difficulty" bson:"difficulty"`

	// DateCreated is the timestamp when the recipe was created.
	DateCreated time.Time `json:"dateCreated" bson:"dateCreated"`
}
