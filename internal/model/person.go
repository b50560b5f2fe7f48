package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is a person who can be part of a movie cast or direct it
type Actor struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image" json:"image"`
}

// ActorSummary is the populated projection of an Actor reference
type ActorSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
}
