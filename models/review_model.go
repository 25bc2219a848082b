package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Store   primitive.ObjectID `json:"store" bson:"store"`
	Author  string             `json:"author" bson:"author"`
	Text    string             `json:"text" bson:"text"`
	Rating  int                `json:"rating" bson:"rating"`
	Created time.Time          `json:"created" bson:"created"`
}
