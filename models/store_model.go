package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Tags        []string           `json:"tags" bson:"tags"`
	Created     time.Time          `json:"created" bson:"created"`
	Location    Location           `json:"location" bson:"location"`
	Photo       string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Author      string             `json:"author" bson:"author"`
}

// Location is a GeoJSON point plus the human-readable address.
// Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address" bson:"address"`
}

// StoreSummary is the reduced projection returned by the map/near query.
type StoreSummary struct {
	Slug        string   `json:"slug" bson:"slug"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Location    Location `json:"location" bson:"location"`
	Photo       string   `json:"photo,omitempty" bson:"photo,omitempty"`
}

// TagCount is one group from the tag aggregation.
type TagCount struct {
	Tag   string `json:"tag" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// RatedStore is one row of the top-stores aggregation.
type RatedStore struct {
	ID            primitive.ObjectID `json:"id" bson:"_id"`
	Name          string             `json:"name" bson:"name"`
	Slug          string             `json:"slug" bson:"slug"`
	Photo         string             `json:"photo,omitempty" bson:"photo,omitempty"`
	ReviewCount   int                `json:"review_count" bson:"review_count"`
	AverageRating float64            `json:"average_rating" bson:"average_rating"`
}
