package model

import (
	"encoding/json"
	"time"
)

// Service is a commercial or practical point of interest (shop, cafe, bank...).
type Service struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Category     ServiceCategory `db:"category" json:"category"`
	Location     string          `db:"location" json:"location"`
	Terminal     *string         `db:"terminal" json:"terminal"`
	Description  *string         `db:"description" json:"description"`
	OpeningHours *string         `db:"opening_hours" json:"opening_hours"`
	ImageURL     *string         `db:"image_url" json:"image_url"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Space is a physical area of the terminal (gate, restroom, parking...).
type Space struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Category     SpaceCategory    `db:"category" json:"category"`
	Location     string           `db:"location" json:"location"`
	Terminal     *string          `db:"terminal" json:"terminal"`
	Description  *string          `db:"description" json:"description"`
	OpeningHours *string          `db:"opening_hours" json:"opening_hours"`
	ImageURL     *string          `db:"image_url" json:"image_url"`
	Coordinates  *json.RawMessage `db:"coordinates" json:"coordinates,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

type PlaceFilter struct {
	Category *string
	Terminal *string
	Limit    int
}
