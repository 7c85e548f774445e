// Package state keeps a history of completed renders in SQLite.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotOpen is returned when the store is used before Open.
var ErrNotOpen = errors.New("database not opened")

// ErrNotFound is returned when a render id does not exist.
var ErrNotFound = errors.New("render not found")

// Entry records one rendered image.
type Entry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Output    string    `json:"output"`
	Separator string    `json:"separator"`
	Columns   int       `json:"columns"`
	Rows      int       `json:"rows"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	FontSize  float64   `json:"font_size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the render history.
type Store interface {
	Record(ctx context.Context, e Entry) (*Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
