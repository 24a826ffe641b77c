package domain

import "time"

type Session struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movieId"`
	HallID    int64     `json:"hallId"`
	StartTime time.Time `json:"startTime"`
	Price     float64   `json:"price"`
}

type Movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Duration    int      `json:"duration"`
	AgeRating   string   `json:"ageRating,omitempty"`
	PosterURL   string   `json:"posterUrl,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}
