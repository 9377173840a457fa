package domain

import "time"

type Airport struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	City        string        `json:"city"`
	Country     string        `json:"country"`
	Amenities   string        `json:"amenities"`
	AvgSecurity time.Duration `json:"avg_security"`
	ImageURL    string        `json:"image_url"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
