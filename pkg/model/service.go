package model

import "time"

type Service struct {
	ID           string     `json:"id"`
	Title        string     `json:"title" validate:"required,min=2,max=120"`
	Description  string     `json:"description" validate:"required,min=2,max=2000"`
	ProviderID   string     `json:"provider_id" validate:"required"`
	ProviderName string     `json:"provider_name,omitempty" validate:"omitempty,max=120"`
	Price        float64    `json:"price" validate:"required,gt=0"`
	CategoryID   string     `json:"category_id" validate:"required"`
	Location     string     `json:"location" validate:"omitempty,max=255"`
	Duration     int        `json:"duration" validate:"omitempty,min=1,max=24"`
	ImageURL     string     `json:"image_url" validate:"omitempty,url"`
	Rating       float64    `json:"rating" validate:"omitempty,min=0,max=5"`
	ReviewCount  int        `json:"review_count"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type ServiceUpdate struct {
	Title       *string  `json:"title,omitempty" validate:"omitnil,min=2,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitnil,min=2,max=2000"`
	Price       *float64 `json:"price,omitempty" validate:"omitnil,gt=0"`
	CategoryID  *string  `json:"category_id,omitempty" validate:"omitnil,min=1"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,max=255"`
	Duration    *int     `json:"duration,omitempty" validate:"omitnil,min=1,max=24"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IconName    string `json:"icon_name"`
	Description string `json:"description"`
	Href        string `json:"href"`
}

type Review struct {
	ID        string     `json:"id"`
	ServiceID string     `json:"service_id" validate:"required"`
	UserID    string     `json:"user_id" validate:"required"`
	Rating    int        `json:"rating" validate:"required,min=1,max=5"`
	Comment   string     `json:"comment" validate:"omitempty,max=2000"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// ServiceFilter narrows a catalog listing. Query matches title or provider
// name, case-insensitively.
type ServiceFilter struct {
	CategoryID string
	Query      string
	Limit      int
	Offset     int
}
