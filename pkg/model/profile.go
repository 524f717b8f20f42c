package model

import "time"

type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Profile is account metadata keyed by identity id. An empty Role means the
// account has not picked one yet.
type Profile struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	AvatarURL string     `json:"avatar_url"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitnil,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitnil,min=1,max=100"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// ProviderDetails only exists for profiles with the provider role.
type ProviderDetails struct {
	ID           string `json:"id"`
	BusinessName string `json:"business_name"`
	Bio          string `json:"bio"`
	Expertise    string `json:"expertise"`
}

type ProviderApplication struct {
	BusinessName string `json:"business_name" validate:"required,min=2,max=120"`
	Bio          string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Expertise    string `json:"expertise,omitempty" validate:"omitempty,max=255"`
	Phone        string `json:"phone" validate:"required,max=32"`
	Address      string `json:"address" validate:"required,min=2,max=255"`
}
