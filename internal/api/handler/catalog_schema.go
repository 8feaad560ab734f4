package handler

import (
	"encoding/json"
	"time"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// field is a JSON member that remembers whether it was sent and whether it was null.
type field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func (f *field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginRequest mirrors the OAuth2 password form: username carries the email.
type loginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Categories ---

type createCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type categoryResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// --- Products ---

type createProductRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	SKU         string  `json:"stockKeepingUnit"`
	CategoryID  *int64  `json:"category_id"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}

// updateProductRequest is a partial update: absent members are left untouched,
// null clears description, category_id and image_url.
type updateProductRequest struct {
	Name        field[string]  `json:"name" swaggertype:"string"`
	Description field[string]  `json:"description" swaggertype:"string"`
	Price       field[float64] `json:"price" swaggertype:"number"`
	Stock       field[int]     `json:"stock" swaggertype:"integer"`
	SKU         field[string]  `json:"stockKeepingUnit" swaggertype:"string"`
	CategoryID  field[int64]   `json:"category_id" swaggertype:"integer"`
	ImageURL    field[string]  `json:"image_url" swaggertype:"string"`
	IsActive    field[bool]    `json:"is_active" swaggertype:"boolean"`
}

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	SKU         string    `json:"stockKeepingUnit"`
	CategoryID  *int64    `json:"category_id"`
	ImageURL    *string   `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *categoryResponse `json:"category"`
}

type productPageResponse struct {
	Total int64             `json:"total"`
	Items []productResponse `json:"items"`
}
