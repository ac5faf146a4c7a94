package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterRequest struct {
	Name     string  `json:"name"     validate:"required,min=2,max=255"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Address  *string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateUserRequest struct {
	Name     string  `json:"name"     validate:"required,min=2,max=255"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role"     validate:"required,oneof=admin user"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Address  *string `json:"address"`
}

type UpdateUserRequest struct {
	Name     string  `json:"name"     validate:"omitempty,min=2,max=255"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Role     string  `json:"role"     validate:"omitempty,oneof=admin user"`
	Password string  `json:"password" validate:"omitempty,min=6"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Address  *string `json:"address"`
}

type UpdateProfileRequest struct {
	Name     string  `json:"name"     validate:"omitempty,min=2,max=255"`
	Password string  `json:"password" validate:"omitempty,min=6"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Address  *string `json:"address"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Role    string  `json:"role"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Active  bool    `json:"active"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	User         UserResponse `json:"user"`
}
