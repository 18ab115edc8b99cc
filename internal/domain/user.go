package domain

import "time"

// Role values
const (
	RoleUser   = "user"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

// User represents a registered account. Chat only ever references users by id;
// everything beyond the public profile fields belongs to the auth/profile surface.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Password     string    `gorm:"column:password;size:255" json:"-"`
	Role         string    `gorm:"column:role;size:16;default:user" json:"role"`
	MentorStatus string    `gorm:"column:mentor_status;size:16" json:"mentor_status,omitempty"`
	ProfileImage string    `gorm:"column:profile_image;size:512" json:"profile_image,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the table name
func (User) TableName() string {
	return "users"
}

// UserSummary is the public profile embedded in chat payloads
type UserSummary struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// ToSummary converts a User to its public summary
func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is returned from register/login/refresh
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
