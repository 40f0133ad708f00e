package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleEmployee Role = "EMPLOYEE"
)

// User is a single identity record for both roles. Role-specific
// fields live on the same row: Balance for clients, Phone/BirthDate
// for employees.
type User struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Name         string          `json:"name"`
	Role         Role            `json:"role"`
	Blocked      bool            `json:"blocked"`
	Balance      decimal.Decimal `json:"balance"`
	Phone        *string         `json:"phone,omitempty"`
	BirthDate    *time.Time      `json:"birth_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RegisterReq represents client registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
