package customer

import (
	"errors"
	"time"
)

// Customer represents a customer profile. It wraps exactly one external
// identity-provider account; credentials are never handled here.
type Customer struct {
	ID        int64     `json:"id"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	RollNo    string    `json:"rollNo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrAccountTaken = errors.New("account already has a customer profile")
	ErrRollNoTaken  = errors.New("roll number already in use")
	ErrNotFound     = errors.New("customer not found")
)
