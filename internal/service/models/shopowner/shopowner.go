package shopowner

import (
	"errors"
	"time"
)

// ShopOwner represents a shop owner profile, 1:1 with an external
// identity-provider account.
type ShopOwner struct {
	ID        int64     `json:"id"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	ShopName  string    `json:"shopName"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrAccountTaken = errors.New("account already has a shop owner profile")
	ErrNotFound     = errors.New("shop owner not found")
)
