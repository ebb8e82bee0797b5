package food_test

import (
	"testing"

	"github.com/campuseats/canteen/internal/service/models/food"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		food          food.Food
		wantStock     int
		wantAvailable bool
	}{
		{
			name:          "in stock and shown",
			food:          food.Food{Stock: 3, IsAvailable: true},
			wantStock:     3,
			wantAvailable: true,
		},
		{
			name:          "owner may hide an in-stock food",
			food:          food.Food{Stock: 3, IsAvailable: false},
			wantStock:     3,
			wantAvailable: false,
		},
		{
			name:          "zero stock is never available",
			food:          food.Food{Stock: 0, IsAvailable: true},
			wantStock:     0,
			wantAvailable: false,
		},
		{
			name:          "negative stock is clamped to zero",
			food:          food.Food{Stock: -2, IsAvailable: true},
			wantStock:     0,
			wantAvailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.food
			f.Normalize()
			assert.Equal(t, tt.wantStock, f.Stock)
			assert.Equal(t, tt.wantAvailable, f.IsAvailable)
		})
	}
}
