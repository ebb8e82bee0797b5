package food

// QueryFoodsModel represents filter parameters for querying foods.
type QueryFoodsModel struct {
	Ids             []int64 `json:"ids,omitempty"`
	ShopOwnerIds    []int64 `json:"shopOwnerIds,omitempty"`
	PurchasableOnly bool    `json:"purchasableOnly,omitempty"`
	Limit           int     `json:"limit,omitempty"`
	Offset          int     `json:"offset,omitempty"`
}
