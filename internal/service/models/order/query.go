package order

import "time"

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids          []int64    `json:"ids,omitempty"`
	CustomerIds  []int64    `json:"customerIds,omitempty"`
	ShopOwnerIds []int64    `json:"shopOwnerIds,omitempty"`
	Statuses     []Status   `json:"statuses,omitempty"`
	OrderedFrom  *time.Time `json:"orderedFrom,omitempty"`
	OrderedTo    *time.Time `json:"orderedTo,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
}
