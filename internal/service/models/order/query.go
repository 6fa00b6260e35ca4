package order

// QueryOrdersModel represents filter parameters for querying persisted
// orders.
type QueryOrdersModel struct {
	OrderIDs     []int64  `json:"orderIds,omitempty"`
	AccountCodes []string `json:"accountCodes,omitempty"`
	Statuses     []string `json:"statuses,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Offset       int      `json:"offset,omitempty"`
}
