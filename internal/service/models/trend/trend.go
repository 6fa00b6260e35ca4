package trend

import "github.com/shopspring/decimal"

// ProductAggregate is one row of the product movement aggregation over
// delivered orders, grouped by product name and SKU.
type ProductAggregate struct {
	ProductName       string
	SKU               string
	ProductImage      string
	Last30DaysOrders  int64
	Last90DaysOrders  int64
	Last30DaysQty     int64
	Last90DaysQty     int64
	TotalQuantitySold int64
	TotalSalesAmount  decimal.Decimal
}

// ProductTrend is a scored aggregate served to the dashboard.
type ProductTrend struct {
	ProductName        string          `json:"productName"`
	SKU                string          `json:"sku"`
	ProductImage       string          `json:"productImage,omitempty"`
	Last30DaysOrders   int64           `json:"last30DaysOrders"`
	Last90DaysOrders   int64           `json:"last90DaysOrders"`
	Last30DaysQty      int64           `json:"last30DaysQty"`
	Last90DaysQty      int64           `json:"last90DaysQty"`
	TotalQuantitySold  int64           `json:"totalQuantitySold"`
	TotalSalesAmount   decimal.Decimal `json:"totalSalesAmount"`
	GrowthRate         string          `json:"growthRate"`
	MovementSpeed      string          `json:"movementSpeed"`
	PredictedNext30Day int64           `json:"predictedNext30Days"`
}
