package backend

import "time"

// UserRecord mirrors the backend's user payload.
type UserRecord struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult is returned by a successful login call.
type LoginResult struct {
	Token string     `json:"token"`
	User  UserRecord `json:"user"`
}

// ProductSummary is one row of the enhanced stock summary.
type ProductSummary struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	TotalAddedQty    int64   `json:"total_added_qty"`
	TotalSoldQty     int64   `json:"total_sold_qty"`
	RemainingQty     int64   `json:"remaining_qty"`
	AvgPurchasePrice float64 `json:"avg_purchase_price"`
	AvgSellingPrice  float64 `json:"avg_selling_price"`
}

// Summary aggregates the dashboard figures computed by the backend.
type Summary struct {
	Products      []ProductSummary `json:"products"`
	TotalProducts int64            `json:"total_products"`
	TotalAddedQty int64            `json:"total_added_qty"`
	TotalSoldQty  int64            `json:"total_sold_qty"`
	TotalProfit   float64          `json:"total_profit"`
}

// ProductDetail is the short form used by product pickers.
type ProductDetail struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	RemainingQty int64  `json:"remaining_qty"`
}

// AddStockInput posts a stock addition.
type AddStockInput struct {
	ProductName   string  `json:"product_name"`
	Quantity      int64   `json:"quantity"`
	PurchasePrice float64 `json:"purchase_price"`
}

// SellStockInput posts a stock sale.
type SellStockInput struct {
	ProductID    int64   `json:"product_id"`
	Quantity     int64   `json:"quantity"`
	SellingPrice float64 `json:"selling_price"`
}

// Order mirrors the backend order record, customer fields included.
type Order struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"product_id"`
	ProductName     string    `json:"product_name"`
	QuantitySold    int64     `json:"quantity_sold"`
	TotalAmount     string    `json:"total_amount"`
	CustomerName    string    `json:"customer_name"`
	CustomerAddress string    `json:"customer_address"`
	CustomerPhone   string    `json:"customer_phone"`
	SaleDate        time.Time `json:"sale_date"`
	CreatedBy       string    `json:"created_by"`
}

// CreateOrderInput posts a new order with customer details.
type CreateOrderInput struct {
	ProductID       int64   `json:"product_id"`
	Quantity        int64   `json:"quantity"`
	SellingPrice    float64 `json:"selling_price"`
	CustomerName    string  `json:"customer_name"`
	CustomerAddress string  `json:"customer_address"`
	CustomerPhone   string  `json:"customer_phone"`
}

// RegisterUserInput posts a new account. Role has already passed the
// caller's ceiling check; the backend re-validates it regardless.
type RegisterUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateProfileInput changes the caller's own account.
type UpdateProfileInput struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// ActivityEntry is one activity-log line.
type ActivityEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEntry is one daily-history transaction row. Type is either
// "add" or "sell".
type HistoryEntry struct {
	ID          int64     `json:"id"`
	Type        string    `json:"transaction_type"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalAmount float64   `json:"total_amount"`
	Date        time.Time `json:"date"`
	CreatedBy   string    `json:"created_by"`
}
