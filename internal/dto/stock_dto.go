package dto

// ─── Stock mutations ─────────────────────────────────────────────────────────

type RecordMutationRequest struct {
	ProductID   string `json:"product_id"  validate:"required,uuid"`
	Type        string `json:"type"        validate:"required,oneof=in out"`
	Quantity    int    `json:"quantity"    validate:"required,gt=0"`
	Date        string `json:"date"        validate:"required,datetime=2006-01-02"`
	Description string `json:"description"`
}

type StockMutationFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=in out"`
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type StockMutationResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
	BeforeStock int    `json:"before_stock"`
	AfterStock  int    `json:"after_stock"`
	Date        string `json:"date"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
	CreatedAt   string `json:"created_at"`
}

type StockMutationListResponse struct {
	Data  []StockMutationResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// ProductMutationsResponse pairs a product with its ledger history.
type ProductMutationsResponse struct {
	Product   ProductResponse         `json:"product"`
	Mutations []StockMutationResponse `json:"stock_mutations"`
}

// ─── Stock cards ─────────────────────────────────────────────────────────────

type CreateStockCardRequest struct {
	ProductID    string  `json:"product_id"    validate:"required,uuid"`
	Date         string  `json:"date"          validate:"required,datetime=2006-01-02"`
	InitialStock int     `json:"initial_stock" validate:"min=0"`
	InStock      int     `json:"in_stock"      validate:"min=0"`
	OutStock     int     `json:"out_stock"     validate:"min=0"`
	Notes        *string `json:"notes"`
}

// UpdateStockCardRequest deliberately omits initial_stock: once captured at
// first write it represents "stock at start of day" and stays immutable.
type UpdateStockCardRequest struct {
	Date     *string `json:"date"      validate:"omitempty,datetime=2006-01-02"`
	InStock  *int    `json:"in_stock"  validate:"omitempty,min=0"`
	OutStock *int    `json:"out_stock" validate:"omitempty,min=0"`
	Notes    *string `json:"notes"`
}

type StockCardFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type StockCardResponse struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	Date         string  `json:"date"`
	InitialStock int     `json:"initial_stock"`
	InStock      int     `json:"in_stock"`
	OutStock     int     `json:"out_stock"`
	FinalStock   int     `json:"final_stock"`
	Notes        *string `json:"notes"`
}

type StockCardListResponse struct {
	Data  []StockCardResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// ProductStockCardsResponse pairs a product with its daily rollups.
type ProductStockCardsResponse struct {
	Product    ProductResponse     `json:"product"`
	StockCards []StockCardResponse `json:"stock_cards"`
}
