package dto

// CreateItemRequest creates a catalog item.
type CreateItemRequest struct {
	Name             string `json:"name" binding:"required"`
	UnitPrice        string `json:"unitPrice" binding:"required"`
	StockQuantity    int64  `json:"stockQuantity"`
	ReorderThreshold int64  `json:"reorderThreshold"`
}

// UpdateItemRequest updates name, price and reorder threshold. Stock is
// changed only through restock and the finalization pipeline.
type UpdateItemRequest struct {
	Name             string `json:"name" binding:"required"`
	UnitPrice        string `json:"unitPrice" binding:"required"`
	ReorderThreshold int64  `json:"reorderThreshold"`
	Version          int    `json:"version" binding:"required"`
}

// RepriceRequest changes an item's selling price.
type RepriceRequest struct {
	UnitPrice string `json:"unitPrice" binding:"required"`
}

// RestockRequest adds stock to an item.
type RestockRequest struct {
	Quantity int64 `json:"quantity" binding:"required"`
}
