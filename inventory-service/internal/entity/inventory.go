package entity

import (
	"time"
)

// Inventory остаток товара на складе
type Inventory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProductCode string    `json:"productCode" gorm:"not null;uniqueIndex"`
	Available   int       `json:"available" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OrderInventory снимок остатка до и после списания одной строки заказа.
// Line номер строки в заказе, поэтому повторяющиеся коды получают отдельные снимки.
type OrderInventory struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	InventoryID   uint      `json:"inventoryId" gorm:"not null;index"`
	OrderID       string    `json:"orderId" gorm:"not null;uniqueIndex:idx_order_inventory_line"`
	TransactionID string    `json:"transactionId" gorm:"not null;uniqueIndex:idx_order_inventory_line"`
	Line          int       `json:"line" gorm:"not null;uniqueIndex:idx_order_inventory_line"`
	OrderQuantity int       `json:"orderQuantity" gorm:"not null"`
	OldQuantity   int       `json:"oldQuantity" gorm:"not null"`
	NewQuantity   int       `json:"newQuantity" gorm:"not null"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SetStockRequest запрос на установку остатка товара
type SetStockRequest struct {
	ProductCode string `json:"productCode" binding:"required"`
	Available   *int   `json:"available" binding:"required,min=0"`
}
