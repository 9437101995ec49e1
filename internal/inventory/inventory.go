package inventory

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
)

// ApplyOrderDeltas decrements on-hand stock and increments the sold counter
// for every line of a finalized order. It must run inside the transaction
// that creates the order so a failed adjustment rolls the whole order back.
//
// Stock is allowed to go negative: finalization records oversell rather than
// failing the purchase, and replenishment squares the counter later.
func ApplyOrderDeltas(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		res := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			Updates(map[string]any{
				"quantity": gorm.Expr("quantity - ?", item.Quantity),
				"sold":     gorm.Expr("sold + ?", item.Quantity),
			})
		if res.Error != nil {
			return fmt.Errorf("adjusting stock for product %s: %w", item.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %s no longer exists", item.ProductID)
		}
	}
	return nil
}
