package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-metrics/pkg/db/models"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

const seedBatchSize = 200

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SeedOrdersInTx runs SeedOrders in one transaction, so a failed batch
// leaves no partial sample data behind.
func SeedOrdersInTx(ctx context.Context, db transactor, now time.Time, n int, seed uint64) error {
	return db.WithTx(ctx, func(tx *gorm.DB) error {
		return SeedOrders(ctx, tx, now, n, seed)
	})
}

// SeedOrders inserts n sample orders spread over the 400 days before now.
// The same seed always produces the same rows.
func SeedOrders(ctx context.Context, conn *gorm.DB, now time.Time, n int, seed uint64) error {
	if n <= 0 {
		return nil
	}
	statuses := enums.OrderStatuses()
	paymentMethods := enums.PaymentMethods()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	orders := make([]models.Order, 0, n)
	for i := range n {
		subtotal := int64(500 + rng.IntN(150000))
		discount := int64(0)
		if rng.IntN(4) == 0 {
			discount = subtotal / 10
		}
		created := now.Add(-time.Duration(rng.Int64N(int64(400 * 24 * time.Hour)))).UTC()
		status := statuses[rng.IntN(len(statuses))]
		order := models.Order{
			ID:             uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "order-%d-%d", seed, i)),
			OrderNumber:    int64(1000 + i),
			BuyerStoreID:   uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "buyer-%d", rng.IntN(25))),
			VendorStoreID:  uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "vendor-%d", rng.IntN(8))),
			Status:         status.String(),
			PaymentMethod:  paymentMethods[rng.IntN(len(paymentMethods))].String(),
			Currency:       "USD",
			SubtotalCents:  subtotal,
			DiscountsCents: discount,
			TotalCents:     subtotal - discount,
			CreatedAt:      created,
		}
		if status == enums.OrderStatusCanceled {
			canceled := created.Add(time.Hour)
			order.CanceledAt = &canceled
		}
		orders = append(orders, order)
	}
	if err := conn.WithContext(ctx).CreateInBatches(&orders, seedBatchSize).Error; err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	return nil
}
