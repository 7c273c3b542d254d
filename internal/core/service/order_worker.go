package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const orderWriteTimeout = 5 * time.Second

// RunOrderWorker records checked out orders until queue is closed. A failed
// write is logged only: the sale is final and stock stays consumed.
func RunOrderWorker(id int, queue <-chan domain.Order, repo port.OrderRepository, logger *zap.Logger) {
	logger = logger.With(zap.Int("worker", id))

	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), orderWriteTimeout)

		order.Status = domain.OrderStatusRecorded
		order.UpdatedAt = time.Now()
		if err := repo.CreateOrder(ctx, order); err != nil {
			logger.Error("failed to record order",
				zap.String("order_id", order.ID),
				zap.String("total", order.Total.StringFixed(2)),
				zap.Error(err),
			)
		} else {
			logger.Info("recorded order", zap.String("order_id", order.ID))
		}

		cancel()
	}
}
