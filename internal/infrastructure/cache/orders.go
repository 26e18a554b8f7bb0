package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingOrder — контекст созданного, но еще не оплаченного ордера.
// Живет в Redis, пока юзер в платежной форме.
type PendingOrder struct {
	UserID   string `json:"userId"`
	Plan     string `json:"plan"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

type OrderCache struct {
	client *redis.Client
}

func NewOrderCache(client *redis.Client) *OrderCache {
	return &OrderCache{client: client}
}

func (c *OrderCache) Save(ctx context.Context, orderID string, order PendingOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	// полчаса на оплату, дальше ордер создается заново
	return c.client.Set(ctx, "pay_order:"+orderID, data, 30*time.Minute).Err()
}

func (c *OrderCache) Get(ctx context.Context, orderID string) (*PendingOrder, error) {
	val, err := c.client.Get(ctx, "pay_order:"+orderID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var order PendingOrder
	if err := json.Unmarshal([]byte(val), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *OrderCache) Delete(ctx context.Context, orderID string) error {
	return c.client.Del(ctx, "pay_order:"+orderID).Err()
}
