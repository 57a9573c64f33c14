package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"restaurant_manager/model"

	"github.com/gofiber/contrib/websocket"
)

// feedConns tracks live websocket connections per restaurant. Guarded by
// feedMu; connections are removed on read error or close.
var (
	feedMu    sync.Mutex
	feedConns = map[uint]map[*websocket.Conn]bool{}
)

func orderFeedChannel(restaurantId uint) string {
	return fmt.Sprintf("orders:restaurant:%d", restaurantId)
}

func registerFeedConn(restaurantId uint, conn *websocket.Conn) {
	feedMu.Lock()
	defer feedMu.Unlock()
	if feedConns[restaurantId] == nil {
		feedConns[restaurantId] = map[*websocket.Conn]bool{}
	}
	feedConns[restaurantId][conn] = true
}

func unregisterFeedConn(restaurantId uint, conn *websocket.Conn) {
	feedMu.Lock()
	defer feedMu.Unlock()
	delete(feedConns[restaurantId], conn)
	if len(feedConns[restaurantId]) == 0 {
		delete(feedConns, restaurantId)
	}
}

// BroadcastRestaurantOrders publishes the restaurant's in-flight orders on
// the redis channel. Every process subscribed to the channel pushes the
// snapshot to its local websocket connections; with redis absent the local
// connections are served directly.
func (h *Handler) BroadcastRestaurantOrders(restaurantId uint) {
	var orders []model.Order
	if err := h.DB.
		Preload("Items").
		Preload("Table").
		Where("restaurant_id = ? AND status IN ?", restaurantId,
			[]string{model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing, model.OrderStatusReady}).
		Order("order_time asc").
		Find(&orders).Error; err != nil {
		log.Println("order feed query failed:", err)
		return
	}

	payload, err := json.Marshal(feedMessage(restaurantId, orders))
	if err != nil {
		log.Println("order feed marshal failed:", err)
		return
	}

	if h.Redis != nil {
		if err := h.Redis.Publish(context.Background(), orderFeedChannel(restaurantId), payload).Err(); err == nil {
			return
		}
	}
	deliverToFeed(restaurantId, payload)
}

func feedMessage(restaurantId uint, orders []model.Order) map[string]interface{} {
	return map[string]interface{}{
		"type":         "orders",
		"restaurantId": restaurantId,
		"orders":       orderListRows(orders),
	}
}

func deliverToFeed(restaurantId uint, payload []byte) {
	feedMu.Lock()
	conns := make([]*websocket.Conn, 0, len(feedConns[restaurantId]))
	for conn := range feedConns[restaurantId] {
		conns = append(conns, conn)
	}
	feedMu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			unregisterFeedConn(restaurantId, conn)
			conn.Close()
		}
	}
}

// StartOrderFeedRelay subscribes to the redis order channels and fans
// messages out to local websocket connections. Runs until ctx is cancelled.
func (h *Handler) StartOrderFeedRelay(ctx context.Context) {
	if h.Redis == nil {
		return
	}
	sub := h.Redis.PSubscribe(ctx, "orders:restaurant:*")
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var restaurantId uint
				if _, err := fmt.Sscanf(msg.Channel, "orders:restaurant:%d", &restaurantId); err != nil {
					continue
				}
				deliverToFeed(restaurantId, []byte(msg.Payload))
			}
		}
	}()
}

// OrderFeed is the websocket endpoint for a restaurant's kitchen display.
// The initial snapshot is sent on connect, updates arrive on order changes.
func (h *Handler) OrderFeed() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		restaurantId, ok := conn.Locals("restaurantId").(uint)
		if !ok {
			conn.Close()
			return
		}

		registerFeedConn(restaurantId, conn)
		defer func() {
			unregisterFeedConn(restaurantId, conn)
			conn.Close()
		}()

		h.BroadcastRestaurantOrders(restaurantId)

		// Drain client messages; the feed is server-push only.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
