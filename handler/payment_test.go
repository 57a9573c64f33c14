package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"restaurant_manager/model"

	"github.com/stretchr/testify/assert"
)

// newMockGateway serves the initiate/show contract and counts initiate calls.
func newMockGateway(t *testing.T, initiates *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/initiate":
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			atomic.AddInt32(initiates, 1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"id": "TX123456",
					"attributes": map[string]interface{}{
						"form_url": "https://gateway.example/pay/TX123456",
						"amount":   body["amount"],
					},
				},
			})
		case "/show":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"id":         "TX123456",
					"attributes": map[string]interface{}{"status": "paid"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestInitiatePayment(t *testing.T) {
	var initiates int32
	server := newMockGateway(t, &initiates)
	defer server.Close()

	app, _, db := newTestApp(t, server.URL)
	fx := seedFixtures(t, db)
	user, token := createTestUser(t, db, "payer@example.com", model.RoleClient, nil)

	order := model.Order{
		OrderNumber: "ORD-20250830-CAFE0001", UserID: &user.ID,
		RestaurantID: fx.Restaurant.ID, Type: model.OrderTypeDineIn,
		Status: model.OrderStatusConfirmed, Subtotal: 25.5, TotalAmount: 25.5,
		PaymentStatus: model.PaymentStatusPending, OrderTime: time.Now(),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}

	body := map[string]interface{}{"orderId": order.ID, "language": "fr"}

	t.Run("opens a gateway transaction", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPost, "/payment/initiate", token, body)

		assert.Equal(t, http.StatusCreated, status)
		data := responseData(t, response)
		assert.True(t, data["success"].(bool))
		assert.Equal(t, "TX123456", data["transactionId"])
		assert.Equal(t, "https://gateway.example/pay/TX123456", data["formUrl"])
		// 25.50 in minor units
		assert.Equal(t, "2550", data["amount"])
		assert.Equal(t, int32(1), atomic.LoadInt32(&initiates))
	})

	t.Run("a second initiate returns the stored payment", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPost, "/payment/initiate", token, body)

		assert.Equal(t, http.StatusOK, status)
		data := responseData(t, response)
		assert.True(t, data["success"].(bool))
		assert.Equal(t, "PAYMENT_EXISTS", data["message"])
		assert.Equal(t, "TX123456", data["transactionId"])

		// No second gateway call, no duplicate record.
		assert.Equal(t, int32(1), atomic.LoadInt32(&initiates))
		var count int64
		db.Model(&model.Payment{}).Where("order_id = ?", order.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rejects paying another user's order", func(t *testing.T) {
		_, otherToken := createTestUser(t, db, "someone@example.com", model.RoleClient, nil)
		status, _ := doRequest(t, app, http.MethodPost, "/payment/initiate", otherToken, body)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("rejects already paid orders", func(t *testing.T) {
		db.Model(&model.Order{}).Where("id = ?", order.ID).
			Update("payment_status", model.PaymentStatusPaid)

		status, response := doRequest(t, app, http.MethodPost, "/payment/initiate", token, body)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "CONFLICT", response["code"])
	})
}

func TestInitiatePaymentGatewayDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	app, _, db := newTestApp(t, server.URL)
	fx := seedFixtures(t, db)
	user, token := createTestUser(t, db, "payer@example.com", model.RoleClient, nil)

	order := model.Order{
		OrderNumber: "ORD-20250830-CAFE0002", UserID: &user.ID,
		RestaurantID: fx.Restaurant.ID, Type: model.OrderTypeDineIn,
		Status: model.OrderStatusConfirmed, Subtotal: 10, TotalAmount: 10,
		PaymentStatus: model.PaymentStatusPending, OrderTime: time.Now(),
	}
	db.Create(&order)

	status, response := doRequest(t, app, http.MethodPost, "/payment/initiate", token,
		map[string]interface{}{"orderId": order.ID})

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "GATEWAY_ERROR", response["code"])

	// No payment record survives a failed initiate.
	var count int64
	db.Model(&model.Payment{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetPaymentByOrder(t *testing.T) {
	var initiates int32
	server := newMockGateway(t, &initiates)
	defer server.Close()

	app, _, db := newTestApp(t, server.URL)
	fx := seedFixtures(t, db)
	user, token := createTestUser(t, db, "payer@example.com", model.RoleClient, nil)

	order := model.Order{
		OrderNumber: "ORD-20250830-CAFE0003", UserID: &user.ID,
		RestaurantID: fx.Restaurant.ID, Type: model.OrderTypeDineIn,
		Status: model.OrderStatusConfirmed, Subtotal: 18, TotalAmount: 18,
		PaymentStatus: model.PaymentStatusPending, OrderTime: time.Now(),
	}
	db.Create(&order)
	payment := model.Payment{TransactionID: "TX123456", OrderID: order.ID}
	db.Create(&payment)

	t.Run("returns the payment row", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodGet,
			fmt.Sprintf("/payment/order/%d", order.ID), token, nil)

		assert.Equal(t, http.StatusOK, status)
		data := responseData(t, response)
		assert.Equal(t, "TX123456", data["transactionId"])
		assert.Equal(t, order.OrderNumber, data["orderNumber"])
		assert.Equal(t, 18.0, data["amount"])
	})

	t.Run("unknown order has no payment", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodGet, "/payment/order/99999", token, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
