package handler

import (
	"net/http"
	"testing"
	"time"

	"restaurant_manager/model"

	"github.com/stretchr/testify/assert"
)

func TestReservationConflicts(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)
	_, token := createTestUser(t, db, "diner@example.com", model.RoleClient, nil)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)

	book := func(tableId uint, from, to time.Time) (int, map[string]interface{}) {
		return doRequest(t, app, http.MethodPost, "/reservation", token, map[string]interface{}{
			"restaurantId":     fx.Restaurant.ID,
			"tableId":          tableId,
			"partySize":        2,
			"reservationStart": from.Format(time.RFC3339),
			"reservationEnd":   to.Format(time.RFC3339),
		})
	}

	t.Run("books a free table", func(t *testing.T) {
		status, response := book(fx.Table.ID, start, end)
		assert.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "PENDING", responseData(t, response)["status"])
	})

	t.Run("rejects an overlapping booking on the same table", func(t *testing.T) {
		status, response := book(fx.Table.ID, start.Add(time.Hour), end.Add(time.Hour))
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "CONFLICT", response["code"])
	})

	t.Run("back-to-back bookings do not conflict", func(t *testing.T) {
		status, _ := book(fx.Table.ID, end, end.Add(2*time.Hour))
		assert.Equal(t, http.StatusCreated, status)
	})

	t.Run("cancelled reservations free the slot", func(t *testing.T) {
		db.Model(&model.Reservation{}).
			Where("table_id = ?", fx.Table.ID).
			Update("status", model.ReservationCancelled)

		status, _ := book(fx.Table.ID, start, end)
		assert.Equal(t, http.StatusCreated, status)
	})

	t.Run("rejects a start in the past", func(t *testing.T) {
		status, _ := book(fx.Table.ID, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestCheckAvailability(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)

	small := model.Table{RestaurantID: fx.Restaurant.ID, Number: 2, Capacity: 2, Status: "ACTIVE"}
	db.Create(&small)

	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)

	check := func(partySize int) map[string]interface{} {
		status, response := doRequest(t, app, http.MethodPost, "/reservation/availability", "",
			map[string]interface{}{
				"restaurantId":     fx.Restaurant.ID,
				"partySize":        partySize,
				"reservationStart": start.Format(time.RFC3339),
				"reservationEnd":   end.Format(time.RFC3339),
			})
		assert.Equal(t, http.StatusOK, status)
		return responseData(t, response)
	}

	t.Run("filters tables by capacity", func(t *testing.T) {
		data := check(4)
		assert.True(t, data["available"].(bool))
		tables := data["availableTables"].([]interface{})
		assert.Len(t, tables, 1)
		assert.Equal(t, float64(fx.Table.ID), tables[0].(map[string]interface{})["id"])
	})

	t.Run("booked tables drop out of the window", func(t *testing.T) {
		reservation := model.Reservation{
			RestaurantID: fx.Restaurant.ID, TableID: &fx.Table.ID,
			CustomerName: "Walk In", CustomerPhone: "0550000000",
			PartySize: 4, ReservationStart: start, ReservationEnd: end,
			Status: model.ReservationConfirmed,
		}
		db.Create(&reservation)

		data := check(4)
		assert.False(t, data["available"].(bool))
		assert.Len(t, data["availableTables"].([]interface{}), 0)

		// The small table is still free for small parties.
		data = check(2)
		assert.True(t, data["available"].(bool))
	})
}

func TestStaffReservation(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)
	_, staffToken := createTestUser(t, db, "waiter@example.com", model.RoleWaiter, &fx.Restaurant.ID)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(time.Hour)

	t.Run("requires customer contact details", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPost, "/reservation", staffToken, map[string]interface{}{
			"restaurantId":     fx.Restaurant.ID,
			"partySize":        3,
			"reservationStart": start.Format(time.RFC3339),
			"reservationEnd":   end.Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("books a phone reservation", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPost, "/reservation", staffToken, map[string]interface{}{
			"restaurantId":     fx.Restaurant.ID,
			"partySize":        3,
			"reservationStart": start.Format(time.RFC3339),
			"reservationEnd":   end.Format(time.RFC3339),
			"customerName":     "Amine B",
			"customerPhone":    "0660123456",
		})
		assert.Equal(t, http.StatusCreated, status)
		data := responseData(t, response)
		assert.Equal(t, "Amine B", data["customerName"])
		assert.Nil(t, data["userId"])
	})
}
