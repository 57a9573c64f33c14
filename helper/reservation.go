package helper

import (
	"log"
	"time"

	"restaurant_manager/model"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var reservationCron *cron.Cron

// OverlappingReservations returns PENDING/CONFIRMED reservations of a
// restaurant whose window intersects [start, end).
func OverlappingReservations(db *gorm.DB, restaurantId uint, start, end time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := db.
		Where("restaurant_id = ? AND status IN ?", restaurantId,
			[]string{model.ReservationPending, model.ReservationConfirmed}).
		Where("reservation_start < ? AND reservation_end > ?", end, start).
		Find(&reservations).Error
	return reservations, err
}

// StartReservationScheduler marks PENDING reservations past their end as
// NO_SHOW every ten minutes.
func StartReservationScheduler(db *gorm.DB) {
	reservationCron = cron.New()
	_, err := reservationCron.AddFunc("*/10 * * * *", func() {
		result := db.Model(&model.Reservation{}).
			Where("status = ? AND reservation_end < ?", model.ReservationPending, time.Now()).
			Update("status", model.ReservationNoShow)
		if result.Error != nil {
			log.Println("reservation sweep failed:", result.Error)
		} else if result.RowsAffected > 0 {
			log.Printf("reservation sweep: %d marked NO_SHOW", result.RowsAffected)
		}
	})
	if err != nil {
		log.Println("failed to schedule reservation sweep:", err)
		return
	}
	reservationCron.Start()
}

func StopReservationScheduler() {
	if reservationCron != nil {
		reservationCron.Stop()
	}
}
