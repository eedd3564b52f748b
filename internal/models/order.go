package models

import (
	"fmt"
	"time"
)

// Burger represents a single item on the kiosk menu.
type Burger struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Emoji string `json:"emoji"`
}

// Order represents a customer order mirrored to the realtime store.
// The store assigns the ID on append; everything else is set at placement
// time and only the status field is ever mutated afterwards.
type Order struct {
	ID          string      `json:"id"`
	Burger      Burger      `json:"burger"`
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	TimeDisplay string      `json:"timeDisplay"`
	OrderNumber int64       `json:"orderNumber"`
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusWaiting   OrderStatus = "waiting"
	OrderStatusCooking   OrderStatus = "cooking"
	OrderStatusCompleted OrderStatus = "completed"
)

// Valid reports whether s is one of the known order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusWaiting, OrderStatusCooking, OrderStatusCompleted:
		return true
	}
	return false
}

var seoul = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// KoreanTimeDisplay renders t the way the kiosk shows order times,
// e.g. "오후 3:04:05".
func KoreanTimeDisplay(t time.Time) string {
	t = t.In(seoul)
	meridiem := "오전"
	hour := t.Hour()
	if hour >= 12 {
		meridiem = "오후"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%s %d:%02d:%02d", meridiem, hour12, t.Minute(), t.Second())
}
