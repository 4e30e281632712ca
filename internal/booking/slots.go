package booking

import (
	"time"

	"github.com/dawsdoon/AutoCare/internal/catalog"
)

// Slot is one entry of a day's slot menu with its availability flag. Taken
// slots stay in the list so callers can render them disabled rather than
// hidden.
type Slot struct {
	Time  string
	Taken bool
}

// AvailableSlots maps the service's full slot menu to per-slot availability
// given the day's existing bookings. Menu order is preserved and no slot is
// ever dropped.
func AvailableSlots(date time.Time, serviceType catalog.ServiceType, bookings []Booking) []Slot {
	taken := make(map[string]bool)
	for i := range bookings {
		b := &bookings[i]
		if sameDay(b.BookingDate, date) && b.OccupiesSlot() {
			taken[b.SlotTime] = true
		}
	}

	menu := catalog.SlotMenu(serviceType)
	slots := make([]Slot, len(menu))
	for i, label := range menu {
		slots[i] = Slot{Time: label, Taken: taken[label]}
	}
	return slots
}

// HasConflict reports whether an existing non-cancelled booking already
// holds the exact (date, time) pair. Advisory only: the persistence layer's
// uniqueness constraint is the real guard against concurrent bookers.
func HasConflict(date time.Time, slotTime string, bookings []Booking) bool {
	for i := range bookings {
		b := &bookings[i]
		if sameDay(b.BookingDate, date) && b.SlotTime == slotTime && b.OccupiesSlot() {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
