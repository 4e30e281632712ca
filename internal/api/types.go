package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/dawsdoon/AutoCare/internal/booking"
	"github.com/dawsdoon/AutoCare/internal/maintenance"
)

const dateLayout = "2006-01-02"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type CreateBookingRequest struct {
	ServiceType string  `json:"service_type"`
	Date        string  `json:"date"` // YYYY-MM-DD
	SlotTime    string  `json:"slot_time"`
	VehicleID   *string `json:"vehicle_id,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type BookingResponse struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	VehicleID        *uuid.UUID `json:"vehicle_id,omitempty"`
	ServiceType      string     `json:"service_type"`
	ServiceName      string     `json:"service_name"`
	Date             string     `json:"date"`
	SlotTime         string     `json:"slot_time"`
	Status           string     `json:"status"`
	Notes            *string    `json:"notes,omitempty"`
	MileageAtService *int       `json:"mileage_at_service,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		VehicleID:        b.VehicleID,
		ServiceType:      string(b.ServiceType),
		ServiceName:      b.ServiceName,
		Date:             b.BookingDate.Format(dateLayout),
		SlotTime:         b.SlotTime,
		Status:           string(b.Status),
		Notes:            b.Notes,
		MileageAtService: b.MileageAtService,
		CreatedAt:        b.CreatedAt,
	}
}

type SlotResponse struct {
	Time  string `json:"time"`
	Taken bool   `json:"taken"`
}

type AvailableSlotsResponse struct {
	Date        string         `json:"date"`
	ServiceType string         `json:"service_type"`
	Slots       []SlotResponse `json:"slots"`
}

type ServiceResponse struct {
	Type               string   `json:"type"`
	DisplayName        string   `json:"display_name"`
	TimeIntervalMonths *int     `json:"time_interval_months,omitempty"`
	MileageInterval    *int     `json:"mileage_interval,omitempty"`
	Priority           string   `json:"priority"`
	Description        string   `json:"description"`
	Slots              []string `json:"slots"`
}

type CreateVehicleRequest struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Year    int    `json:"year"`
	Mileage *int   `json:"mileage,omitempty"`
}

type VehicleResponse struct {
	ID      uuid.UUID `json:"id"`
	Make    string    `json:"make"`
	Model   string    `json:"model"`
	Year    int       `json:"year"`
	Mileage *int      `json:"mileage,omitempty"`
}

type CompleteBookingRequest struct {
	MileageAtService *int `json:"mileage_at_service,omitempty"`
}

type ScheduleItemResponse struct {
	ServiceType        string  `json:"service_type"`
	ServiceName        string  `json:"service_name"`
	Description        string  `json:"description"`
	Priority           string  `json:"priority"`
	Status             string  `json:"status"`
	IsDue              bool    `json:"is_due"`
	LastServiceDate    *string `json:"last_service_date,omitempty"`
	LastServiceMileage *int    `json:"last_service_mileage,omitempty"`
	DaysUntilDue       *int    `json:"days_until_due,omitempty"`
	DueDate            *string `json:"due_date,omitempty"`
	MilesUntilDue      *int    `json:"miles_until_due,omitempty"`
	DueMileage         *int    `json:"due_mileage,omitempty"`
}

func toScheduleItemResponse(item maintenance.ScheduleItem) ScheduleItemResponse {
	resp := ScheduleItemResponse{
		ServiceType:        string(item.Service.Type),
		ServiceName:        item.Service.DisplayName,
		Description:        item.Service.Description,
		Priority:           string(item.Verdict.Priority),
		Status:             string(item.Verdict.Status),
		IsDue:              item.Verdict.IsDue,
		LastServiceMileage: item.LastServiceMileage,
		DaysUntilDue:       item.Verdict.Time.DaysUntil,
		MilesUntilDue:      item.Verdict.Mileage.MilesUntil,
		DueMileage:         item.Verdict.Mileage.DueMileage,
	}
	if item.LastServiceDate != nil {
		s := item.LastServiceDate.Format(dateLayout)
		resp.LastServiceDate = &s
	}
	if item.Verdict.Time.DueDate != nil {
		s := item.Verdict.Time.DueDate.Format(dateLayout)
		resp.DueDate = &s
	}
	return resp
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
