package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dawsdoon/AutoCare/internal/booking"
	"github.com/dawsdoon/AutoCare/internal/catalog"
)

func listServicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := catalog.All()
		resp := make([]ServiceResponse, 0, len(all))
		for _, iv := range all {
			resp = append(resp, ServiceResponse{
				Type:               string(iv.Type),
				DisplayName:        iv.DisplayName,
				TimeIntervalMonths: iv.TimeIntervalMonths,
				MileageInterval:    iv.MileageInterval,
				Priority:           string(iv.Priority),
				Description:        iv.Description,
				Slots:              catalog.SlotMenu(iv.Type),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func availableSlotsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawService := r.URL.Query().Get("service")
		serviceType, ok := catalog.ParseServiceType(rawService)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_service", "service must be a known service type")
			return
		}

		date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), date, serviceType)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := AvailableSlotsResponse{
			Date:        date.Format(dateLayout),
			ServiceType: string(serviceType),
			Slots:       make([]SlotResponse, 0, len(slots)),
		}
		for _, s := range slots {
			resp.Slots = append(resp.Slots, SlotResponse{Time: s.Time, Taken: s.Taken})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func createBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		var vehicleID *uuid.UUID
		if req.VehicleID != nil {
			id, err := uuid.Parse(*req.VehicleID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_vehicle_id", "vehicle_id must be a valid UUID")
				return
			}
			vehicleID = &id
		}

		b, err := svc.CreateBooking(r.Context(), booking.CreateBookingParams{
			UserID:      claims.UserID,
			VehicleID:   vehicleID,
			ServiceType: catalog.ServiceType(req.ServiceType),
			Date:        date,
			SlotTime:    req.SlotTime,
			Notes:       req.Notes,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(b))
	}
}

func listMyBookingsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		limit, offset := parsePagination(r)
		bookings, err := svc.ListBookingsByUser(r.Context(), claims.UserID, limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponses(bookings))
	}
}

func getBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
			return
		}

		b, err := svc.GetBooking(r.Context(), id, claims.UserID, claims.Role == booking.RoleAdmin)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func cancelBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
			return
		}

		b, err := svc.CancelBooking(r.Context(), id, claims.UserID)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func adminListBookingsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := booking.StatusPending
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, ok := booking.ParseStatus(raw)
			if !ok {
				writeError(w, http.StatusBadRequest, "invalid_status",
					"status must be one of pending, approved, rejected, cancelled, completed")
				return
			}
			status = parsed
		}

		limit, offset := parsePagination(r)
		bookings, err := svc.ListBookingsByStatus(r.Context(), status, limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponses(bookings))
	}
}

func approveBookingHandler(svc *booking.Service) http.HandlerFunc {
	return adminTransitionHandler(svc.ApproveBooking)
}

func rejectBookingHandler(svc *booking.Service) http.HandlerFunc {
	return adminTransitionHandler(svc.RejectBooking)
}

func adminTransitionHandler(transition func(ctx context.Context, id uuid.UUID) (*booking.Booking, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
			return
		}

		b, err := transition(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func completeBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
			return
		}

		var req CompleteBookingRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
		}

		b, err := svc.CompleteBooking(r.Context(), id, req.MileageAtService)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func createVehicleHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		var req CreateVehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Make == "" || req.Model == "" {
			writeError(w, http.StatusBadRequest, "invalid_vehicle", "make and model are required")
			return
		}

		v, err := svc.AddVehicle(r.Context(), &booking.Vehicle{
			UserID:  claims.UserID,
			Make:    req.Make,
			Model:   req.Model,
			Year:    req.Year,
			Mileage: req.Mileage,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toVehicleResponse(v))
	}
}

func listVehiclesHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		vehicles, err := svc.ListVehicles(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]VehicleResponse, 0, len(vehicles))
		for i := range vehicles {
			resp = append(resp, toVehicleResponse(&vehicles[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func maintenanceScheduleHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_token", "authentication required")
			return
		}

		vehicleID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_vehicle_id", "id must be a valid UUID")
			return
		}

		var currentMileage *int
		if raw := r.URL.Query().Get("mileage"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid_mileage", "mileage must be a non-negative integer")
				return
			}
			currentMileage = &n
		}

		items, err := svc.MaintenanceSchedule(r.Context(), vehicleID, claims.UserID, currentMileage, time.Now())
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := make([]ScheduleItemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, toScheduleItemResponse(item))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func toVehicleResponse(v *booking.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:      v.ID,
		Make:    v.Make,
		Model:   v.Model,
		Year:    v.Year,
		Mileage: v.Mileage,
	}
}

func toBookingResponses(bookings []booking.Booking) []BookingResponse {
	resp := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	return resp
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, booking.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, "vehicle_not_found", err.Error())
	case errors.Is(err, booking.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking_not_found", err.Error())
	case errors.Is(err, booking.ErrUnknownService):
		writeError(w, http.StatusBadRequest, "unknown_service", err.Error())
	case errors.Is(err, booking.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, "invalid_slot", err.Error())
	case errors.Is(err, booking.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_taken", "this time slot has just been booked, please choose another")
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, booking.ErrNotBookingOwner), errors.Is(err, booking.ErrNotVehicleOwner):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
