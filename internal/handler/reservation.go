package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/service"
)

// ReservationService is what ReservationHandler needs from the service layer.
type ReservationService interface {
	List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)
	Get(ctx context.Context, id uint64) (model.Reservation, error)
	Create(ctx context.Context, in service.CreateReservationInput) (model.Reservation, error)
	Update(ctx context.Context, id uint64, tickets int) (model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}

// ReservationHandler exposes the reservation endpoints.  All of them run
// behind Authenticate.
type ReservationHandler struct {
	Reservations ReservationService
}

func NewReservationHandler(s ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: s}
}

type createReservationReq struct {
	EventID         *uint64 `json:"event_id"`
	UserID          *uint64 `json:"user_id"`
	NumberOfTickets *int    `json:"number_of_tickets"`
}

type updateReservationReq struct {
	NumberOfTickets *int `json:"number_of_tickets"`
}

// List supports the optional event_id and user_id query filters.
func (h *ReservationHandler) List(c echo.Context) error {
	var (
		f   model.ReservationFilter
		err error
	)
	if f.EventID, err = queryID(c, "event_id"); err != nil {
		return respondError(c, err)
	}
	if f.UserID, err = queryID(c, "user_id"); err != nil {
		return respondError(c, err)
	}
	out, err := h.Reservations.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reservations retrieved successfully.", out)
}

func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	r, err := h.Reservations.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reservation retrieved successfully.", r)
}

// Create reserves tickets.  user_id defaults to the caller.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := missingFields(
		[]string{"event_id", "number_of_tickets"},
		[]bool{req.EventID != nil, req.NumberOfTickets != nil},
	); err != nil {
		return respondError(c, err)
	}
	in := service.CreateReservationInput{
		EventID:         *req.EventID,
		UserID:          currentUserID(c),
		NumberOfTickets: *req.NumberOfTickets,
	}
	if req.UserID != nil {
		in.UserID = *req.UserID
	}
	r, err := h.Reservations.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Reservation created successfully.", r)
}

func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req updateReservationReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := missingFields([]string{"number_of_tickets"}, []bool{req.NumberOfTickets != nil}); err != nil {
		return respondError(c, err)
	}
	r, err := h.Reservations.Update(c.Request().Context(), id, *req.NumberOfTickets)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reservation updated successfully.", r)
}

func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Reservations.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Reservation deleted successfully.", nil)
}
