package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/service"
)

// EventService is what EventHandler needs from the service layer.
type EventService interface {
	List(ctx context.Context) ([]model.Event, error)
	Get(ctx context.Context, id uint64) (model.Event, error)
	Create(ctx context.Context, in service.EventInput) (model.Event, error)
	Update(ctx context.Context, id uint64, patch model.EventPatch) (model.Event, error)
	Delete(ctx context.Context, id uint64) error
}

type EventHandler struct {
	Events EventService
}

func NewEventHandler(s EventService) *EventHandler { return &EventHandler{Events: s} }

// eventReq is used for both create and update; pointers tell absent
// fields apart from zero values.
type eventReq struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Date         *string `json:"date"`
	Availability *int    `json:"availability"`
}

func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Events retrieved successfully.", events)
}

func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	e, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Event retrieved successfully.", e)
}

// Create requires name, date and availability.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := missingFields(
		[]string{"name", "date", "availability"},
		[]bool{req.Name != nil, req.Date != nil, req.Availability != nil},
	); err != nil {
		return respondError(c, err)
	}
	date, err := parseDate(*req.Date)
	if err != nil {
		return respondError(c, err)
	}
	in := service.EventInput{Name: *req.Name, Date: date, Availability: *req.Availability}
	if req.Description != nil {
		in.Description = *req.Description
	}
	e, err := h.Events.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Event created successfully.", e)
}

// Update applies whichever fields are present.
func (h *EventHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req eventReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	patch := model.EventPatch{Name: req.Name, Description: req.Description, Availability: req.Availability}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return respondError(c, err)
		}
		patch.Date = &date
	}
	e, err := h.Events.Update(c.Request().Context(), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Event updated successfully.", e)
}

func (h *EventHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Event deleted successfully.", nil)
}
