package handler

import (
	"net/http"

	"github.com/evently/backend/internal/model"
	"github.com/evently/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type EventHandler struct {
	svc *service.EventService
	log zerolog.Logger
}

func NewEventHandler(svc *service.EventService, log zerolog.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: log}
}

// ListEvents godoc
// @Summary List events
// @Description Public; a bearer token, when sent, must be valid.
// @Tags events
// @Produce json
// @Success 200 {object} model.EventListResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.EventListResponse{Events: events, Count: len(events)})
}

// GetEvent godoc
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} model.EventEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.EventEnvelope{Message: "Event retrieved successfully", Event: event})
}

// CreateEvent godoc
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateEventRequest true "Event"
// @Success 201 {object} model.EventEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req model.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	event, err := h.svc.Create(c.Request.Context(), model.EventInput{
		Date:         req.Date,
		Time:         req.Time,
		Description:  req.Description,
		Participants: req.Participants,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, model.EventEnvelope{Message: "Event created successfully", Event: event})
}

// UpdateEvent godoc
// @Summary Update event
// @Description Partial update; participants, when sent, replace the current list.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body model.UpdateEventRequest true "Fields to change"
// @Success 200 {object} model.EventEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req model.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	event, err := h.svc.Update(c.Request.Context(), c.Param("id"), model.EventPatch{
		Date:         req.Date,
		Time:         req.Time,
		Description:  req.Description,
		Participants: req.Participants,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.EventEnvelope{Message: "Event updated successfully", Event: event})
}

// DeleteEvent godoc
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} model.EventEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	event, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.EventEnvelope{Message: "Event deleted successfully", Event: event})
}

// RegisterParticipant godoc
// @Summary Register a user for an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body model.RegisterParticipantRequest true "User to register"
// @Success 200 {object} model.EventRegistrationResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /events/{id}/register [post]
func (h *EventHandler) RegisterParticipant(c *gin.Context) {
	var req model.RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, bindError(err))
		return
	}

	event, user, err := h.svc.RegisterParticipant(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, model.EventRegistrationResponse{
		Message:        "Successfully registered for event",
		Event:          event,
		RegisteredUser: *user,
	})
}
