package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	markinguc "sarpras-backend/internal/usecase/marking"
)

type MarkingHandler struct{ uc *markinguc.Usecase }

func NewMarkingHandler(uc *markinguc.Usecase) *MarkingHandler { return &MarkingHandler{uc: uc} }

type createMarkingReq struct {
	RequesterID     string     `json:"requester_id" validate:"required,hex32"`
	UKMID           *string    `json:"ukm_id,omitempty"`
	EventName       string     `json:"event_name"   validate:"required"`
	RoomID          *uint64    `json:"room_id,omitempty"`
	CustomLocation  *string    `json:"custom_location,omitempty"`
	StartsAt        time.Time  `json:"starts_at"    validate:"required"`
	EndsAt          time.Time  `json:"ends_at"      validate:"required"`
	DurationDays    int        `json:"duration_days,omitempty" validate:"omitempty,min=1"`
	PlannedSubmitBy *time.Time `json:"planned_submit_by,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

func (h *MarkingHandler) CreateMarking(c echo.Context) error {
	var req createMarkingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Create(c.Request().Context(), markinguc.CreateInput{
		RequesterID:     req.RequesterID,
		UKMID:           req.UKMID,
		EventName:       req.EventName,
		RoomID:          req.RoomID,
		CustomLocation:  req.CustomLocation,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		DurationDays:    req.DurationDays,
		PlannedSubmitBy: req.PlannedSubmitBy,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MarkingHandler) GetMarking(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("marking_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type extendMarkingReq struct {
	Days int `json:"days" validate:"required,min=1"`
}

func (h *MarkingHandler) ExtendMarking(c echo.Context) error {
	var req extendMarkingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Extend(c.Request().Context(), c.Param("marking_id"), req.Days)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MarkingHandler) ConvertMarking(c echo.Context) error {
	dto, err := h.uc.Convert(c.Request().Context(), c.Param("marking_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MarkingHandler) CancelMarking(c echo.Context) error {
	if err := h.uc.Cancel(c.Request().Context(), c.Param("marking_id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
