package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	loanuc "sarpras-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loanuc.Usecase }

func NewLoanHandler(uc *loanuc.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type itemReq struct {
	EquipmentID  uint64 `json:"equipment_id"  validate:"required"`
	RequestedQty int    `json:"requested_qty" validate:"required,min=1"`
}

type createLoanReq struct {
	RequesterID       string    `json:"requester_id" validate:"required,hex32"`
	UKMID             *string   `json:"ukm_id,omitempty"`
	EventName         string    `json:"event_name"   validate:"required"`
	RoomID            *uint64   `json:"room_id,omitempty"`
	CustomLocation    *string   `json:"custom_location,omitempty"`
	StartsAt          time.Time `json:"starts_at"    validate:"required"`
	EndsAt            time.Time `json:"ends_at"      validate:"required"`
	SupportingDocPath *string   `json:"supporting_doc_path,omitempty"`
	Items             []itemReq `json:"items,omitempty" validate:"dive"`
}

func (h *LoanHandler) CreateLoanRequest(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in := loanuc.CreateInput{
		RequesterID:       req.RequesterID,
		UKMID:             req.UKMID,
		EventName:         req.EventName,
		RoomID:            req.RoomID,
		CustomLocation:    req.CustomLocation,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		SupportingDocPath: req.SupportingDocPath,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, loanuc.ItemInput{EquipmentID: it.EquipmentID, RequestedQty: it.RequestedQty})
	}
	dto, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoanRequest(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type unitAssignmentReq struct {
	ItemID       string   `json:"item_id"        validate:"required,hex32"`
	AssetUnitIDs []uint64 `json:"asset_unit_ids" validate:"required,min=1"`
}

type pickupReq struct {
	ValidatorID     string              `json:"validator_id" validate:"required,hex32"`
	Assignments     []unitAssignmentReq `json:"assignments,omitempty" validate:"dive"`
	PickupPhotoPath *string             `json:"pickup_photo_path,omitempty"`
}

func (h *LoanHandler) ValidatePickup(c echo.Context) error {
	var req pickupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in := loanuc.PickupInput{
		RequestID:       c.Param("request_id"),
		ValidatorID:     req.ValidatorID,
		PickupPhotoPath: req.PickupPhotoPath,
	}
	for _, a := range req.Assignments {
		in.Assignments = append(in.Assignments, loanuc.UnitAssignment{ItemID: a.ItemID, AssetUnitIDs: a.AssetUnitIDs})
	}
	if err := h.uc.ValidatePickup(c.Request().Context(), in); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type returnReq struct {
	ValidatorID     string  `json:"validator_id" validate:"required,hex32"`
	ReturnPhotoPath *string `json:"return_photo_path,omitempty"`
}

func (h *LoanHandler) ValidateReturn(c echo.Context) error {
	var req returnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in := loanuc.ReturnInput{
		RequestID:       c.Param("request_id"),
		ValidatorID:     req.ValidatorID,
		ReturnPhotoPath: req.ReturnPhotoPath,
	}
	if err := h.uc.ValidateReturn(c.Request().Context(), in); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type cancelReq struct {
	ActorID string `json:"actor_id" validate:"required,hex32"`
	Reason  string `json:"reason"   validate:"required"`
}

func (h *LoanHandler) CancelLoanRequest(c echo.Context) error {
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.Cancel(c.Request().Context(), c.Param("request_id"), req.ActorID, req.Reason); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
