package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	approvaluc "sarpras-backend/internal/usecase/approval"
)

type ApprovalHandler struct{ uc *approvaluc.Usecase }

func NewApprovalHandler(uc *approvaluc.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type decisionReq struct {
	ApproverID string `json:"approver_id" validate:"required,hex32"`
	Decision   string `json:"decision"    validate:"required,oneof=approve reject"`
	Reason     string `json:"reason,omitempty"`
}

func (h *ApprovalHandler) DecideGlobal(c echo.Context) error {
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.DecideGlobal(c.Request().Context(), approvaluc.DecideGlobalInput{
		RequestID:  c.Param("request_id"),
		ApproverID: req.ApproverID,
		Decision:   approvaluc.Decision(req.Decision),
		Reason:     req.Reason,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) DecideSpecific(c echo.Context) error {
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.DecideSpecific(c.Request().Context(), approvaluc.DecideSpecificInput{
		StepID:     c.Param("step_id"),
		ApproverID: req.ApproverID,
		Decision:   approvaluc.Decision(req.Decision),
		Reason:     req.Reason,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type overrideReq struct {
	ActorID  string `json:"actor_id" validate:"required,hex32"`
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason,omitempty"`
}

func (h *ApprovalHandler) OverrideStep(c echo.Context) error {
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Override(c.Request().Context(), approvaluc.OverrideInput{
		StepID:   c.Param("step_id"),
		ActorID:  req.ActorID,
		Decision: approvaluc.Decision(req.Decision),
		Reason:   req.Reason,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type resetReq struct {
	ActorID string `json:"actor_id" validate:"required,hex32"`
}

func (h *ApprovalHandler) ResetStep(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.ResetStep(c.Request().Context(), c.Param("step_id"), req.ActorID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) ListSteps(c echo.Context) error {
	steps, err := h.uc.ListSteps(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, steps)
}

type registerGlobalApproverReq struct {
	UserID        string `json:"user_id"        validate:"required,hex32"`
	ApprovalLevel int    `json:"approval_level" validate:"required,min=1"`
}

func (h *ApprovalHandler) RegisterGlobalApprover(c echo.Context) error {
	var req registerGlobalApproverReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	err := h.uc.RegisterGlobalApprover(c.Request().Context(), approvaluc.RegisterGlobalApproverInput{
		UserID:        req.UserID,
		ApprovalLevel: req.ApprovalLevel,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

type registerResourceApproverReq struct {
	ResourceType  string `json:"resource_type"  validate:"required,oneof=sarana prasarana"`
	ResourceID    uint64 `json:"resource_id"    validate:"required"`
	UserID        string `json:"user_id"        validate:"required,hex32"`
	ApprovalLevel int    `json:"approval_level" validate:"required,min=1"`
}

func (h *ApprovalHandler) RegisterResourceApprover(c echo.Context) error {
	var req registerResourceApproverReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	err := h.uc.RegisterResourceApprover(c.Request().Context(), approvaluc.RegisterResourceApproverInput{
		ResourceType:  req.ResourceType,
		ResourceID:    req.ResourceID,
		UserID:        req.UserID,
		ApprovalLevel: req.ApprovalLevel,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}
