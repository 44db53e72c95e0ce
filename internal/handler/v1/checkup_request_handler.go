package v1

import (
	"net/http"
	"time"

	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/service"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckupRequestHandler struct {
	workflowSvc *service.WorkflowService
}

func NewCheckupRequestHandler(workflowSvc *service.WorkflowService) *CheckupRequestHandler {
	return &CheckupRequestHandler{workflowSvc: workflowSvc}
}

type createCheckupRequestRequest struct {
	PatientName      string     `json:"patient_name" binding:"required"`
	PatientBirthDate time.Time  `json:"patient_birth_date" binding:"required"`
	Company          string     `json:"company" binding:"required"`
	BatteryID        uuid.UUID  `json:"battery_id" binding:"required"`
	ExamNames        []string   `json:"exam_names"`
	DoctorID         *uuid.UUID `json:"doctor_id"`
	PlannedDate      *time.Time `json:"planned_date"`
}

func (h *CheckupRequestHandler) Create(c *gin.Context) {
	var req createCheckupRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &checkuprequest.CreateCheckupRequestCommand{
		PatientName:      req.PatientName,
		PatientBirthDate: req.PatientBirthDate,
		Company:          req.Company,
		BatteryID:        req.BatteryID,
		ExamNames:        req.ExamNames,
		DoctorID:         req.DoctorID,
		PlannedDate:      req.PlannedDate,
	}

	created, err := h.workflowSvc.CreateCheckupRequest(c.Request.Context(), actorFrom(c), cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, created)
}

func (h *CheckupRequestHandler) Transition(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req transitionRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.workflowSvc.Transition(
		c.Request.Context(),
		actorFrom(c),
		workflow.KindCheckupRequest,
		id,
		req.ToStatus,
		service.TransitionPayload{
			UnitID:       req.UnitID,
			Observations: req.Observations,
		},
		c.ClientIP(),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *CheckupRequestHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.workflowSvc.GetCheckupRequest(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, r)
}

func (h *CheckupRequestHandler) List(c *gin.Context) {
	q := &checkuprequest.ListCheckupRequestsQuery{
		BatteryID: parseQueryUUID(c, "battery_id"),
		UnitID:    parseQueryUUID(c, "unit_id"),
		Search:    c.Query("search"),
		DateFrom:  parseQueryDate(c, "date_from"),
		DateTo:    parseQueryDate(c, "date_to"),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := checkuprequest.Status(raw)
		if !status.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid status filter")
			return
		}
		q.Status = &status
	}

	page, err := h.workflowSvc.ListCheckupRequests(c.Request.Context(), actorFrom(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, page)
}

func (h *CheckupRequestHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.workflowSvc.DeleteCheckupRequest(c.Request.Context(), actorFrom(c), id, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
