package v1

import (
	"net/http"
	"time"

	"github.com/clinsys/examflow/internal/domain/examrequest"
	"github.com/clinsys/examflow/internal/service"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExamRequestHandler struct {
	workflowSvc *service.WorkflowService
}

func NewExamRequestHandler(workflowSvc *service.WorkflowService) *ExamRequestHandler {
	return &ExamRequestHandler{workflowSvc: workflowSvc}
}

type createExamRequestRequest struct {
	PatientName      string     `json:"patient_name" binding:"required"`
	PatientBirthDate time.Time  `json:"patient_birth_date" binding:"required"`
	ConsultationDate time.Time  `json:"consultation_date" binding:"required"`
	DoctorID         uuid.UUID  `json:"doctor_id" binding:"required"`
	ExamDescription  string     `json:"exam_description" binding:"required"`
	PaymentType      string     `json:"payment_type" binding:"required"`
	InsuranceID      *uuid.UUID `json:"insurance_id"`
	PartnerID        *uuid.UUID `json:"partner_id"`
	ContactPhone     string     `json:"contact_phone"`
}

func (h *ExamRequestHandler) Create(c *gin.Context) {
	var req createExamRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &examrequest.CreateExamRequestCommand{
		PatientName:      req.PatientName,
		PatientBirthDate: req.PatientBirthDate,
		ConsultationDate: req.ConsultationDate,
		DoctorID:         req.DoctorID,
		ExamDescription:  req.ExamDescription,
		PaymentType:      examrequest.PaymentType(req.PaymentType),
		InsuranceID:      req.InsuranceID,
		PartnerID:        req.PartnerID,
		ContactPhone:     req.ContactPhone,
	}

	created, err := h.workflowSvc.CreateExamRequest(c.Request.Context(), actorFrom(c), cmd, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, created)
}

type transitionRequest struct {
	ToStatus string `json:"to_status" binding:"required"`

	// Exam payload
	Conduct             *string `json:"conduct"`
	ConductObservations string  `json:"conduct_observations"`

	// Check-up payload
	UnitID       *uuid.UUID `json:"unit_id"`
	Observations *string    `json:"observations"`
}

func (h *ExamRequestHandler) Transition(c *gin.Context) {
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
		workflow.KindExamRequest,
		id,
		req.ToStatus,
		service.TransitionPayload{
			Conduct:             req.Conduct,
			ConductObservations: req.ConductObservations,
		},
		c.ClientIP(),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, updated)
}

func (h *ExamRequestHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.workflowSvc.GetExamRequest(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, r)
}

func (h *ExamRequestHandler) List(c *gin.Context) {
	q := &examrequest.ListExamRequestsQuery{
		Search:    c.Query("search"),
		DateFrom:  parseQueryDate(c, "date_from"),
		DateTo:    parseQueryDate(c, "date_to"),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := examrequest.Status(raw)
		if !status.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid status filter")
			return
		}
		q.Status = &status
	}
	if raw := c.Query("payment_type"); raw != "" {
		pt := examrequest.PaymentType(raw)
		if !pt.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid payment_type filter")
			return
		}
		q.PaymentType = &pt
	}

	page, err := h.workflowSvc.ListExamRequests(c.Request.Context(), actorFrom(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, page)
}

func (h *ExamRequestHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.workflowSvc.DeleteExamRequest(c.Request.Context(), actorFrom(c), id, c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
