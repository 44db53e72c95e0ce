package checkuprequest

import (
	"time"

	"github.com/google/uuid"
)

// State transitions possibilities:
//
//	solicitado     → encaminhado (forwarded to a unit)
//	encaminhado    → executado
//	executado      → laudos_prontos
//	laudos_prontos → encaminhado (reports collected)
//
// The last transition deliberately cycles back to encaminhado; a collected
// request is told apart from a freshly forwarded one by LaudosBuscadosAt
// being set.
type Status string

const (
	StatusSolicitado    Status = "solicitado"
	StatusEncaminhado   Status = "encaminhado"
	StatusExecutado     Status = "executado"
	StatusLaudosProntos Status = "laudos_prontos"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSolicitado, StatusEncaminhado, StatusExecutado, StatusLaudosProntos:
		return true
	}
	return false
}

type CheckupRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`

	// Immutable after creation
	PatientName      string    `gorm:"column:patient_name;type:varchar(200);not null;index"`
	PatientBirthDate time.Time `gorm:"column:patient_birth_date;not null"`
	Company          string    `gorm:"column:company;type:varchar(200);not null;index"`
	BatteryID        uuid.UUID `gorm:"column:battery_id;type:uuid;not null;index"`
	// ExamNames is a snapshot of the battery's exam list taken at creation
	// time. Later edits to the battery definition do not reach it.
	ExamNames   []string   `gorm:"column:exam_names;serializer:json;not null"`
	DoctorID    *uuid.UUID `gorm:"column:doctor_id;type:uuid;index"`
	PlannedDate *time.Time `gorm:"column:planned_date;index"`

	Status Status `gorm:"column:status;type:varchar(30);not null;default:'solicitado';index"`

	// UnitID is the destination facility; required once the request has been
	// forwarded.
	UnitID       *uuid.UUID `gorm:"column:unit_id;type:uuid;index"`
	Observations string     `gorm:"column:observations;type:text"`

	// Set exactly once, the first time the matching transition occurs.
	// Re-entering a state never moves a stamp that is already set.
	ExecutadoAt         *time.Time `gorm:"column:executado_at"`
	LaudosProntosAt     *time.Time `gorm:"column:laudos_prontos_at"`
	NotificadoCheckupAt *time.Time `gorm:"column:notificado_checkup_at"`
	LaudosBuscadosAt    *time.Time `gorm:"column:laudos_buscados_at"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (CheckupRequest) TableName() string {
	return "intake.checkup_requests"
}

// Collected reports whether the reports of this request have been picked up
// at least once. Status alone cannot tell: a collected request sits in
// encaminhado again.
func (r *CheckupRequest) Collected() bool {
	return r.LaudosBuscadosAt != nil
}

// ApplyTransition moves the request into toStatus and stamps the audit
// timestamps of the destination state, each only on first entry. Role
// authorization is the caller's responsibility.
func (r *CheckupRequest) ApplyTransition(toStatus Status, now time.Time) {
	from := r.Status
	r.Status = toStatus
	r.UpdatedAt = now

	switch toStatus {
	case StatusExecutado:
		if r.ExecutadoAt == nil {
			r.ExecutadoAt = &now
		}
	case StatusLaudosProntos:
		if r.LaudosProntosAt == nil {
			r.LaudosProntosAt = &now
		}
		if r.NotificadoCheckupAt == nil {
			r.NotificadoCheckupAt = &now
		}
	case StatusEncaminhado:
		if from == StatusLaudosProntos && r.LaudosBuscadosAt == nil {
			r.LaudosBuscadosAt = &now
		}
	}
}

type CreateCheckupRequestCommand struct {
	PatientName      string
	PatientBirthDate time.Time
	Company          string
	BatteryID        uuid.UUID
	// ExamNames overrides the battery snapshot when non-empty; otherwise the
	// battery's current exam list is copied.
	ExamNames   []string
	DoctorID    *uuid.UUID
	PlannedDate *time.Time
}

// TransitionCommand carries the optional payload of a check-up transition.
// UnitID is mandatory when a solicitado request is forwarded.
type TransitionCommand struct {
	UnitID       *uuid.UUID
	Observations *string
}

type ListCheckupRequestsQuery struct {
	Status    *Status
	BatteryID *uuid.UUID
	UnitID    *uuid.UUID
	// Search matches a case-insensitive substring of the requesting company.
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string // "asc" | "desc"
}

type PagedCheckupRequests struct {
	Requests   []*CheckupRequest
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
