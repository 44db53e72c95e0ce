package examrequest

import (
	"time"

	"github.com/google/uuid"
)

type PaymentType string

const (
	PaymentParticular PaymentType = "particular"
	PaymentConvenio   PaymentType = "convenio"
)

func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentParticular, PaymentConvenio:
		return true
	}
	return false
}

// State transitions possibilities:
//
//	encaminhado → executado
//	executado   → executado (conduct edit, not a real state change)
type Status string

const (
	StatusEncaminhado Status = "encaminhado"
	StatusExecutado   Status = "executado"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusEncaminhado, StatusExecutado:
		return true
	}
	return false
}

// Conduct is the clinical follow-up classification attached to an executed
// exam. It is a gated sub-field of the executado state, not a state of its
// own: no permission differs between "executado without conduct" and
// "executado with conduct".
type Conduct string

const (
	ConductCirurgica    Conduct = "cirurgica"
	ConductAmbulatorial Conduct = "ambulatorial"
)

func (c Conduct) IsValid() bool {
	switch c {
	case ConductCirurgica, ConductAmbulatorial:
		return true
	}
	return false
}

type ExamRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`

	// Immutable after creation
	PatientName      string    `gorm:"column:patient_name;type:varchar(200);not null;index"`
	PatientBirthDate time.Time `gorm:"column:patient_birth_date;not null"`
	ConsultationDate time.Time `gorm:"column:consultation_date;not null;index"`
	DoctorID         uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`
	ExamDescription  string    `gorm:"column:exam_description;type:text;not null"`

	PaymentType PaymentType `gorm:"column:payment_type;type:varchar(20);not null;index"`
	// InsuranceID is required when payment type is convenio and must be null
	// when payment type is particular.
	InsuranceID *uuid.UUID `gorm:"column:insurance_id;type:uuid"`

	PartnerID    uuid.UUID `gorm:"column:partner_id;type:uuid;not null;index"`
	ContactPhone string    `gorm:"column:contact_phone;type:varchar(30)"`

	Status Status `gorm:"column:status;type:varchar(30);not null;default:'encaminhado';index"`

	// Conduct may be non-null only while status is executado.
	Conduct             *Conduct `gorm:"column:conduct;type:varchar(20)"`
	ConductObservations string   `gorm:"column:conduct_observations;type:text"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (ExamRequest) TableName() string {
	return "intake.exam_requests"
}

func (r *ExamRequest) Executed() bool {
	return r.Status == StatusExecutado
}

// SetConduct attaches or edits the conduct classification. Callers must have
// cleared the role check first; the only entity-level rule is that conduct
// requires an executed request.
func (r *ExamRequest) SetConduct(conduct Conduct, observations string) error {
	if !r.Executed() {
		return ErrConductNotAllowed
	}
	if !conduct.IsValid() {
		return ErrInvalidConduct
	}
	r.Conduct = &conduct
	r.ConductObservations = observations
	return nil
}

type CreateExamRequestCommand struct {
	PatientName      string
	PatientBirthDate time.Time
	ConsultationDate time.Time
	DoctorID         uuid.UUID
	ExamDescription  string
	PaymentType      PaymentType
	InsuranceID      *uuid.UUID
	// PartnerID is the owning partner. Ignored for parceiro actors, whose own
	// partner is always used; required when an admin creates on a partner's
	// behalf.
	PartnerID    *uuid.UUID
	ContactPhone string
}

// TransitionCommand carries the optional payload of an exam-request
// transition. Conduct may only accompany a request that is already executado.
type TransitionCommand struct {
	Conduct             *Conduct
	ConductObservations string
}

type ListExamRequestsQuery struct {
	PartnerID   *uuid.UUID
	Status      *Status
	PaymentType *PaymentType
	// Search matches a case-insensitive substring of the patient name.
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
	SortBy   string
	SortOrder string // "asc" | "desc"
}

type PagedExamRequests struct {
	Requests   []*ExamRequest
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
