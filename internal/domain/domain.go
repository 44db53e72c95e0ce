package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	// RoleAdmin may perform every operation any other role may perform.
	RoleAdmin Role = "admin"
	// RoleParceiro is partner-clinic staff; they submit exam requests and only
	// ever see their own partner's submissions.
	RoleParceiro Role = "parceiro"
	// RoleRecepcao is reception staff; they execute exams/check-ups and flag
	// reports as ready.
	RoleRecepcao Role = "recepcao"
	// RoleCheckup is check-up staff; they open check-up requests, forward them
	// to a unit and collect the finished reports.
	RoleCheckup Role = "checkup"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleParceiro, RoleRecepcao, RoleCheckup:
		return true
	}
	return false
}

// Actor identifies the caller of a workflow operation. It is resolved by the
// authentication layer and passed explicitly into every service call; the
// services never read identity from ambient state.
type Actor struct {
	UserID uuid.UUID
	Role   Role
	// PartnerID is set only for parceiro actors and scopes their visibility
	// over exam requests. A parceiro actor without a resolved partner sees
	// nothing (fail closed).
	PartnerID *uuid.UUID
}

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	Name         string `gorm:"column:name;type:varchar(200);not null"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index"`

	// For parceiro users, links to the partner clinic they belong to
	PartnerID *uuid.UUID `gorm:"column:partner_id;type:uuid;index"`

	IsActive         bool       `gorm:"column:is_active;default:true;index"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "auth.users"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role, PartnerID: u.PartnerID}
}

type AuditAction string

const (
	ActionCreate     AuditAction = "create"
	ActionRead       AuditAction = "read"
	ActionTransition AuditAction = "transition"
	ActionDelete     AuditAction = "delete"
	ActionLogin      AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	UserRole  Role      `gorm:"column:user_role;type:varchar(30);not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`

	Changes string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID    uuid.UUID  `json:"sub"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	PartnerID *uuid.UUID `json:"partner_id,omitempty"`
}
