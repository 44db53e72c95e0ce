// Package catalog holds the flat reference entities the workflow validates
// against: partners, doctors, insurances, exam batteries and units. Their
// administration screens live outside this service; the core only needs
// existence lookups and battery reads.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Partner struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name  string `gorm:"column:name;type:varchar(200);not null;uniqueIndex"`
	Phone string `gorm:"column:phone;type:varchar(30)"`
}

func (Partner) TableName() string {
	return "intake.partners"
}

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name string `gorm:"column:name;type:varchar(200);not null;index"`
	CRM  string `gorm:"column:crm;type:varchar(30);uniqueIndex"`
}

func (Doctor) TableName() string {
	return "intake.doctors"
}

type Insurance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name string `gorm:"column:name;type:varchar(200);not null;uniqueIndex"`
}

func (Insurance) TableName() string {
	return "intake.insurances"
}

// Battery is a named, reusable list of exam names used as a template when a
// check-up request is created. The request copies the list; the battery can
// change afterwards without touching existing requests.
type Battery struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name      string   `gorm:"column:name;type:varchar(200);not null;uniqueIndex"`
	ExamNames []string `gorm:"column:exam_names;serializer:json;not null"`
}

func (Battery) TableName() string {
	return "intake.batteries"
}

type Unit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name    string `gorm:"column:name;type:varchar(200);not null;uniqueIndex"`
	Address string `gorm:"column:address;type:text"`
}

func (Unit) TableName() string {
	return "intake.units"
}
