package models

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type FieldKey string

const (
	FieldPhone   FieldKey = "phone"
	FieldWebsite FieldKey = "website"
	FieldEmail   FieldKey = "email"
	FieldAddress FieldKey = "address"
)

// EditableFields is the closed set of record attributes the community may
// propose changes to. Anything else is rejected at the proposal boundary.
var EditableFields = []FieldKey{FieldPhone, FieldWebsite, FieldEmail, FieldAddress}

func (f FieldKey) String() string {
	return string(f)
}

func (f FieldKey) DisplayName() string {
	return cases.Title(language.English).String(f.String())
}

func ParseFieldKey(value string) (FieldKey, bool) {
	for _, field := range EditableFields {
		if field.String() == value {
			return field, true
		}
	}
	return "", false
}

type Record struct {
	ID        int64     `json:"id" pg:",pk"`
	Name      string    `json:"name" pg:",notnull"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at" pg:"default:now()"`
	UpdatedAt time.Time `json:"updated_at" pg:"default:now()"`
}

func (r *Record) FieldValue(field FieldKey) (string, bool) {
	switch field {
	case FieldPhone:
		return r.Phone, true
	case FieldWebsite:
		return r.Website, true
	case FieldEmail:
		return r.Email, true
	case FieldAddress:
		return r.Address, true
	}
	return "", false
}

func (r *Record) SetFieldValue(field FieldKey, value string) bool {
	switch field {
	case FieldPhone:
		r.Phone = value
	case FieldWebsite:
		r.Website = value
	case FieldEmail:
		r.Email = value
	case FieldAddress:
		r.Address = value
	default:
		return false
	}
	return true
}
