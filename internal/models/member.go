package models

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	MemberTypePlayer    = "player"
	MemberTypeGuardian  = "guardian"
	MemberTypeCoach     = "coach"
	MemberTypeVolunteer = "volunteer"
	MemberTypeCommittee = "committee"
	MemberTypeSocial    = "social"

	MemberCategoryAdult = "adult"
	MemberCategoryChild = "child"

	// DateOfBirthLayout is the stored date_of_birth format.
	DateOfBirthLayout = "2006-01-02"

	defaultPhoneRegion = "IE"
)

var ErrInvalidPhone = errors.New("phone must be a valid phone number")

type FederationData struct {
	NGBID string `json:"ngb_id"`
}

// Member is a club registry entry. Empty strings mean the field was never captured.
type Member struct {
	ID                   string          `json:"id"`
	ClubID               string          `json:"club_id" validate:"required"`
	FirstName            string          `json:"first_name" validate:"required,max=100"`
	LastName             string          `json:"last_name" validate:"max=100"`
	DateOfBirth          string          `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address              string          `json:"address" validate:"max=500"`
	PostalCode           string          `json:"postal_code" validate:"max=20"`
	Gender               string          `json:"gender" validate:"max=50"`
	Email                string          `json:"email" validate:"omitempty,email"`
	Phone                string          `json:"phone" validate:"omitempty,e164"`
	MemberType           string          `json:"member_type" validate:"omitempty,oneof=player guardian coach volunteer committee social"`
	MemberCategory       string          `json:"member_category" validate:"omitempty,oneof=adult child"`
	GuardianID           string          `json:"guardian_id"`
	EmergencyContactName string          `json:"emergency_contact_name"`
	SchoolName           string          `json:"school_name"`
	FederationData       *FederationData `json:"federation_data"`
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// NGBID returns the federation registration id, or "" when none is recorded.
func (m Member) NGBID() string {
	if m.FederationData == nil {
		return ""
	}
	return m.FederationData.NGBID
}

// Normalize trims text fields and rewrites the phone number in E.164 form.
func (m *Member) Normalize() error {
	for _, field := range []*string{
		&m.FirstName, &m.LastName, &m.DateOfBirth, &m.Address, &m.PostalCode,
		&m.Gender, &m.Email, &m.MemberType, &m.MemberCategory, &m.GuardianID,
		&m.EmergencyContactName, &m.SchoolName,
	} {
		*field = strings.TrimSpace(*field)
	}
	m.Email = strings.ToLower(m.Email)
	m.MemberType = strings.ToLower(m.MemberType)
	m.MemberCategory = strings.ToLower(m.MemberCategory)
	if m.FederationData != nil {
		m.FederationData.NGBID = strings.TrimSpace(m.FederationData.NGBID)
	}

	phone, err := NormalizePhone(m.Phone)
	if err != nil {
		return err
	}
	m.Phone = phone
	return nil
}

func (m Member) Validate() error {
	return validateStruct(m)
}

// NormalizePhone parses raw (national numbers default to Ireland) and returns it
// in E.164 form. Empty input stays empty.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
