package models

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty", raw: "", want: ""},
		{name: "whitespace", raw: "   ", want: ""},
		{name: "irish_mobile_national", raw: "087 123 4567", want: "+353871234567"},
		{name: "international", raw: "+353 86 123 4567", want: "+353861234567"},
		{name: "garbage", raw: "not a number", wantErr: true},
		{name: "too_short", raw: "12", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NormalizePhone(test.raw)
			if test.wantErr {
				if !errors.Is(err, ErrInvalidPhone) {
					t.Fatalf("NormalizePhone(%q) error = %v, want ErrInvalidPhone", test.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) unexpected error: %v", test.raw, err)
			}
			if got != test.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestMemberValidate(t *testing.T) {
	valid := Member{
		ClubID:         "club-1",
		FirstName:      "Aoife",
		DateOfBirth:    "2012-04-30",
		Email:          "aoife@example.com",
		MemberType:     MemberTypePlayer,
		MemberCategory: MemberCategoryChild,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid member rejected: %v", err)
	}

	tests := []struct {
		name  string
		edit  func(m *Member)
		field string
	}{
		{name: "missing_first_name", edit: func(m *Member) { m.FirstName = "" }, field: "first_name"},
		{name: "bad_date", edit: func(m *Member) { m.DateOfBirth = "30/04/2012" }, field: "date_of_birth"},
		{name: "bad_email", edit: func(m *Member) { m.Email = "nope" }, field: "email"},
		{name: "bad_type", edit: func(m *Member) { m.MemberType = "captain" }, field: "member_type"},
		{name: "bad_category", edit: func(m *Member) { m.MemberCategory = "senior" }, field: "member_category"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := valid
			test.edit(&m)
			err := m.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if len(verr.Problems) != 1 || verr.Problems[0].Field != test.field {
				t.Fatalf("Validate() problems = %+v, want single problem on %s", verr.Problems, test.field)
			}
		})
	}
}

func TestMemberNormalize(t *testing.T) {
	m := Member{
		FirstName:      "  Sean ",
		Email:          " Sean@Example.COM ",
		MemberType:     "Coach",
		Phone:          "0871234567",
		FederationData: &FederationData{NGBID: " IRFU-9 "},
	}
	if err := m.Normalize(); err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if m.FirstName != "Sean" || m.Email != "sean@example.com" || m.MemberType != MemberTypeCoach {
		t.Fatalf("Normalize() left %+v", m)
	}
	if m.Phone != "+353871234567" {
		t.Fatalf("Phone = %q, want E.164", m.Phone)
	}
	if m.NGBID() != "IRFU-9" {
		t.Fatalf("NGBID() = %q", m.NGBID())
	}
}

func TestMemberNGBIDNilFederationData(t *testing.T) {
	if got := (Member{}).NGBID(); got != "" {
		t.Fatalf("NGBID() = %q, want empty", got)
	}
}
