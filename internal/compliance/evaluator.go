// Package compliance checks member records against national governing body
// registration requirements.
package compliance

import (
	"math"
	"strings"
	"time"

	"github.com/codr1/Clubhouse/internal/models"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

const (
	NGBAll     = "All"
	NGBGAALGFA = "GAA/LGFA"
	NGBIRFU    = "IRFU"

	adultAge = 18
)

// Issue is a single missing or incomplete item on a member record.
type Issue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	NGB      string   `json:"ngb"`
}

var schoolRuleSports = map[string]struct{}{
	"rugby": {},
	"irfu":  {},
}

// Evaluate returns the compliance issues for member. asOf is the date used to
// derive age. It never fails: absent fields are reported, not rejected.
func Evaluate(member models.Member, sportType string, asOf time.Time) []Issue {
	issues := make([]Issue, 0, 2)
	add := func(field, message string, severity Severity, ngb string) {
		issues = append(issues, Issue{Field: field, Message: message, Severity: severity, NGB: ngb})
	}

	if missing(member.DateOfBirth) {
		add("date_of_birth", "Date of birth is required", SeverityError, NGBAll)
	}
	if missing(member.Address) && missing(member.PostalCode) {
		add("address", "Address or postal code is required", SeverityError, NGBGAALGFA)
	}
	if missing(member.Gender) {
		add("gender", "Gender is required", SeverityError, NGBAll)
	}

	minor := IsMinor(member, asOf)
	if minor && missing(member.GuardianID) && missing(member.EmergencyContactName) {
		add("guardian_id", "Minors need a linked guardian or an emergency contact", SeverityError, NGBAll)
	}
	if minor && schoolRuleApplies(sportType) && missing(member.SchoolName) {
		add("school_name", "School name is recommended for underage rugby players", SeverityWarning, NGBIRFU)
	}
	if strings.EqualFold(strings.TrimSpace(member.MemberType), models.MemberTypeCoach) && missing(member.Email) {
		add("email", "Coaches must have an email address for safeguarding contact", SeverityError, NGBAll)
	}
	if missing(member.NGBID()) {
		add("federation_data.ngb_id", "No governing body registration number recorded", SeverityWarning, NGBAll)
	}

	return issues
}

// IsMinor reports whether member is categorised as a child or is under 18 on asOf.
func IsMinor(member models.Member, asOf time.Time) bool {
	if strings.EqualFold(strings.TrimSpace(member.MemberCategory), models.MemberCategoryChild) {
		return true
	}
	age, ok := Age(member.DateOfBirth, asOf)
	return ok && age < adultAge
}

// Age returns whole years between a YYYY-MM-DD date of birth and asOf. The
// second result is false when dob is empty or cannot be parsed.
func Age(dob string, asOf time.Time) (int, bool) {
	dob = strings.TrimSpace(dob)
	if dob == "" {
		return 0, false
	}
	born, err := time.Parse(models.DateOfBirthLayout, dob)
	if err != nil {
		return 0, false
	}
	age := asOf.Year() - born.Year()
	if asOf.Month() < born.Month() || (asOf.Month() == born.Month() && asOf.Day() < born.Day()) {
		age--
	}
	return age, true
}

// HealthScore is the percentage of members with no issues of any severity,
// rounded to the nearest integer. An empty club scores 100.
func HealthScore(reports []MemberReport) int {
	if len(reports) == 0 {
		return 100
	}
	compliant := 0
	for _, report := range reports {
		if report.Compliant() {
			compliant++
		}
	}
	return int(math.Round(100 * float64(compliant) / float64(len(reports))))
}

func schoolRuleApplies(sportType string) bool {
	_, ok := schoolRuleSports[strings.ToLower(strings.TrimSpace(sportType))]
	return ok
}

func missing(value string) bool {
	return strings.TrimSpace(value) == ""
}
