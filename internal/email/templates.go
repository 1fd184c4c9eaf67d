package email

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	KindComplianceReminder = "compliance_reminder"
	KindComplianceDigest   = "compliance_digest"
)

type ReminderDetails struct {
	ClubName     string
	MemberName   string
	ForGuardian  bool
	MissingItems []string
}

type DigestDetails struct {
	ClubName        string
	Date            string
	TotalMembers    int
	CompliantCount  int
	ErrorCount      int
	WarningCount    int
	DataHealthScore int
	ExportLocation  string
}

func BuildComplianceReminder(details ReminderDetails) Message {
	clubName := strings.TrimSpace(details.ClubName)
	if clubName == "" {
		clubName = "your club"
	}
	// A Caser is stateful, so each call gets its own. NoLower keeps names
	// like McCann intact.
	memberName := cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(details.MemberName))
	if memberName == "" {
		memberName = "Member"
	}

	intro := fmt.Sprintf("Hi %s,", memberName)
	subjectName := "your"
	if details.ForGuardian {
		intro = "Hello,"
		subjectName = memberName + "'s"
	}

	lines := []string{
		intro,
		"",
		fmt.Sprintf("%s membership record at %s is missing some details needed for registration:", upperFirst(subjectName), clubName),
		"",
	}
	for _, item := range details.MissingItems {
		lines = append(lines, "  - "+item)
	}
	lines = append(lines, "", "Please update the record or reply to this email with the details.")

	return Message{
		Subject: fmt.Sprintf("Membership details needed - %s", clubName),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildComplianceDigest(details DigestDetails) Message {
	clubName := strings.TrimSpace(details.ClubName)
	if clubName == "" {
		clubName = "Your club"
	}

	lines := []string{
		fmt.Sprintf("Compliance summary for %s (%s)", clubName, details.Date),
		"",
		fmt.Sprintf("Data health score: %d%%", details.DataHealthScore),
		fmt.Sprintf("Members: %d", details.TotalMembers),
		fmt.Sprintf("Fully compliant: %d", details.CompliantCount),
		fmt.Sprintf("Errors: %d", details.ErrorCount),
		fmt.Sprintf("Warnings: %d", details.WarningCount),
	}
	if location := strings.TrimSpace(details.ExportLocation); location != "" {
		lines = append(lines, "", fmt.Sprintf("Full export: %s", location))
	}

	return Message{
		Subject: fmt.Sprintf("Compliance digest - %s - %d%%", clubName, details.DataHealthScore),
		Body:    strings.Join(lines, "\n"),
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
