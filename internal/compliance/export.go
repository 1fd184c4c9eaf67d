package compliance

import (
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{"member_id", "member_name", "status", "field", "severity", "ngb", "message"}

// WriteCSV writes one row per issue. Members without issues get a single OK row.
// Names are written as registered.
func WriteCSV(w io.Writer, report ClubReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, member := range report.Members {
		if member.Compliant() {
			if err := writeRow(writer, member.MemberID, member.MemberName, "OK", "", "", "", ""); err != nil {
				return fmt.Errorf("write member %s: %w", member.MemberID, err)
			}
			continue
		}
		for _, issue := range member.Issues {
			err := writeRow(writer, member.MemberID, member.MemberName, "ISSUE", issue.Field, string(issue.Severity), issue.NGB, issue.Message)
			if err != nil {
				return fmt.Errorf("write member %s: %w", member.MemberID, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeRow(writer *csv.Writer, cells ...string) error {
	for i, cell := range cells {
		cells[i] = escapeFormula(cell)
	}
	return writer.Write(cells)
}

// escapeFormula prefixes cells that a spreadsheet would evaluate as a formula.
func escapeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + cell
	}
	return cell
}
