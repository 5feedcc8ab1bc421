package audit

import "fmt"

// ArchiveEvent represents a telemetry archive run audit event
type ArchiveEvent struct {
	Table        string
	RowsMoved    int64
	Success      bool
	ErrorMessage string
}

func (e ArchiveEvent) MessageID() string {
	return "archive"
}

func (e ArchiveEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("archived %d rows from %s", e.RowsMoved, e.Table)
	}
	msg := fmt.Sprintf("archive run failed for %s", e.Table)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ArchiveEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityError
}

func (e ArchiveEvent) Facility() int {
	return FacilityLocal0
}

func (e ArchiveEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDSubject: {
			"table": e.Table,
			"rows":  fmt.Sprintf("%d", e.RowsMoved),
		},
		SDIDAction: {
			"operation": "archive",
			"result":    result,
		},
	}
}
