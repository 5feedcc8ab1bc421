package audit

import "fmt"

// PasswordEvent represents a password change audit event
type PasswordEvent struct {
	Username     string
	TargetUser   string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e PasswordEvent) MessageID() string {
	return "password"
}

func (e PasswordEvent) Message() string {
	if e.Username == e.TargetUser {
		if e.Success {
			return fmt.Sprintf("%s changed their own password", e.Username)
		}
		return fmt.Sprintf("%s failed to change their own password", e.Username)
	}
	if e.Success {
		return fmt.Sprintf("%s reset password for %s", e.Username, e.TargetUser)
	}
	msg := fmt.Sprintf("%s failed to reset password for %s", e.Username, e.TargetUser)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e PasswordEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e PasswordEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PasswordEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDSubject: {
			"user": e.TargetUser,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "change-password",
			"result":    result,
		},
	}
}
