package audit

import "fmt"

// CommandEvent represents a drone command dispatch audit event
type CommandEvent struct {
	Username     string
	ClientIP     string
	CommandID    string
	CommandType  string
	DroneSerial  string
	Success      bool
	ErrorMessage string
}

func (e CommandEvent) MessageID() string {
	return "command"
}

func (e CommandEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s dispatched %s to drone %s", e.Username, e.CommandType, e.DroneSerial)
	}
	msg := fmt.Sprintf("%s failed to dispatch %s to drone %s", e.Username, e.CommandType, e.DroneSerial)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e CommandEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e CommandEvent) Facility() int {
	return FacilityLocal0
}

func (e CommandEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.Username,
		},
		SDIDDevice: {
			"serial":  e.DroneSerial,
			"command": e.CommandID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.CommandType,
			"result":    result,
		},
	}
}
