package security

import "go.uber.org/zap/zapcore"

// Severity is derived from EventType, never user-provided.
type Severity string

const (
	SeverityINFO     Severity = "INFO"
	SeverityMEDIUM   Severity = "MEDIUM"
	SeverityWARN     Severity = "WARN"
	SeverityHIGH     Severity = "HIGH"
	SeverityCRITICAL Severity = "CRITICAL"
)

var EventSeverityMap = map[EventType]Severity{
	EventLoginSuccess:   SeverityINFO,
	EventLogout:         SeverityINFO,
	EventPasscodeSent:   SeverityINFO,
	EventPasscodeResent: SeverityINFO,

	EventPasscodeExpired: SeverityMEDIUM,
	EventDataExport:      SeverityMEDIUM,

	EventLoginFailed:          SeverityWARN,
	EventPasscodeRejected:     SeverityWARN,
	EventPasscodeDeliveryFail: SeverityWARN,
	EventRateLimitTriggered:   SeverityWARN,
	EventUploadRejected:       SeverityWARN,

	EventLoginBlocked:       SeverityHIGH,
	EventBlockCreated:       SeverityHIGH,
	EventUnauthorizedAccess: SeverityHIGH,
	EventPasscodeDisplayed:  SeverityHIGH,
}

// GetSeverity defaults to MEDIUM for unmapped events.
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

func IsHighOrAbove(eventType EventType) bool {
	severity := GetSeverity(eventType)
	return severity == SeverityHIGH || severity == SeverityCRITICAL
}

// Level maps a severity onto the zap level it is logged at.
func (s Severity) Level() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityMEDIUM, SeverityWARN:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
