package alert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/airwatch/aqcore/internal/domain"
)

// emailBody renders the fixed email template with placeholder
// substitution for count/location/alerts (spec.md §6).
func emailBody(alerts []domain.Alert, loc domain.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d air quality alert(s) for location (%.4f, %.4f):\n", len(alerts), loc.Lat, loc.Lng)
	for _, a := range alerts {
		fmt.Fprintf(&b, "- [%s] %s (in %dh)\n", severityLabel(a.Severity), a.Message, a.HoursUntil)
	}
	return b.String()
}

// smsBody renders the SMS template: prefers critical/emergency alerts
// and caps the body at ~160 characters, per spec.md §6.
func smsBody(alerts []domain.Alert) string {
	sorted := make([]domain.Alert, len(alerts))
	copy(sorted, alerts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Severity > sorted[j].Severity })

	var b strings.Builder
	for _, a := range sorted {
		line := fmt.Sprintf("[%s] %s ", severityLabel(a.Severity), a.Message)
		if b.Len()+len(line) > 160 {
			break
		}
		b.WriteString(line)
	}
	body := strings.TrimSpace(b.String())
	if len(body) > 160 {
		body = body[:160]
	}
	return body
}

func severityLabel(s domain.Severity) string {
	switch s {
	case domain.SeverityEmergency:
		return "EMERGENCY"
	case domain.SeverityCritical:
		return "CRITICAL"
	case domain.SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}
