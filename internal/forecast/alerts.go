package forecast

import (
	"fmt"

	"github.com/airwatch/aqcore/internal/domain"
)

// deriveAlerts implements spec.md §4.6's alert derivation: AQI-level
// alerts over the first 24 forecast hours, plus per-pollutant
// threshold alerts over the same window.
func deriveAlerts(aqiSeq []domain.AqiPrediction, perPollutant map[domain.Pollutant][]domain.HourPrediction, thresholds domain.AQIThresholds, pollutantThresholds map[domain.Pollutant]domain.PollutantThresholds) []domain.Alert {
	var alerts []domain.Alert

	for _, pred := range aqiSeq {
		if pred.Hour > 24 {
			continue
		}
		switch {
		case pred.AQI >= thresholds.Emergency:
			alerts = append(alerts, newAQIAlert(domain.AlertAQIEmergency, domain.SeverityEmergency, pred))
		case pred.AQI >= thresholds.Critical:
			alerts = append(alerts, newAQIAlert(domain.AlertAQICritical, domain.SeverityCritical, pred))
		case pred.AQI >= thresholds.Warning:
			alerts = append(alerts, newAQIAlert(domain.AlertAQIWarning, domain.SeverityWarning, pred))
		}
	}

	for p, preds := range perPollutant {
		th, ok := pollutantThresholds[p]
		if !ok {
			continue
		}
		for _, pred := range preds {
			if pred.Hour > 24 {
				continue
			}
			switch {
			case th.Critical > 0 && pred.Concentration >= th.Critical:
				alerts = append(alerts, newPollutantAlert(domain.AlertPollutantCritical, domain.SeverityCritical, p, pred))
			case th.Warning > 0 && pred.Concentration >= th.Warning:
				alerts = append(alerts, newPollutantAlert(domain.AlertPollutantWarning, domain.SeverityWarning, p, pred))
			}
		}
	}

	return alerts
}

func newAQIAlert(kind domain.AlertKind, sev domain.Severity, pred domain.AqiPrediction) domain.Alert {
	return domain.Alert{
		Kind:       kind,
		HoursUntil: pred.Hour,
		AQI:        pred.AQI,
		Severity:   sev,
		Message:    fmt.Sprintf("AQI forecast to reach %d in %d hour(s)", pred.AQI, pred.Hour),
		At:         pred.At,
	}
}

func newPollutantAlert(kind domain.AlertKind, sev domain.Severity, p domain.Pollutant, pred domain.HourPrediction) domain.Alert {
	return domain.Alert{
		Kind:       kind,
		Pollutant:  p,
		HoursUntil: pred.Hour,
		Value:      pred.Concentration,
		Severity:   sev,
		Message:    fmt.Sprintf("%s forecast to reach %.1f %s in %d hour(s)", p, pred.Concentration, p.CanonicalUnit(), pred.Hour),
		At:         pred.At,
	}
}

// levelMessages holds the canonical recommendation body per AQI level,
// matching the "canonical strings defined in §8 scenarios" spec.md
// §4.6 references.
var levelMessages = map[domain.Level]string{
	domain.LevelUnhealthySensitive: "Sensitive groups should reduce prolonged outdoor exertion.",
	domain.LevelUnhealthy:          "Everyone should reduce prolonged outdoor exertion.",
	domain.LevelVeryUnhealthy:      "Avoid outdoor exertion; sensitive groups should remain indoors.",
	domain.LevelHazardous:          "Remain indoors and keep windows closed; this is an emergency condition.",
}

// deriveRecommendations emits a bundle for every hour whose AQI exceeds
// 100. Consecutive duplicate recommendations are intentionally left
// un-deduplicated (spec.md §4.6): that is the caller's concern.
func deriveRecommendations(aqiSeq []domain.AqiPrediction) []domain.Recommendation {
	var out []domain.Recommendation
	for _, pred := range aqiSeq {
		if pred.AQI <= 100 {
			continue
		}
		msg, ok := levelMessages[pred.Level]
		if !ok {
			continue
		}
		out = append(out, domain.Recommendation{
			Hour:    pred.Hour,
			Level:   pred.Level,
			At:      pred.At,
			Message: msg,
		})
	}
	return out
}
