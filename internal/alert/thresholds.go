package alert

import "github.com/airwatch/aqcore/internal/domain"

// filterBySubscriberThresholds implements spec.md §4.8 step 3: the
// subscriber's own thresholds override the forecast's defaults, and
// only alerts whose severity at those thresholds is >= warning survive.
func filterBySubscriberThresholds(alerts []domain.Alert, prefs domain.Prefs) []domain.Alert {
	var out []domain.Alert
	for _, a := range alerts {
		sev := severityAt(a, prefs)
		if sev >= domain.SeverityWarning {
			a.Severity = sev
			out = append(out, a)
		}
	}
	return out
}

// severityAt recomputes an alert's severity against the subscriber's
// own thresholds rather than trusting the forecast-default severity
// baked in at generation time.
func severityAt(a domain.Alert, prefs domain.Prefs) domain.Severity {
	switch a.Kind {
	case domain.AlertAQIEmergency, domain.AlertAQICritical, domain.AlertAQIWarning:
		th := prefs.AQIThresholds
		if th == (domain.AQIThresholds{}) {
			th = domain.DefaultAQIThresholds
		}
		switch {
		case a.AQI >= th.Emergency:
			return domain.SeverityEmergency
		case a.AQI >= th.Critical:
			return domain.SeverityCritical
		case a.AQI >= th.Warning:
			return domain.SeverityWarning
		default:
			return domain.SeverityNone
		}
	case domain.AlertPollutantWarning, domain.AlertPollutantCritical:
		th, ok := prefs.PerPollutantThresholds[a.Pollutant]
		if !ok {
			return a.Severity
		}
		switch {
		case th.Critical > 0 && a.Value >= th.Critical:
			return domain.SeverityCritical
		case th.Warning > 0 && a.Value >= th.Warning:
			return domain.SeverityWarning
		default:
			return domain.SeverityNone
		}
	case domain.AlertInfo:
		return domain.SeverityNone
	default:
		return a.Severity
	}
}
