package domain

import "strings"

// Pollutant is one of the fixed canonical pollutant identifiers. Canonical
// names are case-sensitive; incoming provider aliases must be normalized
// through NormalizePollutant before entering a Snapshot.
type Pollutant string

const (
	NO2  Pollutant = "NO2"
	O3   Pollutant = "O3"
	SO2  Pollutant = "SO2"
	HCHO Pollutant = "HCHO"
	CO   Pollutant = "CO"
	PM25 Pollutant = "PM25"
	PM10 Pollutant = "PM10"
)

// AllPollutants lists every canonical pollutant, in the order they appear
// in spec.md's breakpoint table.
var AllPollutants = []Pollutant{NO2, O3, SO2, HCHO, CO, PM25, PM10}

// CanonicalUnit returns the unit a Measurement for this pollutant must be
// expressed in. Particulates are μg/m³, CO is ppm, every other gas is ppb.
func (p Pollutant) CanonicalUnit() string {
	switch p {
	case PM25, PM10:
		return "µg/m³"
	case CO:
		return "ppm"
	default:
		return "ppb"
	}
}

// Valid reports whether p is one of the fixed canonical members.
func (p Pollutant) Valid() bool {
	switch p {
	case NO2, O3, SO2, HCHO, CO, PM25, PM10:
		return true
	default:
		return false
	}
}

// pollutantAliases maps normalized (lower-cased, punctuation-stripped)
// provider spellings to their canonical Pollutant.
var pollutantAliases = map[string]Pollutant{
	"no2":   NO2,
	"o3":    O3,
	"ozone": O3,
	"so2":   SO2,
	"hcho":  HCHO,
	"ch2o":  HCHO,
	"co":    CO,
	"pm25":  PM25,
	"pm10":  PM10,
}

// NormalizePollutant case-folds and strips punctuation from a raw provider
// pollutant label (e.g. "pm2.5", "PM2_5") and maps it to a canonical
// Pollutant. It returns "" if the label is not recognized.
func NormalizePollutant(raw string) Pollutant {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(".", "", "_", "", "-", "", " ", "").Replace(key)
	if p, ok := pollutantAliases[key]; ok {
		return p
	}
	return ""
}
