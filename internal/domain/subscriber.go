package domain

import "time"

// Channel is a notification delivery channel a Subscriber may enable.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// AQIThresholds are the severity cutoffs applied to an overall AQI
// value. Invariant: Warning < Critical < Emergency.
type AQIThresholds struct {
	Warning   int `json:"warning"`
	Critical  int `json:"critical"`
	Emergency int `json:"emergency"`
}

// DefaultAQIThresholds mirrors the EPA unhealthy-for-sensitive-groups,
// very-unhealthy and hazardous bucket starts (101, 201, 301) and is used
// when a Subscriber has not overridden them.
var DefaultAQIThresholds = AQIThresholds{Warning: 101, Critical: 201, Emergency: 301}

// PollutantThresholds are the per-pollutant warning/critical cutoffs
// used when evaluating per-pollutant alerts against a subscriber's
// preferences.
type PollutantThresholds struct {
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// DefaultPollutantThresholds anchors the system-wide per-pollutant
// warning/critical cutoffs at the EPA unhealthy-for-sensitive-groups
// and unhealthy breakpoint starts (the 101 and 151 AQI bands in
// internal/aqi's tables), the forecast engine's baseline before any
// subscriber override narrows or widens it.
var DefaultPollutantThresholds = map[Pollutant]PollutantThresholds{
	NO2:  {Warning: 101, Critical: 361},
	O3:   {Warning: 71, Critical: 86},
	SO2:  {Warning: 76, Critical: 186},
	HCHO: {Warning: 21, Critical: 51},
	PM25: {Warning: 35.5, Critical: 55.5},
	PM10: {Warning: 155, Critical: 255},
	CO:   {Warning: 9.5, Critical: 12.5},
}

// Prefs holds a Subscriber's alert configuration. Mutated only through
// SubscriptionRegistry.UpdatePrefs, which merges a typed patch into the
// existing value. Unknown fields are not rejected: the patch type has
// only Prefs' own fields, and the PUT prefs handler ignores unknown
// JSON keys.
type Prefs struct {
	AQIThresholds          AQIThresholds                      `json:"aqiThresholds"`
	PerPollutantThresholds map[Pollutant]PollutantThresholds `json:"perPollutantThresholds"`
	Channels               []Channel                          `json:"channels"`
	Enabled                bool                               `json:"enabled"`
}

// HasChannel reports whether ch is among the subscriber's enabled
// channels.
func (p Prefs) HasChannel(ch Channel) bool {
	for _, c := range p.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// Subscriber is a location-scoped notification target. Identity is the
// opaque ID; location+radius determine which forecasts it matches.
// Subscribers are exclusively owned and mutated by the
// SubscriptionRegistry.
type Subscriber struct {
	ID             string     `json:"id"`
	Location       Location   `json:"location"`
	Prefs          Prefs      `json:"prefs"`
	LastDispatchAt *time.Time `json:"lastDispatchAt,omitempty"`
}
