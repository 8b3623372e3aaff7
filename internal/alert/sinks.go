package alert

import "github.com/rs/zerolog/log"

// LogSink is a CapabilitySink that logs the formatted body instead of
// calling a real delivery channel. Email/SMS delivery is out of this
// system's scope (spec.md §1: "the actual delivery channels for
// email/SMS are treated as capability sinks"); LogSink is the default
// sink wired at startup until a real provider is configured.
type LogSink struct {
	Channel string
}

// NewLogSink builds a LogSink labeled by its channel name, purely for
// log context.
func NewLogSink(channel string) *LogSink {
	return &LogSink{Channel: channel}
}

// Send logs the body and never fails, matching the capability sinks'
// "may fail silently" contract trivially.
func (s *LogSink) Send(subscriberID, body string) error {
	log.Info().Str("channel", s.Channel).Str("subscriber", subscriberID).Str("body", body).Msg("capability sink dispatch")
	return nil
}
