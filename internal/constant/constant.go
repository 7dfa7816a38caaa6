// Package constant defines shared identifiers used throughout the relay,
// ensuring consistent naming across handlers, translators, and logging.
package constant

const (
	// ServiceName is the service identifier reported by the health endpoint.
	ServiceName = "modelrelay"

	// Version is the service version reported in the startup banner.
	Version = "1.0.0"

	// ThinkOpenTag marks the beginning of relayed reasoning content.
	ThinkOpenTag = "<think>"

	// ThinkCloseTag marks the end of relayed reasoning content.
	ThinkCloseTag = "</think>"
)
