package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys shared by the engine services.
const (
	KeyChargerID        = attribute.Key("voltway.charger_id")
	KeyUserID           = attribute.Key("voltway.user_id")
	KeyContributionID   = attribute.Key("voltway.contribution_id")
	KeyContributionType = attribute.Key("voltway.contribution_type")
	KeyVoteDirection    = attribute.Key("voltway.vote_direction")
	KeyTrigger          = attribute.Key("voltway.reliability_trigger")
	KeyOperation        = attribute.Key("voltway.rewards_operation")
)

// Free-text contribution fields never leave the process.
var redactedKeys = map[attribute.Key]struct{}{
	"voltway.comment":   {},
	"voltway.photo_url": {},
}

const maxAttributeLen = 128

func ChargerID(id string) attribute.KeyValue { return KeyChargerID.String(id) }
func UserID(id string) attribute.KeyValue { return KeyUserID.String(id) }
func ContributionID(id string) attribute.KeyValue { return KeyContributionID.String(id) }
func Trigger(t string) attribute.KeyValue { return KeyTrigger.String(t) }

// clean drops redacted and empty attributes and truncates long strings.
func clean(attrs []attribute.KeyValue) []attribute.KeyValue {
	out := attrs[:0:0]
	for _, attr := range attrs {
		if _, ok := redactedKeys[attr.Key]; ok {
			continue
		}
		if attr.Value.Type() == attribute.STRING {
			v := attr.Value.AsString()
			if v == "" {
				continue
			}
			if len(v) > maxAttributeLen {
				attr = attr.Key.String(v[:maxAttributeLen])
			}
		}
		out = append(out, attr)
	}
	return out
}
