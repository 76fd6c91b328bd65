// Package status serves one JSON snapshot of the daemon per TCP
// connection and optionally advertises the endpoint over mDNS.
package status

import (
	"github.com/tunedial/tunedial-go/pkg/cooldown"
	"github.com/tunedial/tunedial-go/pkg/egg"
)

// Snapshot is the state report written to each connection.
type Snapshot struct {
	Version    string               `json:"version"`
	SessionID  string               `json:"session_id"`
	UptimeS    float64              `json:"uptime_s"`
	Channel    int                  `json:"channel"`
	Channels   []int                `json:"channels"`
	DialState  string               `json:"dial_state"`
	DialBuffer string               `json:"dial_buffer,omitempty"`
	Eggs       map[string]EggStatus `json:"eggs"`
}

// EggStatus reports one special action's availability.
type EggStatus struct {
	Description        string  `json:"description,omitempty"`
	Available          bool    `json:"available"`
	CooldownRemainingS float64 `json:"cooldown_remaining_s"`
	Active             bool    `json:"active"`
	EffectRemainingS   float64 `json:"effect_remaining_s"`
}

// BuildEggStatus reports every registered special action against the
// cooldown gate.
func BuildEggStatus(eggs *egg.Registry, gate *cooldown.Manager) map[string]EggStatus {
	out := make(map[string]EggStatus, eggs.Count())
	for _, desc := range eggs.All() {
		remaining := gate.TimeUntilAvailable(desc.Key, desc.Cooldown)
		out[desc.Key] = EggStatus{
			Description:        desc.Description,
			Available:          remaining == 0,
			CooldownRemainingS: remaining.Seconds(),
			Active:             gate.IsActive(desc.Key),
			EffectRemainingS:   gate.EffectTimeRemaining(desc.Key).Seconds(),
		}
	}
	return out
}
