package station

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectValid(t *testing.T) {
	cmd := Direct(13, true, 1)

	assert.Equal(t, CmdDirect, cmd.Name)
	require.NotNil(t, cmd.Channel)
	assert.Equal(t, 13, *cmd.Channel)
	require.NotNil(t, cmd.Valid)
	assert.True(t, *cmd.Valid)
	assert.Nil(t, cmd.FallbackChannel, "valid tune must not carry a fallback")
}

func TestDirectInvalidCarriesFallback(t *testing.T) {
	cmd := Direct(7, false, 1)

	require.NotNil(t, cmd.Valid)
	assert.False(t, *cmd.Valid)
	require.NotNil(t, cmd.FallbackChannel)
	assert.Equal(t, 1, *cmd.FallbackChannel)
}

func TestStepCommands(t *testing.T) {
	up := Up(2)
	assert.Equal(t, CmdUp, up.Name)
	require.NotNil(t, up.Channel)
	assert.Equal(t, 2, *up.Channel)

	down := Down(13)
	assert.Equal(t, CmdDown, down.Name)
	require.NotNil(t, down.Channel)
	assert.Equal(t, 13, *down.Channel)
}

func TestBareCommands(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{PowerToggle(), CmdPowerToggle},
		{Info(), CmdInfo},
		{Menu(), CmdMenu},
		{Back(), CmdBack},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.Name)
		assert.Nil(t, tt.cmd.Channel)
		assert.Nil(t, tt.cmd.Valid)
	}
}

func TestNoHandlerCarriesEvent(t *testing.T) {
	cmd := NoHandler("UNMAPPED_sony_0x3f")

	assert.Equal(t, CmdNoHandler, cmd.Name)
	assert.Equal(t, "UNMAPPED_sony_0x3f", cmd.Event)
}

// The station runtime parses the file with fixed key names; verify the wire
// shape field by field rather than round-tripping.
func TestCommandJSONShape(t *testing.T) {
	data, err := json.Marshal(Direct(7, false, 1).stamped())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "direct", m["command"])
	assert.Equal(t, float64(7), m["channel"])
	assert.Equal(t, false, m["valid"])
	assert.Equal(t, float64(1), m["fallback_channel"])
	assert.Contains(t, m, "timestamp")
	assert.Greater(t, m["timestamp"], float64(0))
}

func TestCommandJSONOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(Up(3).stamped())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.NotContains(t, m, "valid")
	assert.NotContains(t, m, "fallback_channel")
	assert.NotContains(t, m, "event")
}

func TestStampedPreservesExplicitTimestamp(t *testing.T) {
	cmd := Command{Name: CmdInfo, Timestamp: 1234.5}
	assert.Equal(t, 1234.5, cmd.stamped().Timestamp)
}
