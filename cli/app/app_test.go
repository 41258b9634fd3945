package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommands(t *testing.T) {
	ctl := New()
	require.NotNil(t, ctl)
	assert.Equal(t, "localnet", ctl.Name)

	var names []string
	for _, cmd := range ctl.Commands {
		names = append(names, cmd.Name)
	}
	for _, expected := range []string{"chain", "wallet", "contract"} {
		assert.Contains(t, names, expected)
	}
}
