package telegram

import (
	"testing"

	"github.com/m3rciful/intakebot/core/telegram/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start"}))
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Cancel", Aliases: []string{"stop"}}))
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{Handler: noop, AdminOnly: true, Hidden: true}))

	assert.ErrorIs(t, reg.RegisterCommand("/start", commands.Command{Handler: noop}), ErrDuplicate)
	assert.Error(t, reg.RegisterCommand("start", commands.Command{Handler: noop}))
	assert.Error(t, reg.RegisterCommand("/nil", commands.Command{}))

	key, _, ok := reg.LookupCommand("stop")
	require.True(t, ok)
	assert.Equal(t, "/cancel", key)

	_, _, ok = reg.LookupCommand("/unknown")
	assert.False(t, ok)

	assert.Equal(t, []tele.Command{
		{Text: "cancel", Description: "Cancel"},
		{Text: "start", Description: "Start"},
	}, reg.MenuCommands())
	assert.Len(t, reg.Commands(), 3)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("restart_submit", noop))
	require.NoError(t, reg.RegisterCallback("confirm_submit", noop))
	assert.ErrorIs(t, reg.RegisterCallback("confirm_submit", noop), ErrDuplicate)
	assert.Error(t, reg.RegisterCallback("", noop))

	_, ok := reg.Callback("confirm_submit")
	assert.True(t, ok)
	_, ok = reg.Callback("other")
	assert.False(t, ok)
	assert.Equal(t, []string{"confirm_submit", "restart_submit"}, reg.CallbackKeys())
	assert.Nil(t, reg.CallbackNotFound())
}
