package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandInMenu(t *testing.T) {
	assert.True(t, Command{Description: "Start"}.InMenu())
	assert.False(t, Command{Description: " "}.InMenu())
	assert.False(t, Command{Description: "Stats", AdminOnly: true}.InMenu())
	assert.False(t, Command{Description: "Debug", Hidden: true}.InMenu())
}

func TestCommandAliases(t *testing.T) {
	cmd := Command{Aliases: []string{"stop", "/quit", " ", "//x"}}
	assert.Equal(t, []string{"/stop", "/quit", "/x"}, cmd.AliasRoutes())
	assert.True(t, cmd.HasAlias("stop"))
	assert.True(t, cmd.HasAlias("/quit"))
	assert.False(t, cmd.HasAlias("/start"))
}
