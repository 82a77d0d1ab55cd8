package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser("EconomyBot")

	cases := []struct {
		text string
		cmd  string
		args []string
		ok   bool
	}{
		{"!daily", "daily", nil, true},
		{".slots 100", "slots", []string{"100"}, true},
		{"/login hunter2", "login", []string{"hunter2"}, true},
		{"/profile@EconomyBot", "profile", nil, true},
		{"/PROFILE@economybot", "profile", nil, true},
		{"  !give   500  ", "give", []string{"500"}, true},
		{"!GIVEITEM 42 Rusty Sword 2", "giveitem", []string{"42", "Rusty", "Sword", "2"}, true},
		{"just chatting", "", nil, false},
		{"!", "", nil, false},
		{"   ", "", nil, false},
	}

	for _, tc := range cases {
		cmd, args, ok := p.ParseCommand(tc.text)
		assert.Equal(t, tc.ok, ok, "text=%q", tc.text)
		assert.Equal(t, tc.cmd, cmd, "text=%q", tc.text)
		assert.Equal(t, tc.args, args, "text=%q", tc.text)
	}
}
