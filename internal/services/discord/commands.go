package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Command is the closed set of slash commands this service handles.
// Adding a command means adding a constant here, a case in ParseCommand,
// a definition in Definitions, and a handler - the dispatcher switches
// over this type, not over raw strings.
type Command int

const (
	CommandLink Command = iota
	CommandUnlink
)

// String returns the command name as registered with Discord.
func (c Command) String() string {
	switch c {
	case CommandLink:
		return "link"
	case CommandUnlink:
		return "unlink"
	}
	return "unknown"
}

// ParseCommand maps an interaction's command name to a Command.
// Matching is case-insensitive. Returns false for names outside the
// supported set.
func ParseCommand(name string) (Command, bool) {
	switch strings.ToLower(name) {
	case "link":
		return CommandLink, true
	case "unlink":
		return CommandUnlink, true
	}
	return 0, false
}

// Option names used by the deployed command schema.
// OptionLogin is the pre-rename option name; the handlers keep accepting
// it for interactions created against the older schema.
const (
	OptionTwitchLogin   = "twitch_login"
	OptionLogin         = "login"
	OptionDiscordUser   = "discord_user"
	OptionBroadcasterID = "broadcaster_id"
)

// Definitions returns the application command schema to register with
// Discord. Registration happens out-of-band via cmd/register.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "link",
			Description: "Link a Twitch account to a Discord user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionTwitchLogin,
					Description: "Twitch login of the account to link",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        OptionDiscordUser,
					Description: "Discord user to link the account to",
					Required:    true,
				},
			},
		},
		{
			Name:        "unlink",
			Description: "Unlink a Twitch account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionTwitchLogin,
					Description: "Twitch login of the account to unlink",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionBroadcasterID,
					Description: "Twitch broadcaster ID of the account to unlink",
					Required:    false,
				},
			},
		},
	}
}
