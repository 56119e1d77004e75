package command

import "github.com/bwmarrin/discordgo"

// SyncCommand defines the structure for the /sync command.
type SyncCommand struct{}

// Definition returns the application command definition.
func (c *SyncCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "sync",
		Description: "Create a discussion for the newest blog post",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "dry_run",
				Description: "Only report what would be created",
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Required:    false,
			},
		},
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
