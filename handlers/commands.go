package handlers

import (
	"giscus-autogen/bot"
	"giscus-autogen/utils"

	"github.com/bwmarrin/discordgo"
)

// Responder is the part of a discordgo session the command handlers use.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var commandPermissions = map[string]string{
	"sync": utils.LevelAdmin,
	"ping": utils.LevelGuest,
}

// CommandDispatcher is the central handler for all application command interactions.
// It performs permission checks and then dispatches the interaction to the appropriate handler.
func CommandDispatcher(r Responder, i *discordgo.InteractionCreate, auth *utils.Auth, syncer bot.Syncer) {
	commandName := i.ApplicationCommandData().Name

	if requiredLevel, ok := commandPermissions[commandName]; ok {
		if !auth.CheckPermission(i, requiredLevel) {
			respondEphemeral(r, i, "🚫 You do not have permission to run this command.")
			return
		}
	}

	switch commandName {
	case "sync":
		HandleSync(r, i, syncer)
	case "ping":
		HandlePing(r, i)
	default:
		respondEphemeral(r, i, "🚫 Internal error: unknown command.")
	}
}

func respondEphemeral(r Responder, i *discordgo.InteractionCreate, content string) {
	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		utils.Error("handlers", "respond", err.Error())
	}
}
