package handlers

import (
	"context"
	"errors"
	"fmt"

	"giscus-autogen/bot"
	"giscus-autogen/reconciler"
	"giscus-autogen/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleSync handles the logic for the /sync command. The interaction is
// acknowledged at once and the result arrives as a followup message.
func HandleSync(r Responder, i *discordgo.InteractionCreate, syncer bot.Syncer) {
	var dryRun bool
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "dry_run" {
			dryRun = opt.BoolValue()
		}
	}

	initial := "Received command to sync the newest post. Working on it..."
	if dryRun {
		initial = "Received command to dry-run a sync of the newest post. Working on it..."
	}
	respondEphemeral(r, i, initial)

	go func() {
		out, err := syncer.Sync(context.Background(), reconciler.SyncOptions{DryRun: dryRun})
		_, ferr := r.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: syncMessage(out, err),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if ferr != nil {
			utils.Error("handlers", "sync followup", ferr.Error())
		}
	}()
}

// syncMessage renders the result of a sync for Discord.
func syncMessage(out *reconciler.Outcome, err error) string {
	var dup *reconciler.DuplicateDiscussionError
	switch {
	case errors.As(err, &dup):
		return fmt.Sprintf("A discussion for %s already exists: %s", dup.PostURL, dup.ExistingURL)
	case errors.Is(err, reconciler.ErrSyncInProgress):
		return "A sync is already running, try again later."
	case err != nil:
		return fmt.Sprintf("Sync failed: %v", err)
	case out == nil:
		return "Sync finished without a result."
	case out.DryRun:
		return fmt.Sprintf("Dry run for %s: would create **%s** in category `%s`.", out.Post.URL, out.Request.Title, out.Request.CategoryID)
	case out.Discussion != nil:
		return fmt.Sprintf("Created discussion **%s**: %s", out.Discussion.Title, out.Discussion.URL)
	default:
		return "Sync finished without a result."
	}
}

// HandlePing handles the logic for the /ping command.
func HandlePing(r Responder, i *discordgo.InteractionCreate) {
	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pong!",
		},
	})
	if err != nil {
		utils.Error("handlers", "ping", err.Error())
	}
}
