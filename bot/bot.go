package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"giscus-autogen/models"
	"giscus-autogen/utils"

	"github.com/bwmarrin/discordgo"
)

// Command defines the interface for a bot command.
type Command interface {
	Definition() *discordgo.ApplicationCommand
}

// Bot encapsulates the bot's state.
type Bot struct {
	Session  *discordgo.Session
	Commands map[string]Command
	Syncer   Syncer
	Auth     *utils.Auth

	config    models.BotConfig
	schedule  string
	scheduler *Scheduler
}

// NewBot creates a bot that runs syncer on schedule and on /sync.
func NewBot(cfg *models.Config, syncer Syncer) (*Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("no bot token provided, set BOT_TOKEN")
	}

	dg, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	return &Bot{
		Session:  dg,
		Commands: make(map[string]Command),
		Syncer:   syncer,
		Auth:     utils.NewAuthFromConfig(cfg.Commands),
		config:   cfg.Bot,
		schedule: cfg.Schedule,
	}, nil
}

// RegisterCommands registers the provided commands.
func (b *Bot) RegisterCommands(commands []Command) {
	for _, cmd := range commands {
		b.Commands[cmd.Definition().Name] = cmd
	}
}

// Start opens the bot's session, registers handlers and slash commands, and
// starts the sync schedule.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	scheduler, err := NewScheduler(b.schedule, b.Syncer)
	if err != nil {
		return err
	}

	registerHandlers(b)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session, b.config.AdminChannelID)

	for _, cmd := range b.Commands {
		_, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", cmd.Definition())
		if err != nil {
			log.Printf("Cannot create '%v' command: %v", cmd.Definition().Name, err)
		}
	}

	b.scheduler = scheduler
	b.scheduler.Start()

	if b.config.SyncAtStartup {
		log.Println("Performing initial sync on startup...")
		b.scheduler.RunNow()
	} else {
		log.Println("Skipping initial sync on startup as per configuration.")
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.Session != nil {
		b.Session.Close()
	}
	utils.InitLogger(nil, "")
	fmt.Println("Bot stopped gracefully.")
}

// Run starts the bot and blocks until SIGINT or SIGTERM.
func (b *Bot) Run(registerHandlers func(*Bot), commands []Command) error {
	b.RegisterCommands(commands)

	if err := b.Start(registerHandlers); err != nil {
		return fmt.Errorf("error starting bot: %w", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.Stop()
	return nil
}
