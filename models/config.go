package models

import "time"

// Config is the fully resolved application configuration.
type Config struct {
	GitHub     GitHubConfig
	Website    WebsiteConfig
	Discussion DiscussionConfig
	HTTP       HTTPConfig
	Scraper    ScraperConfig
	Bot        BotConfig
	Commands   CommandsConfig

	// Schedule is a cron spec used by the watch and bot modes.
	Schedule string
}

// GitHubConfig identifies the API endpoints and the target repository.
type GitHubConfig struct {
	Token             string
	RESTURL           string
	GraphQLURL        string
	Owner             string
	Name              string
	RequestsPerSecond float64
}

// Repo returns the repository the discussions live in.
func (c GitHubConfig) Repo() Repo {
	return Repo{Owner: c.Owner, Name: c.Name}
}

type WebsiteConfig struct {
	RSSURL string
}

// DiscussionConfig controls where discussions are created and how existing
// ones are recognised.
type DiscussionConfig struct {
	Category string
	MatchOn  MatchKey
}

type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type ScraperConfig struct {
	// ExcerptFallback lets the scraper use a readability excerpt when the page
	// has no description meta tag.
	ExcerptFallback bool
}

type BotConfig struct {
	Token          string
	AdminChannelID string
	SyncAtStartup  bool
}

// CommandsConfig holds the slash-command permission lists.
type CommandsConfig struct {
	Auth CommandAuth `json:"auth" mapstructure:"auth"`
}

type CommandAuth struct {
	Developers  []string `json:"developers" mapstructure:"developers"`
	AdminsRoles []string `json:"admins_roles" mapstructure:"admins_roles"`
	Guest       []string `json:"guest" mapstructure:"guest"`
}
