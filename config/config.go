package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"giscus-autogen/github"
	"giscus-autogen/models"
	"giscus-autogen/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig reads configuration into viper from, in order of precedence:
// environment variables (a .env file is loaded into the environment first)
// and config.yaml in the working directory.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, skipping.")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("parsing config.yaml: %w", err)
		}
		log.Printf("No config.yaml found, using environment variables and defaults.")
	}
	return nil
}

// SetDefaults registers the default of every optional key.
func SetDefaults() {
	viper.SetDefault("github.api_url", github.DefaultRESTURL)
	viper.SetDefault("github.graphql_url", github.DefaultGraphQLURL)
	viper.SetDefault("github.requests_per_second", 5)
	viper.SetDefault("discussion.match_on", string(models.MatchByPath))
	viper.SetDefault("http.timeout", utils.DefaultTimeout.String())
	viper.SetDefault("http.user_agent", utils.DefaultUserAgent)
	viper.SetDefault("scraper.excerpt_fallback", false)
	viper.SetDefault("schedule", "@hourly")
	viper.SetDefault("bot.syncAtStartup", false)
}

// Load builds the application configuration from viper and validates the
// keys every mode needs.
func Load() (*models.Config, error) {
	cfg := &models.Config{
		GitHub: models.GitHubConfig{
			Token:             viper.GetString("github.token"),
			RESTURL:           viper.GetString("github.api_url"),
			GraphQLURL:        viper.GetString("github.graphql_url"),
			RequestsPerSecond: viper.GetFloat64("github.requests_per_second"),
		},
		Website: models.WebsiteConfig{
			RSSURL: viper.GetString("website.rss_url"),
		},
		Discussion: models.DiscussionConfig{
			Category: viper.GetString("discussion.category"),
		},
		HTTP: models.HTTPConfig{
			UserAgent: viper.GetString("http.user_agent"),
		},
		Scraper: models.ScraperConfig{
			ExcerptFallback: viper.GetBool("scraper.excerpt_fallback"),
		},
		Bot: models.BotConfig{
			Token:          viper.GetString("BOT_TOKEN"),
			AdminChannelID: viper.GetString("bot.adminChannelId"),
			SyncAtStartup:  viper.GetBool("bot.syncAtStartup"),
		},
		Schedule: viper.GetString("schedule"),
	}

	for _, req := range []struct{ env, value string }{
		{"GITHUB_TOKEN", cfg.GitHub.Token},
		{"WEBSITE_RSS_URL", cfg.Website.RSSURL},
		{"DISCUSSION_CATEGORY", cfg.Discussion.Category},
	} {
		if req.value == "" {
			return nil, fmt.Errorf("%s must be set", req.env)
		}
	}

	for _, endpoint := range []struct{ env, value string }{
		{"GITHUB_API_URL", cfg.GitHub.RESTURL},
		{"GITHUB_GRAPHQL_URL", cfg.GitHub.GraphQLURL},
	} {
		if u, err := url.ParseRequestURI(endpoint.value); err != nil || u.Host == "" {
			return nil, fmt.Errorf("%s %q is not an absolute URL", endpoint.env, endpoint.value)
		}
	}

	owner, name, err := ParseRepository(viper.GetString("github.repository"), viper.GetString("github.repository_owner"))
	if err != nil {
		return nil, err
	}
	cfg.GitHub.Owner, cfg.GitHub.Name = owner, name

	if cfg.Discussion.MatchOn, err = models.ParseMatchKey(viper.GetString("discussion.match_on")); err != nil {
		return nil, fmt.Errorf("DISCUSSION_MATCH_ON: %w", err)
	}

	if cfg.HTTP.Timeout, err = time.ParseDuration(viper.GetString("http.timeout")); err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT: %w", err)
	}
	if cfg.HTTP.Timeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", cfg.HTTP.Timeout)
	}
	if cfg.GitHub.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("GITHUB_REQUESTS_PER_SECOND must not be negative")
	}

	if err := viper.UnmarshalKey("commands", &cfg.Commands); err != nil {
		return nil, fmt.Errorf("decoding commands section: %w", err)
	}
	return cfg, nil
}

// ParseRepository accepts "owner/name", or a bare "name" together with a
// separately configured owner.
func ParseRepository(repository, owner string) (string, string, error) {
	repository = strings.TrimSpace(repository)
	if repository == "" {
		return "", "", errors.New("GITHUB_REPOSITORY must be set")
	}

	if o, n, ok := strings.Cut(repository, "/"); ok {
		if o == "" || n == "" || strings.Contains(n, "/") {
			return "", "", fmt.Errorf("GITHUB_REPOSITORY %q is not of the form owner/name", repository)
		}
		return o, n, nil
	}

	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", "", fmt.Errorf("GITHUB_REPOSITORY_OWNER must be set when GITHUB_REPOSITORY (%q) has no owner", repository)
	}
	return owner, repository, nil
}
