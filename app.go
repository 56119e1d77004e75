package main

import (
	"fmt"
	"log"
	"time"

	"giscus-autogen/feed"
	"giscus-autogen/github"
	"giscus-autogen/models"
	"giscus-autogen/reconciler"
	"giscus-autogen/scraper"
	"giscus-autogen/utils"

	"github.com/bwmarrin/discordgo"
)

// newService wires the feed, scraper, and GitHub client into a sync service.
func newService(cfg *models.Config) *reconciler.Service {
	httpClient := utils.NewHTTPClient(cfg.HTTP.Timeout)
	client := github.NewClient(cfg.GitHub, httpClient, cfg.HTTP.UserAgent)

	return &reconciler.Service{
		Feed:    feed.NewSource(httpClient, cfg.Website.RSSURL, cfg.HTTP.UserAgent),
		Scraper: scraper.NewScraper(httpClient, cfg.HTTP.UserAgent, cfg.Scraper.ExcerptFallback),
		Orchestrator: &reconciler.Orchestrator{
			Finder: &reconciler.Finder{Lister: client, MatchOn: cfg.Discussion.MatchOn},
			Creator: &reconciler.Creator{
				Repositories: client,
				Categories:   client,
				Poster:       client,
				Category:     cfg.Discussion.Category,
			},
			Repo: cfg.GitHub.Repo(),
			Now:  time.Now,
			OnTransition: func(post models.Post, from, to reconciler.State) {
				log.Printf("%s: %s -> %s", post.URL, from, to)
			},
		},
	}
}

// startAdminLogger sends log entries to the Discord admin channel when a bot
// token and channel are configured. Only the REST API is used, so no gateway
// connection is opened.
func startAdminLogger(cfg *models.Config) (stop func()) {
	if cfg.Bot.Token == "" || cfg.Bot.AdminChannelID == "" {
		return func() {}
	}
	dg, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		log.Printf("Admin channel logging disabled: %v", err)
		return func() {}
	}
	utils.InitLogger(dg, cfg.Bot.AdminChannelID)
	utils.Info("main", "startup", fmt.Sprintf("Syncing %s into %s (%s)", cfg.Website.RSSURL, cfg.GitHub.Repo(), cfg.Discussion.Category))
	return func() { utils.InitLogger(nil, "") }
}
