package utils

import (
	"fmt"
	"log"
	"sync"
	"time"

	"giscus-autogen/models"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red

	// Discord rejects embed field values longer than this.
	maxFieldLength = 1024
)

// ChannelSender is the part of a discordgo session the logger needs.
type ChannelSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var (
	mu        sync.RWMutex
	session   ChannelSender
	channelID string
)

// InitLogger routes log entries to the admin channel of the given session.
// An empty channel keeps logging local. It is safe to call while other
// goroutines log.
func InitLogger(s ChannelSender, adminChannelID string) {
	mu.Lock()
	session = s
	channelID = adminChannelID
	mu.Unlock()
	if s != nil && adminChannelID == "" {
		log.Println("Warning: bot.adminChannelId is not set. Logging to channel will be disabled.")
	}
}

// target returns the admin channel destination, or nil when there is none.
func target() (ChannelSender, string) {
	mu.RLock()
	defer mu.RUnlock()
	if session == nil || channelID == "" {
		return nil, ""
	}
	return session, channelID
}

// Log sends a log message to the admin channel, or to the standard logger
// when no channel is configured.
func Log(level, module, operation, details string) {
	log.Printf("[%s] Module: %s, Operation: %s, Details: %s", level, module, operation, details)
	s, channel := target()
	if s == nil {
		return
	}

	var color int
	switch level {
	case "WARN":
		color = ColorWarn
	case "ERROR":
		color = ColorError
	default:
		color = ColorInfo
	}

	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module, Inline: true},
			{Name: "Operation", Value: operation, Inline: true},
			{Name: "Details", Value: truncate(details, maxFieldLength)},
		},
	}

	if _, err := s.ChannelMessageSendEmbed(channel, embed); err != nil {
		log.Printf("Error sending log message to Discord: %v", err)
	}
}

// AnnounceDiscussion posts a link to a newly created discussion.
func AnnounceDiscussion(d *models.CreatedDiscussion) {
	s, channel := target()
	if s == nil || d == nil {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "New discussion created",
		URL:         d.URL,
		Description: d.Title,
		Color:       ColorInfo,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := s.ChannelMessageSendEmbed(channel, embed); err != nil {
		log.Printf("Error announcing discussion on Discord: %v", err)
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
