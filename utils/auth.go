package utils

import (
	"giscus-autogen/models"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Permission levels for slash commands.
const (
	LevelDeveloper = "developer"
	LevelAdmin     = "admin"
	LevelGuest     = "guest"
)

// Auth provides methods for authorization checks.
type Auth struct {
	config models.CommandsConfig
}

// NewAuth creates an Auth from the "commands" section of the loaded configuration.
func NewAuth() (*Auth, error) {
	var commandsConfig models.CommandsConfig
	if err := viper.UnmarshalKey("commands", &commandsConfig); err != nil {
		return nil, err
	}
	return NewAuthFromConfig(commandsConfig), nil
}

// NewAuthFromConfig creates an Auth from an already decoded config.
func NewAuthFromConfig(cfg models.CommandsConfig) *Auth {
	return &Auth{config: cfg}
}

// IsDeveloper checks if a user is a developer.
func (a *Auth) IsDeveloper(userID string) bool {
	for _, devID := range a.config.Auth.Developers {
		if userID == devID {
			return true
		}
	}
	return false
}

// IsAdmin checks if a member holds one of the admin roles.
func (a *Auth) IsAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	for _, adminRoleID := range a.config.Auth.AdminsRoles {
		for _, userRoleID := range member.Roles {
			if userRoleID == adminRoleID {
				return true
			}
		}
	}
	return false
}

// CheckPermission reports whether the invoking member has requiredLevel.
// Interactions outside a guild (no member) only pass the guest level.
func (a *Auth) CheckPermission(i *discordgo.InteractionCreate, requiredLevel string) bool {
	if requiredLevel == LevelGuest {
		return true
	}
	member := i.Member
	if member == nil || member.User == nil {
		return false
	}

	switch requiredLevel {
	case LevelDeveloper:
		return a.IsDeveloper(member.User.ID)
	case LevelAdmin:
		return a.IsDeveloper(member.User.ID) || a.IsAdmin(member)
	default:
		return false
	}
}
