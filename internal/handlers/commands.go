package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/yourusername/linkbot/internal/db"
	"github.com/yourusername/linkbot/internal/services/admin"
	"github.com/yourusername/linkbot/internal/services/discord"
)

const (
	linkUsage   = "Usage: `/link twitch_login:cxrys_ discord_user:@User`"
	unlinkUsage = "Usage: `/unlink twitch_login:cxrys_` or `/unlink broadcaster_id:564886943`"
)

// handleLink registers a Twitch login ↔ Discord user link via the admin API.
// Returns the chat reply; downstream failures become reply text, never
// handler errors.
func (h *InteractionHandler) handleLink(ctx context.Context, invoker string, data discordgo.ApplicationCommandInteractionData) string {
	login := strings.ToLower(strings.TrimSpace(loginOption(data.Options)))
	discordUserID := strings.TrimSpace(optionString(data.Options, discord.OptionDiscordUser))

	if login == "" || discordUserID == "" {
		db.InsertCommandAudit(ctx, invoker, "link", "rejected", nil)
		return "⚠️ Missing options. " + linkUsage
	}
	if err := h.validator.ValidateLogin(login); err != nil {
		db.InsertCommandAudit(ctx, invoker, "link", "rejected", map[string]interface{}{"login": login})
		return fmt.Sprintf("⚠️ %q does not look like a Twitch login. %s", login, linkUsage)
	}

	resp, err := h.admin.Register(ctx, admin.RegisterRequest{
		Login:         login,
		DiscordUserID: discordUserID,
	})
	if err != nil {
		log.Printf("[COMMAND_ERROR] link %s failed: %v", login, err)
		h.recordCommand(ctx, invoker, "link", false, map[string]interface{}{
			"login": login,
			"error": err.Error(),
		})
		return "❌ Link failed: " + err.Error()
	}

	twitchID := resp.TwitchID.String()
	if twitchID == "" {
		twitchID = "unknown"
	}

	h.recordCommand(ctx, invoker, "link", true, map[string]interface{}{
		"login":           login,
		"discord_user_id": discordUserID,
		"twitch_id":       twitchID,
	})

	reply := fmt.Sprintf("✅ Linked Twitch account **%s** to <@%s> (Twitch ID: %s).", login, discordUserID, twitchID)
	if len(resp.Created) > 0 {
		reply += fmt.Sprintf(" Newly created: %s.", strings.Join(resp.Created, ", "))
	}
	return reply
}

// handleUnlink removes a link by login and/or broadcaster ID.
// Only the supplied fields go on the wire; absent fields are omitted.
func (h *InteractionHandler) handleUnlink(ctx context.Context, invoker string, data discordgo.ApplicationCommandInteractionData) string {
	login := strings.ToLower(strings.TrimSpace(loginOption(data.Options)))
	broadcasterID := strings.TrimSpace(optionString(data.Options, discord.OptionBroadcasterID))

	if login == "" && broadcasterID == "" {
		db.InsertCommandAudit(ctx, invoker, "unlink", "rejected", nil)
		return "⚠️ Provide at least one option. " + unlinkUsage
	}
	if login != "" {
		if err := h.validator.ValidateLogin(login); err != nil {
			db.InsertCommandAudit(ctx, invoker, "unlink", "rejected", map[string]interface{}{"login": login})
			return fmt.Sprintf("⚠️ %q does not look like a Twitch login. %s", login, unlinkUsage)
		}
	}
	if broadcasterID != "" {
		if err := h.validator.ValidateBroadcasterID(broadcasterID); err != nil {
			db.InsertCommandAudit(ctx, invoker, "unlink", "rejected", map[string]interface{}{"broadcaster_id": broadcasterID})
			return fmt.Sprintf("⚠️ %q does not look like a broadcaster ID. %s", broadcasterID, unlinkUsage)
		}
	}

	resp, err := h.admin.Unregister(ctx, admin.UnregisterRequest{
		Login:         login,
		BroadcasterID: broadcasterID,
	})
	if err != nil {
		log.Printf("[COMMAND_ERROR] unlink failed: %v", err)
		h.recordCommand(ctx, invoker, "unlink", false, map[string]interface{}{
			"login":          login,
			"broadcaster_id": broadcasterID,
			"error":          err.Error(),
		})
		return "❌ Unlink failed: " + err.Error()
	}

	// Prefer the ID downstream reports, fall back to the one supplied
	echoed := resp.BroadcasterID.String()
	if echoed == "" {
		echoed = broadcasterID
	}
	if echoed == "" {
		echoed = "unknown"
	}

	h.recordCommand(ctx, invoker, "unlink", true, map[string]interface{}{
		"login":          login,
		"broadcaster_id": echoed,
	})

	return fmt.Sprintf("✅ Unlinked Twitch broadcaster %s.", echoed)
}

// recordCommand emits the security log line, CloudWatch metric, and audit
// row for a dispatched command.
func (h *InteractionHandler) recordCommand(ctx context.Context, invoker, command string, success bool, details map[string]interface{}) {
	if h.securityLogger != nil {
		h.securityLogger.LogCommandExecuted(ctx, invoker, command, success)
	}
	if h.monitor != nil {
		h.monitor.PublishCommandMetric(command, success)
	}
	outcome := "executed"
	if !success {
		outcome = "failed"
	}
	db.InsertCommandAudit(ctx, invoker, command, outcome, details)
}

// optionString returns the first option with the given name whose value is
// a string. Option names are not uniqueness-enforced by the protocol;
// first match wins. No coercion happens here.
func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt == nil || opt.Name != name {
			continue
		}
		if s, ok := opt.Value.(string); ok {
			return s
		}
		return ""
	}
	return ""
}

// loginOption resolves the login option: the deployed name first, then the
// legacy alias from the pre-rename command schema.
func loginOption(opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	if v := optionString(opts, discord.OptionTwitchLogin); v != "" {
		return v
	}
	return optionString(opts, discord.OptionLogin)
}
