package handlers

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/yourusername/linkbot/internal/db"
	"github.com/yourusername/linkbot/internal/services/admin"
	"github.com/yourusername/linkbot/internal/services/discord"
	"github.com/yourusername/linkbot/internal/services/logging"
	"github.com/yourusername/linkbot/internal/services/monitoring"
	"github.com/yourusername/linkbot/internal/validation"
)

// InteractionHandler serves the Discord interactions webhook.
// All state it reads is fixed at construction; request handling never
// mutates it, so one handler serves concurrent requests without locking.
type InteractionHandler struct {
	publicKey      ed25519.PublicKey
	appID          string
	allowedUserIDs map[string]struct{}
	admin          *admin.Client
	securityLogger *logging.SecurityLogger
	monitor        *monitoring.CloudWatchMonitor
	validator      *validation.Validator
}

// NewInteractionHandler creates the interaction handler.
// The allow-list and admin client come from the centralized config.
func NewInteractionHandler(
	publicKey ed25519.PublicKey,
	appID string,
	allowedUserIDs []string,
	adminClient *admin.Client,
	securityLogger *logging.SecurityLogger,
	monitor *monitoring.CloudWatchMonitor,
) *InteractionHandler {
	allowed := make(map[string]struct{}, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = struct{}{}
	}
	return &InteractionHandler{
		publicKey:      publicKey,
		appID:          appID,
		allowedUserIDs: allowed,
		admin:          adminClient,
		securityLogger: securityLogger,
		monitor:        monitor,
		validator:      validation.NewValidator(),
	}
}

// Liveness serves GET / with a plain-text status line.
func (h *InteractionHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "linkbot interaction endpoint for application %s\n", h.appID)
}

// HandleInteraction serves POST / (the Discord interactions webhook).
// Signature verification runs before anything parses the body; a request
// that does not verify never reaches authorization or dispatch.
func (h *InteractionHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	// Limit request body size to prevent abuse
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024) // 1MB max

	if !discordgo.VerifyInteraction(r, h.publicKey) {
		log.Printf("[INTERACTION_ERROR] Invalid signature from %s", r.RemoteAddr)
		if h.securityLogger != nil {
			h.securityLogger.LogSignatureFailure(r.Context(), r.RemoteAddr)
		}
		if h.monitor != nil {
			h.monitor.PublishSecurityMetric("SignatureFailure", false)
		}
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	// VerifyInteraction leaves the body re-readable
	var interaction discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		log.Printf("[INTERACTION_ERROR] Invalid JSON: %v", err)
		writeError(w, http.StatusBadRequest, "invalid interaction payload")
		return
	}

	switch interaction.Type {
	case discordgo.InteractionPing:
		// Discord's liveness handshake. Answered for anything with a valid
		// signature; no authorization applies.
		writeResponse(w, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})

	case discordgo.InteractionApplicationCommand:
		h.handleCommand(w, r, &interaction)

	default:
		writeError(w, http.StatusBadRequest, "unsupported interaction type")
	}
}

// handleCommand authorizes the invoker, then dispatches by command.
// Every path through here ends in an interaction response envelope.
func (h *InteractionHandler) handleCommand(w http.ResponseWriter, r *http.Request, interaction *discordgo.Interaction) {
	ctx := r.Context()
	invoker := invokerID(interaction)
	data := interaction.ApplicationCommandData()

	if _, allowed := h.allowedUserIDs[invoker]; !allowed {
		// Deliberately a normal chat reply, not an HTTP error: unauthorized
		// attempts stay visible in the channel.
		if h.securityLogger != nil {
			h.securityLogger.LogUnauthorizedCommand(ctx, invoker, data.Name)
		}
		if h.monitor != nil {
			h.monitor.PublishSecurityMetric("UnauthorizedCommand", false)
		}
		db.InsertCommandAudit(ctx, invoker, data.Name, "denied", nil)
		respondMessage(w, fmt.Sprintf("⛔ <@%s> is not authorized to use this command (user id: %s).", invoker, invoker))
		return
	}

	cmd, ok := discord.ParseCommand(data.Name)
	if !ok {
		log.Printf("[INTERACTION_WARN] Unknown command %q from user %s", data.Name, invoker)
		writeError(w, http.StatusBadRequest, "unknown command")
		return
	}

	var reply string
	switch cmd {
	case discord.CommandLink:
		reply = h.handleLink(ctx, invoker, data)
	case discord.CommandUnlink:
		reply = h.handleUnlink(ctx, invoker, data)
	}
	respondMessage(w, reply)
}

// invokerID extracts the invoking user's ID, preferring the guild member
// identity over the direct-message user identity.
func invokerID(interaction *discordgo.Interaction) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

func writeResponse(w http.ResponseWriter, resp *discordgo.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[INTERACTION_ERROR] Failed to encode response: %v", err)
	}
}

// respondMessage sends a CHANNEL_MESSAGE_WITH_SOURCE reply with plain-text content.
func respondMessage(w http.ResponseWriter, content string) {
	writeResponse(w, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
