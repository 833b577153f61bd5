// Command register pushes the slash-command schema to Discord.
// Run it once per application (or per guild with -guild) after changing
// the command definitions; the webhook service itself never registers
// commands.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/yourusername/linkbot/internal/config"
	discordcmd "github.com/yourusername/linkbot/internal/services/discord"
	"github.com/yourusername/linkbot/internal/services/encryption"
)

func main() {
	encryptToken := flag.Bool("encrypt-token", false, "encrypt the configured admin API token with KMS and print the result")
	guildID := flag.String("guild", "", "register commands for a single guild instead of globally")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *encryptToken {
		printEncryptedToken(cfg)
		return
	}

	if cfg.DiscordAppID == "" || cfg.DiscordBotToken == "" {
		log.Fatal("DISCORD_APP_ID and DISCORD_BOT_TOKEN are required")
	}

	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	registered, err := session.ApplicationCommandBulkOverwrite(cfg.DiscordAppID, *guildID, discordcmd.Definitions())
	if err != nil {
		log.Fatalf("Failed to register commands: %v", err)
	}

	for _, cmd := range registered {
		log.Printf("[REGISTER] Registered /%s (id %s)", cmd.Name, cmd.ID)
	}
}

// printEncryptedToken encrypts the plaintext admin token from the
// environment so the ciphertext can be stored in deployment config.
func printEncryptedToken(cfg *config.Config) {
	if cfg.AdminAPIToken == "" {
		log.Fatal("ADMIN_API_TOKEN is not set")
	}
	if encryption.IsEncrypted(cfg.AdminAPIToken) {
		log.Fatal("ADMIN_API_TOKEN is already encrypted")
	}

	svc, err := encryption.NewService(cfg.KMSKeyID)
	if err != nil {
		log.Fatalf("Failed to init encryption service: %v", err)
	}

	ciphertext, err := svc.Encrypt(cfg.AdminAPIToken)
	if err != nil {
		log.Fatalf("Failed to encrypt token: %v", err)
	}

	fmt.Println(ciphertext)
}
