package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"persona-chat/internal/app"
	"persona-chat/internal/chat"
	"persona-chat/internal/config"
	"persona-chat/internal/console"
	"persona-chat/internal/llm"
	"persona-chat/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var (
		dir     string
		model   string
		noStore bool
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:   "chat",
		Short: "Console chat with selectable personas backed by an LLM",
		Long: "An interactive console assistant. Pick a persona, chat until the exit cue,\n" +
			"and the conversation is summarized and stored as a replayable transcript\n" +
			"that a later run can resume.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if err := godotenv.Load(".env"); err != nil {
				log.Debug().Err(err).Msg(".env file not found")
			}

			cfg, err := config.New()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.ConversationsDir = dir
			}
			if model != "" {
				cfg.OpenAIModel = model
			}
			if noStore {
				cfg.StoreConversation = false
			}

			factory := &llm.Factory{
				OpenaiAPIKey:       cfg.OpenAIAPIKey,
				OpenaiBaseURL:      cfg.OpenAIBaseURL,
				OpenRouterReferrer: cfg.OpenRouterReferrer,
				OpenRouterTitle:    cfg.OpenRouterTitle,
				YandexOAuthToken:   cfg.YandexOAuthToken,
				YandexFolderID:     cfg.YandexFolderID,
			}
			client, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
			if err != nil {
				return err
			}

			a := &app.App{
				Console:           console.New(os.Stdin, os.Stdout),
				Client:            client,
				Store:             store.New(cfg.ConversationsDir),
				Catalog:           chat.NewCatalog(),
				StoreConversation: cfg.StoreConversation,
				RequestTimeout:    cfg.RequestTimeout,
			}
			return a.Run(context.Background())
		},
	}

	rootCmd.Flags().StringVar(&dir, "dir", "", "directory for stored conversations (overrides CONVERSATIONS_DIR)")
	rootCmd.Flags().StringVar(&model, "model", "", "model id for the openai provider (overrides OPENAI_MODEL)")
	rootCmd.Flags().BoolVar(&noStore, "no-store", false, "do not store the conversation on exit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("chat failed")
	}
}
