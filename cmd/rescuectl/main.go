package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Albertoimpl/animal-rescue/internal/app"
	"github.com/Albertoimpl/animal-rescue/internal/config"
	"github.com/Albertoimpl/animal-rescue/internal/logger"
	"github.com/Albertoimpl/animal-rescue/internal/storage"
	"github.com/Albertoimpl/animal-rescue/pkg/animalrescue"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session carries what every subcommand needs once the root has run.
type session struct {
	baseURL string
	cookie  string

	cfg    *config.Config
	store  storage.Store
	client *animalrescue.Client
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:           "rescuectl",
		Short:         "Command line client for the animal rescue backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&s.baseURL, "base-url", "", "Backend base URL (defaults to BACKEND_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&s.cookie, "session", "", "Session cookie value (defaults to SESSION_COOKIE)")

	rootCmd.AddCommand(newAnimalsCmd(s))
	rootCmd.AddCommand(newWhoamiCmd(s))
	rootCmd.AddCommand(newAdoptionCmd(s))

	return rootCmd
}

func (s *session) open(cmd *cobra.Command) error {
	// cobra checks required flags after the persistent hooks; fail before opening anything.
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BackendBaseURL = s.baseURL
	}
	if cmd.Flags().Changed("session") {
		cfg.SessionCookie = s.cookie
	}
	s.cfg = cfg

	opts := app.ClientOptions{
		BaseURL: cfg.BackendBaseURL,
		Session: cfg.SessionCookie,
	}
	if cfg.WithCredentials && cfg.CookieStore == storage.TypeBBolt {
		store, err := storage.NewStore(storage.TypeBBolt, cfg.BBoltPath, storage.Options{
			EventTTL:        cfg.StorageTTL,
			CleanupInterval: cfg.StorageCleanupInterval,
		})
		if err != nil {
			return fmt.Errorf("open cookie store: %w", err)
		}
		s.store = store
		opts.Cookies = store
	}

	client, err := app.NewShelterClient(cfg, opts)
	if err != nil {
		_ = s.close()
		return err
	}
	s.client = client

	logger.DebugObj("rescuectl ready", "client", map[string]any{
		"base_url":         client.BaseURL(),
		"with_credentials": cfg.WithCredentials,
		"cookie_store":     cfg.CookieStore,
	})
	return nil
}

// run wraps a subcommand body so the cookie store is released even when it fails.
func (s *session) run(fn func(cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer func() {
			if err := s.close(); err != nil {
				logger.WarnObj("cookie store close failed", "error", err)
			}
		}()
		return fn(cmd)
	}
}

func (s *session) close() error {
	defer logger.Close()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}
