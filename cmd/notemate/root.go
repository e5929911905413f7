package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/notemate/notemate/internal/client"
)

var (
	verbose   bool
	serverURL string
	dataDir   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notemate",
	Short: "Terminal client for the NoteMate notes service",
	Long: `notemate keeps a local cache of your notes and syncs it with a
NoteMate server whenever one is reachable. Offline edits win: they land in
the cache immediately and flow to the server best-effort.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOrDefault("NOTEMATE_SERVER", "http://localhost:8080"), "NoteMate server base URL")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for the durable note cache (default ~/.notemate)")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durableDir() string {
	if dataDir != "" {
		return dataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notemate"
	}
	return filepath.Join(home, ".notemate")
}

// sessionDir lives under the OS temp dir, so auth material disappears on
// reboot - the CLI analogue of a browser session.
func sessionDir() string {
	return filepath.Join(os.TempDir(), "notemate-session")
}

func newStore() *client.Store {
	return client.NewStore(durableDir(), sessionDir())
}

func newReconciler() (*client.Store, *client.Reconciler) {
	store := newStore()
	remote := client.NewAPIClient(serverURL)
	return store, client.NewReconciler(store, remote, client.DefaultSeed)
}

func newAPIClient(store *client.Store) *client.APIClient {
	remote := client.NewAPIClient(serverURL)
	var token string
	store.Get(client.ScopeSession, client.KeyAuthToken, &token)
	remote.SetToken(token)
	return remote
}
