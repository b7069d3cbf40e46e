package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/spf13/cobra"
)

var searchCreate bool

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <name>...",
	Short: "Look up artists on Spotify by name",
	Long: `Resolve artist names to Spotify artists, one request per second.

Names without a match are skipped. With --create the matches are added to
the local catalog so they can appear as start and end artists.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchCreate, "create", false, "add matched artists to the catalog")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Log.File, cfg.Log.Level)

	svc, err := openServices(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	artists, err := svc.game.SearchArtists(cmd.Context(), args)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, a := range artists {
		fmt.Fprintf(w, "%s\t%s\n", a.ID, a.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !searchCreate || len(artists) == 0 {
		return nil
	}

	// Artists without a picture cannot be stored
	withImages := make([]store.Artist, 0, len(artists))
	for _, a := range artists {
		if a.ImageURL == "" {
			fmt.Fprintf(os.Stderr, "Skipping %s: no image\n", a.Name)
			continue
		}
		withImages = append(withImages, a)
	}
	if len(withImages) == 0 {
		return nil
	}

	count, err := svc.game.BulkCreateArtists(cmd.Context(), withImages)
	if err != nil {
		return err
	}

	fmt.Printf("\n✓ Added %d new artists to the catalog\n", count)
	return nil
}
