package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk add artists to the catalog",
	Long: `Add artists from a JSON file to the local catalog.

The file holds either an array of artists or an object with an "artists"
array, each entry shaped as {"id", "name", "imageUrl"}. Use "-" to read
from stdin. Artists already in the catalog are skipped. If any entry is
invalid nothing is imported and every invalid entry is listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	artists, err := readArtists(args[0])
	if err != nil {
		return err
	}

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

	count, err := svc.game.BulkCreateArtists(cmd.Context(), artists)
	if err != nil {
		var validation *game.ValidationError
		if errors.As(err, &validation) {
			for _, inv := range validation.Invalid {
				fmt.Fprintf(os.Stderr, "  entry %d: %+v\n", inv.Index, inv.Artist)
			}
		}
		return err
	}

	fmt.Printf("✓ Imported %d new artists (%d skipped)\n", count, int64(len(artists))-count)
	return nil
}

// readArtists decodes an artist list from path, or stdin for "-"
func readArtists(path string) ([]store.Artist, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return decodeArtists(data)
}

func decodeArtists(data []byte) ([]store.Artist, error) {
	data = bytes.TrimSpace(data)

	var artists []store.Artist
	if bytes.HasPrefix(data, []byte("[")) {
		if err := json.Unmarshal(data, &artists); err != nil {
			return nil, fmt.Errorf("failed to parse artists: %w", err)
		}
		return artists, nil
	}

	var wrapped struct {
		Artists []store.Artist `json:"artists"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse artists: %w", err)
	}
	return wrapped.Artists, nil
}
