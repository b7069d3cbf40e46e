package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const defaultRelatedFormat = "{{.Position}}. {{.Name}} ({{.ID}})"

// relatedCmd represents the related command
var relatedCmd = &cobra.Command{
	Use:   "related <artist-id>",
	Short: "List the related artists of an artist",
	Long: `Resolve the related artists of a Spotify artist the same way a game turn
does: the local cache races Spotify, and Spotify's answer is written back
to the cache.

The output format is a Go template applied to each artist.
Available fields: .Position, .ID, .Name, .ImageURL`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func init() {
	rootCmd.AddCommand(relatedCmd)

	relatedCmd.Flags().StringP("format", "f", defaultRelatedFormat, "Output format template")
	relatedCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled)")
}

// relatedLine is the template data for one related artist
type relatedLine struct {
	Position int
	store.Artist
}

func runRelated(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	width, _ := cmd.Flags().GetInt("width")

	tmpl, err := template.New("output").Parse(format)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
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

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Spotify.RequestTimeout)
	defer cancel()

	related, err := svc.resolver.Resolve(ctx, strings.TrimSpace(args[0]), "")
	if err != nil {
		return fmt.Errorf("failed to resolve related artists: %w", err)
	}

	for i, artist := range related {
		output, err := formatArtist(tmpl, relatedLine{Position: i + 1, Artist: artist})
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Println(padToWidth(output, width))
	}

	return nil
}

// formatArtist applies the template to one related artist
func formatArtist(tmpl *template.Template, line relatedLine) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, line); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	switch {
	case currentWidth > width:
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		result := runewidth.Truncate(text, width-ellipsisWidth, "") + ellipsis

		// Wide runes can leave the result a column short
		if resultWidth := runewidth.StringWidth(result); resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		}
		return result
	case currentWidth < width:
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}
