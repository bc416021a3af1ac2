package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mwantia/wind/internal/agent"
	config "github.com/mwantia/wind/internal/config/server"
	"github.com/mwantia/wind/pkg/gallery"
	"github.com/mwantia/wind/pkg/log"
)

func NewGalleryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Ingest and delete photo galleries",
	}

	cmd.AddCommand(newGalleryIngestCommand())
	cmd.AddCommand(newGalleryDeleteCommand())

	return cmd
}

func newGalleryIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <archive.zip>",
		Short: "Import every image of a zip archive into a gallery",
		Long: `Import every image of a zip archive into a gallery.

Members are processed in name order and named "<title> 01", "<title> 02", ...
Members that are not valid images are skipped; a photo whose name already
exists is reused instead of stored twice.`,
		Args: cobra.ExactArgs(1),
		RunE: withServices(func(ctx context.Context, cmd *cobra.Command, args []string, svc *agent.Services) error {
			title, _ := cmd.Flags().GetString("title")
			id, _ := cmd.Flags().GetUint("gallery")

			var galleryID *uint
			if id != 0 {
				galleryID = &id
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open archive: %w", err)
			}
			defer f.Close()

			report, err := svc.Gallery.Ingest(ctx, f, galleryID, title)
			var cleanup *gallery.CleanupError
			if err != nil && !(errors.As(err, &cleanup) && report != nil) {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range report.Members {
				switch m.Status {
				case gallery.StatusCreated, gallery.StatusReused:
					fmt.Fprintf(out, "%-8s %s -> %q\n", m.Status, m.Name, m.DisplayName)
				case gallery.StatusSkipped:
					fmt.Fprintf(out, "%-8s %s: %v\n", m.Status, m.Name, m.Err)
				default:
					fmt.Fprintf(out, "%-8s %s\n", m.Status, m.Name)
				}
			}
			fmt.Fprintf(out, "Gallery %d (%q): %d created, %d reused, %d skipped\n",
				report.Gallery.ID, report.Gallery.Title,
				len(report.Created()), len(report.Reused()), len(report.Skipped()))

			return err
		}),
	}

	cmd.Flags().String("title", "", "base name for the gallery and its photos")
	cmd.Flags().Uint("gallery", 0, "add to an existing gallery instead of creating one")
	cmd.MarkFlagRequired("title")

	return cmd
}

func newGalleryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a gallery and the photos only it contains",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(ctx context.Context, cmd *cobra.Command, args []string, svc *agent.Services) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid gallery id %q", args[0])
			}

			report, err := svc.Gallery.DeleteGallery(ctx, uint(id))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted gallery %d: %d photos removed, %d detached\n",
				report.GalleryID, len(report.Deleted), len(report.Detached))
			return nil
		}),
	}
}

func withServices(fn func(ctx context.Context, cmd *cobra.Command, args []string, svc *agent.Services) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServerConfig()
		if err != nil {
			return fmt.Errorf("failed to load server configuration: %w", err)
		}

		logger := log.NewLoggerService("wind", cfg.Log)
		if c, ok := logger.(io.Closer); ok {
			defer c.Close()
		}

		ctx := cmd.Context()
		svc, err := agent.NewServices(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		return fn(ctx, cmd, args, svc)
	}
}
