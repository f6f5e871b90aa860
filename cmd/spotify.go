package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/desertthunder/spotkit/internal/formatter"
	"github.com/desertthunder/spotkit/internal/models"
	"github.com/desertthunder/spotkit/internal/services"
	"github.com/desertthunder/spotkit/internal/shared"
	"github.com/desertthunder/spotkit/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Decode decodes a saved response body and prints it.
//
// Decode failures surface as the [models.DecodeError] with the path of the offending value.
func (r *Runner) Decode(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: FILE is required", shared.ErrMissingArgument)
	}
	decode, err := lookupDecoder(cmd.String("type"))
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	data, err := shared.ReadJSONFile(path)
	if err != nil {
		return err
	}

	value, err := decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return formatter.Write(r.output, format, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), value)
}

// Get performs an authorized GET and prints the body, decoded when --type is given.
func (r *Runner) Get(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: PATH is required", shared.ErrMissingArgument)
	}

	var decode decoder
	if name := cmd.String("type"); name != "" {
		var err error
		if decode, err = lookupDecoder(name); err != nil {
			return err
		}
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := conn.spotify.GetRaw(ctx, path)
	if err != nil {
		return err
	}
	if resp.NoContent() {
		return r.writePlain("(no content)\n")
	}

	if decode == nil {
		if resp.IsJSON {
			return r.writePlain("%s\n", resp.Indent())
		}
		return r.writePlain("%s\n", resp.Body)
	}

	value, err := decode(resp.Body)
	if err != nil {
		return err
	}
	return formatter.Write(r.output, format, path, value)
}

// Playlists lists the current user's playlists, following pagination up to --limit.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	r.logger.Debug("listing playlists", "limit", limit)

	first, err := conn.spotify.UserPlaylists(ctx, services.MaxLimit, 0)
	if err != nil {
		return err
	}
	playlists, err := services.AllItems(ctx, conn.spotify, first, models.DecodePlaylist, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		if p == nil {
			continue
		}
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		if p.Tracks != nil {
			r.writePlain("   Tracks: %d\n", p.Tracks.Total)
		}
		if p.Public != nil && *p.Public {
			r.writePlain("   Visibility: Public\n")
		} else {
			r.writePlain("   Visibility: Private\n")
		}
		r.writePlain("\n")
	}
	return nil
}

// Export writes each playlist to a file and prints progress while the workers run.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one PLAYLIST_ID is required", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	progress := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progress {
			if update.Phase == tasks.ExportPlaylist {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	exporter := tasks.NewExporter(conn.spotify, r.logger)
	result, err := exporter.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	})
	close(progress)
	<-printed
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		return fmt.Errorf("%w: %d of %d playlists failed", shared.ErrAPIRequest, result.FailedExports, result.TotalPlaylists)
	}
	return nil
}
