package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scout-tui/internal/api"
	"scout-tui/internal/cache"
	"scout-tui/internal/domain"
)

var errFileNotFound = errors.New("file not found")

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect and upload standalone files",
	}
	cmd.AddCommand(newGetFileCmd())
	cmd.AddCommand(newUploadFilesCmd())
	return cmd
}

func newGetFileCmd() *cobra.Command {
	var opts struct {
		Link bool
	}
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a file's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				f, err := cache.Get(ctx, a.cache, cache.K(cache.File, args[0]), cache.Forever, func(ctx context.Context) (domain.FileAsset, error) {
					resp := a.client.GetFile(ctx, args[0])
					if err := resp.Err(); err != nil {
						return domain.FileAsset{}, err
					}
					if resp.Data == nil {
						return domain.FileAsset{}, errFileNotFound
					}
					return *resp.Data, nil
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s  %s\n", f.ID, f.Name)
				fmt.Fprintf(w, "type     %s\n", f.MimeType)
				fmt.Fprintf(w, "size     %s\n", humanize.Bytes(uint64(max(f.SizeBytes, 0))))
				fmt.Fprintf(w, "created  %s by %s\n", humanize.Time(f.CreatedAt.Time), f.CreatedBy.Email)
				if !opts.Link {
					return nil
				}
				signed := a.client.SignedFile(ctx, f.GCSPath)
				if err := signed.Err(); err != nil {
					return fmt.Errorf("sign %s: %w", f.GCSPath, err)
				}
				if signed.Data != nil {
					fmt.Fprintf(w, "link     %s\n", signed.Data.AuthenticatedURL)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&opts.Link, "link", "l", false, "also print a signed download link")
	return cmd
}

func newUploadFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload files without attaching them to a knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				files, closeAll, err := api.OpenUploads(args)
				if err != nil {
					return err
				}
				defer closeAll()

				resp := a.client.Upload(ctx, files)
				if err := resp.Err(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Data)
				return nil
			})
		},
	}
}
