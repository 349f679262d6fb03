package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-media/pkg/simplemedia"
	repopg "github.com/tendant/simple-media/pkg/simplemedia/repo/postgres"
)

// mediaFlags are the editable record fields shared by upload and update
type mediaFlags struct {
	context     string
	name        string
	description string
	author      string
	copyright   string
	flushable   bool
	disabled    bool
}

func (f *mediaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.context, "context", "", "media context (default: default)")
	cmd.Flags().StringVar(&f.name, "name", "", "display name (default: file name)")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.author, "author", "", "author name")
	cmd.Flags().StringVar(&f.copyright, "copyright", "", "copyright notice")
	cmd.Flags().BoolVar(&f.flushable, "cdn-flush", false, "flush the CDN entry after writing")
	cmd.Flags().BoolVar(&f.disabled, "disabled", false, "store the record disabled")
}

// apply copies the flags the user set onto media
func (f *mediaFlags) apply(cmd *cobra.Command, media *simplemedia.Media) {
	changed := cmd.Flags().Changed
	if changed("context") {
		media.Context = f.context
	}
	if changed("name") {
		media.Name = f.name
	}
	if changed("description") {
		media.Description = f.description
	}
	if changed("author") {
		media.AuthorName = f.author
	}
	if changed("copyright") {
		media.Copyright = f.copyright
	}
	if changed("cdn-flush") {
		media.CDNIsFlushable = f.flushable
	}
	if changed("disabled") {
		media.Enabled = !f.disabled
	}
}

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	var flags mediaFlags

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Create a media record from a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			media := &simplemedia.Media{
				Enabled:       true,
				BinaryContent: simplemedia.PathContent(args[0]),
			}
			flags.apply(cmd, media)

			if err := rt.Manager.Create(cmd.Context(), media); err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Upload successful!\n")
			printMedia(cmd.OutOrStdout(), rt.Provider, media)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	var flags mediaFlags
	var filePath string

	cmd := &cobra.Command{
		Use:   "update <media-id>",
		Short: "Update a media record, optionally replacing its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid media ID: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			media, err := rt.Manager.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			mediaContext := media.Context
			flags.apply(cmd, media)
			media.Context = mediaContext
			if filePath != "" {
				media.BinaryContent = simplemedia.PathContent(filePath)
			}

			if err := rt.Manager.Update(cmd.Context(), media); err != nil {
				return fmt.Errorf("update failed: %w", err)
			}

			printMedia(cmd.OutOrStdout(), rt.Provider, media)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "replacement file")
	return cmd
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <media-id>",
		Short: "Show a media record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid media ID: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			media, err := rt.Manager.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printMedia(cmd.OutOrStdout(), rt.Provider, media)
			return nil
		},
	}
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var mediaContext string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List media records",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			records, err := rt.Manager.List(cmd.Context(), mediaContext)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No media found.")
				return nil
			}
			fmt.Fprintf(out, "%-36s  %-12s  %-10s  %s\n", "ID", "CONTEXT", "SIZE", "NAME")
			for _, media := range records {
				fmt.Fprintf(out, "%-36s  %-12s  %-10d  %s\n", media.ID, media.Context, media.Size, media.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaContext, "context", "", "only list records of this context")
	return cmd
}

// NewDownloadCommand creates the download command
func NewDownloadCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "download <media-id>",
		Short: "Download the file of a media record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid media ID: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			reader, media, err := rt.Manager.Download(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}
			defer reader.Close()

			if outputPath == "" {
				outputPath = filepath.Base(media.Name)
			}
			out, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()

			n, err := io.Copy(out, reader)
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", n, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default: media name)")
	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <media-id>",
		Short: "Delete a media record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid media ID: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Manager.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

// NewURLCommand creates the url command
func NewURLCommand() *cobra.Command {
	var format string
	var private bool

	cmd := &cobra.Command{
		Use:   "url <media-id>",
		Short: "Print the URL of a media record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid media ID: %w", err)
			}

			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			media, err := rt.Manager.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			url := rt.Provider.PublicURL(*media, format)
			if private {
				if url, err = rt.Provider.PrivateURL(*media, format); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "reference", "media format")
	cmd.Flags().BoolVar(&private, "private", false, "print the private URL")
	return cmd
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseType != "postgres" {
				return fmt.Errorf("migrations require a postgres DATABASE_URL, got %q", cfg.DatabaseType)
			}

			if err := repopg.Migrate(cmd.Context(), cfg.DatabaseURL, cfg.DBSchema, newLogger(cmd)); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema %s is up to date\n", cfg.DBSchema)
			return nil
		},
	}
}

func printMedia(w io.Writer, provider *simplemedia.FileProvider, media *simplemedia.Media) {
	fmt.Fprintf(w, "Media ID: %s\n", media.ID)
	fmt.Fprintf(w, "Context: %s\n", media.Context)
	fmt.Fprintf(w, "Name: %s\n", media.Name)
	fmt.Fprintf(w, "Status: %s\n", media.ProviderStatus)
	if media.ProviderReference == "" {
		return
	}
	fmt.Fprintf(w, "Reference: %s\n", media.ProviderReference)
	fmt.Fprintf(w, "Content type: %s\n", media.ContentType)
	fmt.Fprintf(w, "Size: %d\n", media.Size)
	fmt.Fprintf(w, "Path: %s\n", provider.AbsolutePath(*media))
}
