package studiocmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lehigh-university-libraries/asciistudio/internal/interpreter"
	"github.com/lehigh-university-libraries/asciistudio/internal/storage"
)

// NewInspectCmd creates the session inspect command
func NewInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <session>",
		Short: "Restore a saved session and print its overview",
		Long: `Restore a saved session and print the same overview the studio's 'info'
command shows. Every image in the session is decoded again, so this also checks
that the session can still be loaded.`,
		Example: `  asciistudio session inspect s1.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Inspect(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

// NewExportCmd creates the session export command
func NewExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <session>",
		Short: "Convert a saved session to JSON, YAML or Parquet",
		Long: `Convert a saved session document to another format. The format is picked
from the extension of --output: .yaml/.yml, .parquet, anything else is JSON.
Images are not decoded.`,
		Example: `  # One row per image, for loading into a dataframe
  asciistudio session export s1.json --output s1.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Export(args[0], output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (a *App) Inspect(ctx context.Context, path string, out io.Writer) error {
	registry, err := a.NewRegistry()
	if err != nil {
		return err
	}
	res, err := registry.Restore(ctx, path)
	if err != nil {
		return err
	}
	if res.MissingCurrent != "" {
		fmt.Fprintln(out, interpreter.MissingCurrentMessage)
	}
	interpreter.WriteInfo(out, registry.Info())
	return nil
}

func (a *App) Export(path, output string, out io.Writer) error {
	doc, err := storage.Read(storage.SessionPath(path))
	if err != nil {
		return err
	}
	if err := storage.Write(output, doc); err != nil {
		return err
	}

	a.Log.Info("Exported session",
		zap.String("from", path),
		zap.String("to", output),
		zap.String("format", string(storage.FormatFor(output))))
	fmt.Fprintf(out, "Exported %d images to %s\n", len(doc.Members), output)
	return nil
}
