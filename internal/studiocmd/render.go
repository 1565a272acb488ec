package studiocmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lehigh-university-libraries/asciistudio/internal/images"
	"github.com/lehigh-university-libraries/asciistudio/internal/session"
)

// RenderOptions are the flags of the one-shot render command. Zero values
// mean "not given".
type RenderOptions struct {
	Width      int
	Height     int
	Brightness float64
	Contrast   float64
	Output     string
}

// NewRenderCmd creates the render command
func NewRenderCmd(app *App) *cobra.Command {
	var opts RenderOptions

	cmd := &cobra.Command{
		Use:   "render <image>",
		Short: "Render a single image as ASCII art",
		Long: `Render one image without entering the studio.

The image is loaded the same way 'load image' does, so the default width is 50
characters with the height derived from the aspect ratio. Passing only one of
--width or --height derives the other; passing both uses them as-is.`,
		Example: `  # Print a 50 column rendering
  asciistudio render photo.png

  # Brighter, 120 columns wide, written to photo.txt
  asciistudio render photo.png --width 120 --brightness 1.2 --output photo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Render(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.Width, "width", 0, "Target width in characters")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "Target height in characters")
	cmd.Flags().Float64Var(&opts.Brightness, "brightness", 1, "Brightness factor relative to the original")
	cmd.Flags().Float64Var(&opts.Contrast, "contrast", 1, "Contrast factor relative to the original")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the rendering to this file instead of stdout (.txt is added when there is no extension)")

	return cmd
}

func (a *App) checkDimension(name string, value int) error {
	if value == 0 {
		return nil
	}
	if value < a.Config.Limits.MinDimension || value > a.Config.Limits.MaxDimension {
		return fmt.Errorf("--%s must be between %d and %d, got %d",
			name, a.Config.Limits.MinDimension, a.Config.Limits.MaxDimension, value)
	}
	return nil
}

// Render loads path into a fresh registry, applies opts and writes the result.
func (a *App) Render(ctx context.Context, path string, opts RenderOptions, out io.Writer) error {
	if err := a.checkDimension("width", opts.Width); err != nil {
		return err
	}
	if err := a.checkDimension("height", opts.Height); err != nil {
		return err
	}

	registry, err := a.NewRegistry()
	if err != nil {
		return err
	}
	if _, err := registry.Load(ctx, path, ""); err != nil {
		return err
	}

	if opts.Width > 0 || opts.Height > 0 {
		if err := registry.SetSize(session.CurrentName, opts.Width, opts.Height); err != nil {
			return err
		}
	}
	if opts.Brightness != 1 {
		if err := registry.SetEnhance(session.CurrentName, images.Brightness, opts.Brightness); err != nil {
			return err
		}
	}
	if opts.Contrast != 1 {
		if err := registry.SetEnhance(session.CurrentName, images.Contrast, opts.Contrast); err != nil {
			return err
		}
	}

	if opts.Output != "" {
		written, err := registry.RenderTo(session.CurrentName, opts.Output)
		if err != nil {
			return err
		}
		a.Log.Info("Rendering written", zap.String("image", path), zap.String("output", written))
		fmt.Fprintf(out, "Rendered %s to %s\n", path, written)
		return nil
	}

	lines, err := registry.Render(session.CurrentName)
	if err != nil {
		return err
	}
	for line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
