// Package interpreter runs the studio's line-oriented command loop on top of
// a session registry.
package interpreter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lehigh-university-libraries/asciistudio/internal/config"
	"github.com/lehigh-university-libraries/asciistudio/internal/images"
	"github.com/lehigh-university-libraries/asciistudio/internal/session"
)

// Interpreter parses commands, validates their arguments and applies them to
// a registry. Every failure is reported on out and the loop carries on.
type Interpreter struct {
	registry *session.Registry
	limits   config.LimitsConfig
	prompt   string
	out      io.Writer
	log      *zap.Logger
}

func New(registry *session.Registry, cfg *config.Config, out io.Writer, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{
		registry: registry,
		limits:   cfg.Limits,
		prompt:   cfg.Prompt,
		out:      out,
		log:      log,
	}
}

// Run prints the welcome banner and executes lines from in until quit, end
// of input or ctx cancellation.
func (it *Interpreter) Run(ctx context.Context, in io.Reader) error {
	it.println(welcome)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(it.out, it.prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read command: %w", err)
			}
			it.println("")
			it.println("Ok bye!")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if it.Execute(ctx, scanner.Text()) {
			return nil
		}
	}
}

// Execute runs a single command line and reports whether it was quit.
// Command keywords are case-insensitive; file names and aliases are not.
func (it *Interpreter) Execute(ctx context.Context, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		it.println("No command given. Please try again")
		return false
	}

	cmd := strings.ToLower(args[0])
	it.log.Debug("Executing command", zap.String("command", cmd), zap.Int("args", len(args)))

	switch cmd {
	case "render", "set", "info":
		if it.registry.Len() == 0 {
			it.println(noImages)
			return false
		}
	}

	switch cmd {
	case "load":
		it.load(ctx, args)
	case "help":
		fmt.Fprint(it.out, helpText)
	case "info":
		WriteInfo(it.out, it.registry.Info())
	case "render":
		it.render(args)
	case "save":
		it.save(args)
	case "set":
		it.set(args)
	case "quit":
		it.println("Ok bye!")
		return true
	default:
		it.println("Invalid command given")
	}
	return false
}

func (it *Interpreter) println(s string) {
	fmt.Fprintln(it.out, s)
}

func (it *Interpreter) usage(cmd, msg string) {
	if msg != "" {
		msg += " "
	}
	fmt.Fprintf(it.out, "Invalid %s command. %sIf you need additional help. Type 'help'\n", cmd, msg)
}

func (it *Interpreter) badArgs(cmd string) {
	it.usage(cmd, "Invalid number of arguments provided.")
}

func keyword(arg, want string) bool {
	return strings.EqualFold(arg, want)
}

func (it *Interpreter) load(ctx context.Context, args []string) {
	if len(args) != 3 && len(args) != 5 {
		it.badArgs("load")
		return
	}

	switch {
	case keyword(args[1], "image"):
		it.loadImage(ctx, args)
	case keyword(args[1], "session") && len(args) == 3:
		it.loadSession(ctx, args[2])
	case keyword(args[1], "session"):
		it.badArgs("load")
	default:
		it.usage("load", "Use 'load image' or 'load session'.")
	}
}

func (it *Interpreter) loadImage(ctx context.Context, args []string) {
	alias := ""
	if len(args) == 5 {
		if !keyword(args[3], "as") {
			it.usage("load", "Expected 'load image <filename> as <alias>'.")
			return
		}
		alias = args[4]
	}

	path := args[2]
	if _, err := it.registry.Load(ctx, path, alias); err != nil {
		it.log.Warn("Failed to load image", zap.String("path", path), zap.Error(err))
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, images.ErrRemoteNotFound) {
			fmt.Fprintf(it.out, "No image was found with the filename: %s. Please try again\n", path)
			return
		}
		fmt.Fprintf(it.out, "Could not load the image %s: %v\n", path, err)
	}
}

func (it *Interpreter) loadSession(ctx context.Context, path string) {
	res, err := it.registry.Restore(ctx, path)
	if err == nil {
		if res.MissingCurrent != "" {
			fmt.Fprintln(it.out, MissingCurrentMessage)
		}
		return
	}

	it.log.Warn("Failed to load session", zap.String("path", path), zap.Error(err))
	switch {
	case errors.Is(err, session.ErrNotFound):
		fmt.Fprintf(it.out, "Could not restore the session '%s': %v\n", path, err)
	case errors.Is(err, session.ErrIOFailure) && errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(it.out, "Session file '%s' not found. Please provide a valid filename.\n", path)
	case errors.Is(err, session.ErrMalformedSession):
		fmt.Fprintf(it.out, "Error decoding the session file '%s'. The file might be corrupted.\n", path)
	default:
		fmt.Fprintf(it.out, "An error occurred while loading the session file '%s': %v\n", path, err)
	}
}

func (it *Interpreter) render(args []string) {
	var err error
	switch {
	case len(args) == 1:
		err = it.printRender("")
	case len(args) == 2:
		err = it.printRender(args[1])
	case len(args) == 4 && keyword(args[2], "to"):
		var path string
		if path, err = it.registry.RenderTo(args[1], args[3]); err == nil {
			fmt.Fprintf(it.out, "Rendered %s to %s\n", args[1], path)
		}
	default:
		it.usage("render", "")
		return
	}
	if err != nil {
		fmt.Fprintln(it.out, err)
	}
}

func (it *Interpreter) printRender(name string) error {
	lines, err := it.registry.Render(name)
	if err != nil {
		return err
	}
	for line := range lines {
		it.println(line)
	}
	return nil
}

func (it *Interpreter) save(args []string) {
	if len(args) != 4 {
		it.badArgs("save")
		return
	}
	if !keyword(args[1], "session") || !keyword(args[2], "as") {
		it.usage("save", "Expected 'save session as <filename>'.")
		return
	}

	path, err := it.registry.Save(args[3])
	if err != nil {
		it.log.Error("Failed to save session", zap.String("path", args[3]), zap.Error(err))
		fmt.Fprintf(it.out, "An error occurred while saving the session: %v\n", err)
		return
	}
	fmt.Fprintf(it.out, "Session saved to %s\n", path)
}

func (it *Interpreter) set(args []string) {
	if len(args) != 4 {
		it.badArgs("set")
		return
	}

	name, attribute := args[1], strings.ToLower(args[2])
	switch attribute {
	case "width", "height", "brightness", "contrast":
	default:
		it.usage("set", "Valid attributes are 'width', 'height', 'brightness', 'contrast'.")
		return
	}

	number, err := strconv.ParseFloat(args[3], 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		fmt.Fprintf(it.out, "%s is not a valid number\n", args[3])
		return
	}
	if number <= 0 {
		it.usage("set", "Invalid number. Please enter a positive number.")
		return
	}

	switch attribute {
	case "width", "height":
		if number < float64(it.limits.MinDimension) {
			it.usage("set", fmt.Sprintf("Number too small. Minimum allowed number is %d.", it.limits.MinDimension))
			return
		}
		if number > float64(it.limits.MaxDimension) {
			it.usage("set", fmt.Sprintf("Number too large. Maximum allowed number is %d.", it.limits.MaxDimension))
			return
		}
		var axis session.Axis
		if axis, err = session.ParseAxis(attribute); err == nil {
			err = it.registry.SetDimension(name, axis, int(number))
		}
	default:
		var kind images.Enhancement
		if kind, err = images.ParseEnhancement(attribute); err == nil {
			err = it.registry.SetEnhance(name, kind, number)
		}
	}
	if err != nil {
		fmt.Fprintln(it.out, err)
	}
}

// WriteInfo prints an info report in the studio's session overview layout.
func WriteInfo(w io.Writer, report session.Report) {
	fmt.Fprint(w, "=== Current session ===\nImages: \n\n")
	for e := range report.Entries {
		if e.HasAlias {
			fmt.Fprintln(w, e.Alias)
		} else {
			fmt.Fprintln(w, "no alias:")
		}

		target := "no target size set"
		if e.HasTarget {
			target = fmt.Sprintf("(width, height): %d, %d", e.Target.Width, e.Target.Height)
		}
		fmt.Fprintf(w, "    filename: %s\n", e.FileName)
		fmt.Fprintf(w, "    size (width, height): (%d, %d)\n", e.Native.Width, e.Native.Height)
		fmt.Fprintf(w, "    target size: %s\n", target)
		fmt.Fprintf(w, "    brightness: %v\n", e.Brightness)
		fmt.Fprintf(w, "    contrast: %v\n\n", e.Contrast)
	}
	fmt.Fprintf(w, "Current image: %s\n", report.Current)
}
