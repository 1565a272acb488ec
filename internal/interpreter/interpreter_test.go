package interpreter

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/asciistudio/internal/artwork"
	"github.com/lehigh-university-libraries/asciistudio/internal/config"
	"github.com/lehigh-university-libraries/asciistudio/internal/images"
	"github.com/lehigh-university-libraries/asciistudio/internal/session"
)

func writeGradient(t *testing.T, name string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 256)
	}
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

type harness struct {
	it       *Interpreter
	registry *session.Registry
	out      *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Chdir(t.TempDir())
	writeGradient(t, "a.png", 100, 100)
	writeGradient(t, "b.png", 40, 80)

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	out := &bytes.Buffer{}
	registry := session.New(images.NewDecoder())
	return &harness{
		it:       New(registry, cfg, out, nil),
		registry: registry,
		out:      out,
	}
}

// exec runs each line and returns what the last one printed.
func (h *harness) exec(t *testing.T, lines ...string) string {
	t.Helper()
	for _, line := range lines {
		h.out.Reset()
		if h.it.Execute(context.Background(), line) {
			t.Fatalf("%q unexpectedly quit", line)
		}
	}
	return h.out.String()
}

func TestRunScript(t *testing.T) {
	h := newHarness(t)
	script := "load image a.png\nset a.png width 20\nrender\nquit\ninfo\n"

	if err := h.it.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := h.out.String()
	if !strings.HasPrefix(out, welcome) {
		t.Errorf("Expected welcome banner, got %q", out)
	}
	if !strings.HasSuffix(out, "Ok bye!\n") {
		t.Errorf("Expected goodbye at the end, got %q", out)
	}
	if strings.Contains(out, "=== Current session ===") {
		t.Error("Expected commands after quit to be ignored")
	}

	rows := 0
	for _, line := range strings.Split(strings.ReplaceAll(out, "AAS: ", ""), "\n") {
		if len(line) == 20 {
			rows++
		}
	}
	if rows != 10 {
		t.Errorf("Expected 10 rendered rows of width 20, got %d", rows)
	}
}

func TestRunEndOfInput(t *testing.T) {
	h := newHarness(t)
	if err := h.it.Run(context.Background(), strings.NewReader("help\n")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasSuffix(h.out.String(), "Ok bye!\n") {
		t.Errorf("Expected end of input to quit, got %q", h.out.String())
	}
}

func TestRunCancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.it.Run(ctx, strings.NewReader("load image a.png\n")); err == nil {
		t.Fatal("Expected context error")
	}
	if h.registry.Len() != 0 {
		t.Error("Expected no command to run after cancellation")
	}
}

func TestExecuteQuit(t *testing.T) {
	h := newHarness(t)
	if !h.it.Execute(context.Background(), "QUIT") {
		t.Fatal("Expected quit to end the loop")
	}
	if h.out.String() != "Ok bye!\n" {
		t.Errorf("unexpected output %q", h.out.String())
	}
}

func TestExecuteMessages(t *testing.T) {
	tests := []struct {
		name     string
		setup    []string
		line     string
		expected string
	}{
		{name: "empty", line: "   ", expected: "No command given. Please try again"},
		{name: "unknown", line: "draw a.png", expected: "Invalid command given"},
		{name: "render before load", line: "render", expected: noImages},
		{name: "set before load", line: "set a.png width 20", expected: noImages},
		{name: "info before load", line: "info", expected: noImages},
		{name: "load arg count", line: "load image", expected: "Invalid load command. Invalid number of arguments provided."},
		{name: "load unknown kind", line: "load picture a.png", expected: "Use 'load image' or 'load session'."},
		{name: "load missing as", line: "load image a.png named x", expected: "Expected 'load image <filename> as <alias>'."},
		{name: "load session arg count", line: "load session s as x", expected: "Invalid number of arguments provided."},
		{name: "load missing image", line: "load image nope.png", expected: "No image was found with the filename: nope.png. Please try again"},
		{name: "load missing session", line: "load session nope", expected: "Session file 'nope' not found. Please provide a valid filename."},
		{name: "save arg count", line: "save session s", expected: "Invalid save command. Invalid number of arguments provided."},
		{name: "save syntax", line: "save file as s", expected: "Expected 'save session as <filename>'."},
		{name: "render syntax", setup: []string{"load image a.png"}, line: "render a.png into x", expected: "Invalid render command. If you need additional help. Type 'help'"},
		{name: "render unknown", setup: []string{"load image a.png"}, line: "render b.png", expected: "no image was found with the name 'b.png'"},
		{name: "set arg count", setup: []string{"load image a.png"}, line: "set a.png width", expected: "Invalid set command. Invalid number of arguments provided."},
		{name: "set attribute", setup: []string{"load image a.png"}, line: "set a.png hue 2", expected: "Valid attributes are 'width', 'height', 'brightness', 'contrast'."},
		{name: "set not a number", setup: []string{"load image a.png"}, line: "set a.png width wide", expected: "wide is not a valid number"},
		{name: "set nan", setup: []string{"load image a.png"}, line: "set a.png contrast NaN", expected: "NaN is not a valid number"},
		{name: "set negative", setup: []string{"load image a.png"}, line: "set a.png brightness -1", expected: "Invalid number. Please enter a positive number."},
		{name: "set zero", setup: []string{"load image a.png"}, line: "set a.png contrast 0", expected: "Invalid number. Please enter a positive number."},
		{name: "set too small", setup: []string{"load image a.png"}, line: "set a.png width 9.5", expected: "Number too small. Minimum allowed number is 10."},
		{name: "set too large", setup: []string{"load image a.png"}, line: "set a.png height 5001", expected: "Number too large. Maximum allowed number is 5000."},
		{name: "set ambiguous", setup: []string{"load image a.png", "load image a.png"}, line: "set a.png width 20", expected: "more than one image was found with the name or alias 'a.png'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.exec(t, tt.setup...)
			out := h.exec(t, tt.line)
			if !strings.Contains(out, tt.expected) {
				t.Errorf("Expected output containing %q, got %q", tt.expected, out)
			}
		})
	}
}

func TestExecuteSetAppliesValues(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load image a.png", "load image b.png as logo")

	if out := h.exec(t, "set a.png width 20.9"); out != "" {
		t.Fatalf("unexpected output %q", out)
	}
	a, _ := h.registry.Current()
	if a.SourcePath() != "a.png" {
		t.Fatalf("Expected a.png to become current, got %s", a.SourcePath())
	}
	if target, _ := a.Target(); target != (artwork.Size{Width: 20, Height: 10}) {
		t.Errorf("Expected width truncated to 20, got %v", target)
	}

	h.exec(t, "SET logo Brightness 1.3")
	b, _ := h.registry.Current()
	if b.DisplayName() != "logo" || b.Brightness() != 1.3 {
		t.Errorf("Expected logo brightness 1.3, got %s %v", b.DisplayName(), b.Brightness())
	}

	h.exec(t, "set current contrast 0.5")
	if b.Contrast() != 0.5 {
		t.Errorf("Expected current contrast 0.5, got %v", b.Contrast())
	}
}

func TestExecuteKeepsNamesVerbatim(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "LOAD IMAGE a.png AS Logo")

	if out := h.exec(t, "render logo"); !strings.Contains(out, "no image was found") {
		t.Errorf("Expected lowercase alias not to match, got %q", out)
	}
	if out := h.exec(t, "Render Logo"); strings.Contains(out, "no image was found") {
		t.Errorf("Expected alias Logo to render, got %q", out)
	}
}

func TestExecuteRenderTo(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load image b.png as logo")

	out := h.exec(t, "render logo TO art")
	if out != "Rendered logo to art.txt\n" {
		t.Errorf("unexpected output %q", out)
	}
	data, err := os.ReadFile("art.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if rows := strings.Count(string(data), "\n"); rows != 50 {
		t.Errorf("Expected 50 rows, got %d", rows)
	}
}

func TestExecuteInfo(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load image a.png", "load image b.png as logo", "set logo contrast 1.5", "set a.png width 20")

	out := h.exec(t, "info")
	expected := `=== Current session ===
Images: 

no alias:
    filename: a.png
    size (width, height): (100, 100)
    target size: (width, height): 20, 10
    brightness: 1
    contrast: 1

logo
    filename: b.png
    size (width, height): (40, 80)
    target size: (width, height): 50, 50
    brightness: 1
    contrast: 1.5

Current image: a.png
`
	if out != expected {
		t.Errorf("unexpected info output:\n%s\nexpected:\n%s", out, expected)
	}
}

func TestExecuteSaveAndLoadSession(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "load image a.png", "load image b.png as logo", "set a.png width 20", "set logo brightness 0.8")

	if out := h.exec(t, "save session as s1"); out != "Session saved to s1.json\n" {
		t.Fatalf("unexpected save output %q", out)
	}
	before := h.exec(t, "info")

	h.exec(t, "load image a.png as extra")
	if h.registry.Len() != 3 {
		t.Fatalf("Expected 3 artworks, got %d", h.registry.Len())
	}

	if out := h.exec(t, "load session s1"); out != "" {
		t.Fatalf("unexpected load output %q", out)
	}
	if after := h.exec(t, "info"); after != before {
		t.Errorf("restored info differs:\n%s\nvs\n%s", after, before)
	}
}

func TestExecuteLoadSessionErrors(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile("bad.json", []byte("{"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if out := h.exec(t, "load session bad.json"); !strings.Contains(out, "Error decoding the session file 'bad.json'") {
		t.Errorf("unexpected output %q", out)
	}

	h.exec(t, "load image b.png", "save session as s")
	if err := os.Remove("b.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if out := h.exec(t, "load session s"); !strings.Contains(out, "Could not restore the session 's'") {
		t.Errorf("unexpected output %q", out)
	}
	if h.registry.Len() != 1 {
		t.Errorf("Expected registry untouched, got %d artworks", h.registry.Len())
	}
}

func TestExecuteLoadSessionMissingCurrent(t *testing.T) {
	h := newHarness(t)
	doc := `{"members": [{"file_name": "a.png", "alias": null, "target_width": 20, "target_height": 11, "brightness": 1, "contrast": 1}], "current": "gone.png"}`
	if err := os.WriteFile("s.json", []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if out := h.exec(t, "load session s"); out != MissingCurrentMessage+"\n" {
		t.Errorf("unexpected output %q", out)
	}
	if h.registry.Len() != 1 {
		t.Errorf("Expected 1 restored artwork, got %d", h.registry.Len())
	}
	if _, ok := h.registry.Current(); ok {
		t.Error("Expected no current artwork")
	}
}
