package images

import (
	"errors"
	"image"
	"testing"
)

func TestAdjustBrightness(t *testing.T) {
	buf := image.NewGray(image.Rect(0, 0, 3, 1))
	copy(buf.Pix, []uint8{0, 100, 200})

	tests := []struct {
		name     string
		factor   float64
		expected []uint8
	}{
		{name: "identity", factor: 1, expected: []uint8{0, 100, 200}},
		{name: "half", factor: 0.5, expected: []uint8{0, 50, 100}},
		{name: "clipped", factor: 2, expected: []uint8{0, 200, 255}},
		{name: "black", factor: 0, expected: []uint8{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Adjust(buf, Brightness, tt.factor)
			if err != nil {
				t.Fatalf("Adjust: %v", err)
			}
			for i, want := range tt.expected {
				if got := out.Pix[i]; diff(got, want) > 1 {
					t.Errorf("sample %d: expected %d, got %d", i, want, got)
				}
			}
		})
	}

	if buf.Pix[1] != 100 {
		t.Error("Adjust must not modify its input")
	}
}

func TestAdjustContrast(t *testing.T) {
	buf := image.NewGray(image.Rect(0, 0, 2, 1))
	copy(buf.Pix, []uint8{100, 200}) // mean 150

	out, err := Adjust(buf, Contrast, 0)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	for i, v := range out.Pix {
		if diff(v, 150) > 1 {
			t.Errorf("sample %d: expected uniform gray 150, got %d", i, v)
		}
	}

	out, err = Adjust(buf, Contrast, 2)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if diff(out.Pix[0], 50) > 1 || diff(out.Pix[1], 250) > 1 {
		t.Errorf("Expected [50 250], got %v", out.Pix)
	}
}

func TestAdjustRejectsBadInput(t *testing.T) {
	buf := image.NewGray(image.Rect(0, 0, 1, 1))
	if _, err := Adjust(buf, "saturation", 1); !errors.Is(err, ErrUnknownEnhancement) {
		t.Errorf("Expected ErrUnknownEnhancement, got %v", err)
	}
	if _, err := Adjust(buf, Brightness, -1); err == nil {
		t.Error("Expected error for negative factor")
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
