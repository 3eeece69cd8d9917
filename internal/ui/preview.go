package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// PreviewConfig holds the terminal cell geometry of the trace preview.
type PreviewConfig struct {
	Width  int // Width in terminal cells
	Height int // Height in terminal cells; each cell carries 2 pixel rows
}

// DefaultPreviewConfig returns a preview sized for a typical terminal.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Width:  80,
		Height: 14,
	}
}

// DownsampleTrace shrinks a full-resolution trace image to the preview
// pixel grid (width x 2*height, one pixel row per half cell), averaging
// the source region behind each preview pixel.
func DownsampleTrace(frame *image.RGBA, cfg PreviewConfig) [][]color.RGBA {
	bounds := frame.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	rows := cfg.Height * 2
	cellWidth := srcWidth / cfg.Width
	cellHeight := srcHeight / rows
	if cellWidth < 1 {
		cellWidth = 1
	}
	if cellHeight < 1 {
		cellHeight = 1
	}

	preview := make([][]color.RGBA, rows)
	for row := 0; row < rows; row++ {
		preview[row] = make([]color.RGBA, cfg.Width)
		for col := 0; col < cfg.Width; col++ {
			srcX := col * cellWidth
			srcY := row * cellHeight

			var sumR, sumG, sumB uint32
			pixelCount := 0

			for y := srcY; y < srcY+cellHeight && y < srcHeight; y++ {
				for x := srcX; x < srcX+cellWidth && x < srcWidth; x++ {
					r, g, b, _ := frame.At(x, y).RGBA()
					sumR += uint32(r >> 8)
					sumG += uint32(g >> 8)
					sumB += uint32(b >> 8)
					pixelCount++
				}
			}

			if pixelCount > 0 {
				preview[row][col] = color.RGBA{
					R: uint8(sumR / uint32(pixelCount)),
					G: uint8(sumG / uint32(pixelCount)),
					B: uint8(sumB / uint32(pixelCount)),
					A: 255,
				}
			}
		}
	}

	return preview
}

// RenderPreview renders the pixel grid as text. Each terminal cell is
// an upper-half-block with the top pixel as foreground and the bottom
// pixel as background, doubling the vertical resolution.
func RenderPreview(preview [][]color.RGBA) string {
	if len(preview) < 2 {
		return ""
	}

	var b strings.Builder
	for row := 0; row+1 < len(preview); row += 2 {
		top := preview[row]
		bottom := preview[row+1]
		for col := range top {
			b.WriteString(fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top[col].R, top[col].G, top[col].B,
				bottom[col].R, bottom[col].G, bottom[col].B))
		}
		b.WriteString("\x1b[0m\n")
	}

	return b.String()
}
