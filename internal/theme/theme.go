// Package theme describes the colours of the editor chrome and the selection
// overlay, and loads them from "Key: value" theme files.
package theme

import "image/color"

// Theme is the set of colours the window and the overlay renderer draw with.
// Fields are set by name from theme files; see Set.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the canvas
	Foreground color.RGBA // Status line text

	// Toolbar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonActive          color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Selection overlay
	SelectionFrame color.RGBA
	HandleFill     color.RGBA
	HandleBorder   color.RGBA
	Marquee        color.RGBA
	MarqueeFill    color.RGBA
}

// Default is the built-in light theme used when no other theme resolves.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonActive:          color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		SelectionFrame:        color.RGBA{30, 136, 229, 255},
		HandleFill:            color.RGBA{255, 255, 255, 255},
		HandleBorder:          color.RGBA{30, 136, 229, 255},
		Marquee:               color.RGBA{30, 136, 229, 255},
		MarqueeFill:           color.RGBA{30, 136, 229, 48},
	}
}
