package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"github.com/example/shotmark/internal/capture"
	"github.com/example/shotmark/internal/clipboard"
	"github.com/example/shotmark/internal/deferred"
	"github.com/example/shotmark/internal/render"
	"github.com/example/shotmark/internal/surface"
)

// exportCmd flattens a persisted scene over its background.
type exportCmd struct {
	*root
	fs            *flag.FlagSet
	background    string
	scenePath     string
	output        string
	toClipboard   bool
	shadow        bool
	shadowRadius  int
	shadowOpacity float64
}

func (e *exportCmd) FlagSet() *flag.FlagSet { return e.fs }

func (e *exportCmd) Template() string { return "export.txt" }

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	e := &exportCmd{root: r, fs: fs}
	def := render.DefaultShadowOptions()
	fs.StringVar(&e.output, "output", "annotated.png", "output image; the extension selects the format, - writes PNG to stdout")
	fs.BoolVar(&e.toClipboard, "clipboard", false, "copy the result to the clipboard instead of writing a file")
	fs.BoolVar(&e.shadow, "shadow", false, "add a drop shadow around the image")
	fs.IntVar(&e.shadowRadius, "shadow-radius", def.Radius, "drop shadow blur radius in pixels")
	fs.Float64Var(&e.shadowOpacity, "shadow-opacity", def.Opacity, "drop shadow opacity between 0 and 1")
	if err := parseFlags(fs, e, args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 2:
		e.scenePath = fs.Arg(1)
		fallthrough
	case 1:
		e.background = fs.Arg(0)
	default:
		return nil, usageErrorf(e, "expected a background image and an optional scene")
	}
	return e, nil
}

func (e *exportCmd) Run() error {
	s := surface.New(deferred.NewManual(), surface.WithHistory(e.config.HistoryOptions()...))
	var doc []byte
	var edit image.Point
	if e.scenePath != "" {
		var err error
		if doc, err = os.ReadFile(e.scenePath); err != nil {
			return fmt.Errorf("read scene: %w", err)
		}
		if edit, err = s.CanvasOf(doc); err != nil {
			return err
		}
	}
	if err := s.Activate(capture.File(e.background), edit); err != nil {
		return err
	}
	defer s.Deactivate()
	if doc != nil {
		if err := s.Load(doc); err != nil {
			return err
		}
	}
	img, err := s.MergeWithBackground()
	if err != nil {
		return err
	}
	if e.shadow {
		opts := render.DefaultShadowOptions()
		opts.Radius = e.shadowRadius
		opts.Opacity = e.shadowOpacity
		img = render.ApplyShadow(img, opts).Image
	}
	if e.toClipboard {
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		e.notifier.Copy("image")
		return nil
	}
	return writeImage(img, e.output, e.root)
}

// writeImage saves img to path, or encodes PNG to stdout for "-".
func writeImage(img image.Image, path string, r *root) error {
	if path == "-" {
		return imaging.Encode(r.stdout, img, imaging.PNG)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	r.notifier.Save(path)
	return nil
}
