package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/example/shotmark/internal/capture"
	"github.com/example/shotmark/internal/deferred"
	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/surface"
	"github.com/example/shotmark/internal/tools"
)

var errNothingApplied = errors.New("no effect applied")

// effectCmd drives the effect tool without a window.
type effectCmd struct {
	*root
	fs        *flag.FlagSet
	input     string
	points    []geom.Point
	kind      string
	mode      string
	strength  float64
	brush     float64
	output    string
	scenePath string
}

func (c *effectCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *effectCmd) Template() string { return "effect.txt" }

func parseEffectCmd(args []string, r *root) (*effectCmd, error) {
	fs := flag.NewFlagSet("effect", flag.ContinueOnError)
	c := &effectCmd{root: r, fs: fs}
	kinds := make([]string, 0, len(effect.Kinds()))
	for _, k := range effect.Kinds() {
		kinds = append(kinds, string(k))
	}
	fs.StringVar(&c.kind, "kind", kinds[0], "effect: "+strings.Join(kinds, " or "))
	fs.StringVar(&c.mode, "mode", params.ModeArea, "area covers a rectangle, brush follows the points")
	fs.Float64Var(&c.strength, "strength", 10, "mosaic block size or blur radius in pixels")
	fs.Float64Var(&c.brush, "brush", 20, "brush width in pixels")
	fs.StringVar(&c.output, "output", "obscured.png", "output image, - writes PNG to stdout")
	fs.StringVar(&c.scenePath, "scene", "", "also write the annotations as a scene file for export")
	if err := parseFlags(fs, c, args); err != nil {
		return nil, err
	}
	if fs.NArg() < 5 || fs.NArg()%2 == 0 {
		return nil, usageErrorf(c, "expected an image and pairs of coordinates")
	}
	c.input = fs.Arg(0)
	for i := 1; i < fs.NArg(); i += 2 {
		x, errX := strconv.ParseFloat(fs.Arg(i), 64)
		y, errY := strconv.ParseFloat(fs.Arg(i+1), 64)
		if err := errors.Join(errX, errY); err != nil {
			return nil, usageErrorf(c, "bad coordinate: %v", err)
		}
		c.points = append(c.points, geom.Pt(x, y))
	}
	if _, err := effect.ParseKind(c.kind); err != nil {
		return nil, usageErrorf(c, "%v", err)
	}
	switch c.mode {
	case params.ModeArea:
		if len(c.points) != 2 {
			return nil, usageErrorf(c, "area mode takes exactly two corners")
		}
	case params.ModeBrush:
	default:
		return nil, usageErrorf(c, "unknown mode %q", c.mode)
	}
	return c, nil
}

func (c *effectCmd) Run() error {
	sched := deferred.NewManual()
	s := surface.New(sched, surface.WithHistory(c.config.HistoryOptions()...))
	if err := s.Activate(capture.File(c.input), image.Point{}); err != nil {
		return err
	}
	defer s.Deactivate()

	store := params.DefaultStore()
	if err := store.Seed(c.config.Tools); err != nil {
		return err
	}
	err := store.SetAll(params.ToolEffect, map[string]string{
		params.KeyEffect:   c.kind,
		params.KeyMode:     c.mode,
		params.KeyStrength: strconv.FormatFloat(c.strength, 'f', -1, 64),
		params.KeyBrush:    strconv.FormatFloat(c.brush, 'f', -1, 64),
	})
	if err != nil {
		return err
	}
	tb := tools.New(s, store)
	if err := tb.Switch(params.ToolEffect); err != nil {
		return err
	}
	last := len(c.points) - 1
	tb.PointerDown(c.points[0])
	for _, p := range c.points[1:last] {
		tb.PointerMove(p)
	}
	tb.PointerUp(c.points[last])
	tb.Deactivate()
	sched.Flush()

	if s.Len() == 0 {
		return fmt.Errorf("%w: the region is empty or outside the image", errNothingApplied)
	}
	img, err := s.MergeWithBackground()
	if err != nil {
		return err
	}
	if err := writeImage(img, c.output, c.root); err != nil {
		return err
	}
	if c.scenePath == "" {
		return nil
	}
	doc, err := s.Save()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.scenePath, doc, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}
