package ui

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/example/shotmark/internal/clipboard"
	"github.com/example/shotmark/internal/config"
	"github.com/example/shotmark/internal/deferred"
	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/notify"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/scene"
	"github.com/example/shotmark/internal/surface"
	"github.com/example/shotmark/internal/theme"
	"github.com/example/shotmark/internal/tools"
)

// ErrUnknownAction is returned by Do for an action name it does not know.
var ErrUnknownAction = errors.New("unknown action")

// Clipboard receives copied images and scenes.
type Clipboard interface {
	WriteImage(img image.Image) error
	WriteScene(doc []byte) error
	ReadScene() ([]byte, error)
}

type systemClipboard struct{}

func (systemClipboard) WriteImage(img image.Image) error { return clipboard.WriteImage(img) }
func (systemClipboard) WriteScene(doc []byte) error      { return clipboard.WriteScene(doc) }
func (systemClipboard) ReadScene() ([]byte, error)       { return clipboard.ReadScene() }

// SessionOptions configures a Session. Zero values fall back to defaults.
type SessionOptions struct {
	Config    *config.Config
	Params    *params.Store
	Clipboard Clipboard
	Notifier  *notify.Notifier
	Registry  *scene.Registry
	// Output is the file written by the save action. When empty a
	// timestamped name in the configured save directory is used.
	Output   string
	OnChange func()
	Now      func() time.Time
}

// Session is one editing session: a surface, its toolbox and the actions
// bound to keys and toolbar buttons. All methods run on the event loop.
type Session struct {
	surface  *surface.Surface
	toolbox  *tools.Toolbox
	params   *params.Store
	clip     Clipboard
	notifier *notify.Notifier
	output   string
	saveDir  string
	now      func() time.Time
	message  string
}

// NewSession builds an inactive session whose deferred work runs on sched.
func NewSession(sched deferred.Scheduler, opts SessionOptions) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	store := opts.Params
	if store == nil {
		store = params.DefaultStore()
		if err := store.Seed(cfg.Tools); err != nil {
			return nil, fmt.Errorf("tool settings: %w", err)
		}
	}
	s := &Session{
		params:   store,
		clip:     opts.Clipboard,
		notifier: opts.Notifier,
		output:   opts.Output,
		saveDir:  cfg.SaveDir,
		now:      opts.Now,
	}
	if s.clip == nil {
		s.clip = systemClipboard{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	hopts := append(cfg.HistoryOptions(), history.WithErrorHandler(func(err error) {
		s.message = "restore failed: " + err.Error()
		if opts.OnChange != nil {
			opts.OnChange()
		}
	}))
	sopts := []surface.Option{
		surface.WithHistory(hopts...),
		surface.WithChangeHandler(opts.OnChange),
	}
	if opts.Registry != nil {
		sopts = append(sopts, surface.WithRegistry(opts.Registry))
	}
	s.surface = surface.New(sched, sopts...)
	s.toolbox = tools.New(s.surface, store, tools.WithMinDrag(cfg.Editor.MinDragDistance))
	return s, nil
}

// Start loads the background and activates the selection tool.
func (s *Session) Start(src surface.BackgroundSource, editSize image.Point) error {
	if err := s.surface.Activate(src, editSize); err != nil {
		return err
	}
	return s.toolbox.Switch(params.ToolSelect)
}

// Close ends the session.
func (s *Session) Close() {
	s.toolbox.Deactivate()
	s.surface.Deactivate()
}

// Surface exposes the underlying edit surface.
func (s *Session) Surface() *surface.Surface { return s.surface }

// Tools lists the toolbox entries in toolbar order.
func (s *Session) Tools() []string { return s.toolbox.Names() }

// CurrentTool returns the active tool name.
func (s *Session) CurrentTool() string {
	if t := s.toolbox.Current(); t != nil {
		return t.Name()
	}
	return ""
}

// Resize changes the edit size after the window was resized.
func (s *Session) Resize(editSize image.Point) { s.surface.Resize(editSize) }

// View renders the edit layer for display.
func (s *Session) View(th *theme.Theme) (*image.RGBA, error) { return s.surface.View(th) }

func (s *Session) PointerDown(p geom.Point) {
	s.message = ""
	s.toolbox.PointerDown(p)
}

func (s *Session) PointerMove(p geom.Point) { s.toolbox.PointerMove(p) }

func (s *Session) PointerUp(p geom.Point) { s.toolbox.PointerUp(p) }

// Do runs a named action. Actions take an optional argument after a colon,
// as in "tool:arrow", "color:3" or "width:+1". Tool settings are changed
// with "param:mode=brush" (or "param:effect.mode=brush" for another tool),
// "cycle:kind" and "step:strength:+1". A failure is also shown in the
// status line.
func (s *Session) Do(action string) error {
	err := s.do(action)
	if err != nil {
		logging.For("ui").Warn("action failed", "action", action, "err", err)
		s.message = err.Error()
	}
	return err
}

func (s *Session) do(action string) error {
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case "tool":
		return s.toolbox.Switch(arg)
	case "undo":
		return s.toolbox.Undo()
	case "redo":
		return s.toolbox.Redo()
	case "delete":
		if n := s.toolbox.DeleteSelected(); n > 0 {
			s.message = fmt.Sprintf("deleted %d", n)
		}
		return nil
	case "selectall":
		return s.toolbox.SelectAll()
	case "color":
		idx, err := strconv.Atoi(arg)
		pal := params.Palette()
		if err != nil || idx < 0 || idx >= len(pal) {
			return fmt.Errorf("color %q: %w", arg, ErrUnknownAction)
		}
		return s.SetColor(pal[idx].Color)
	case "width":
		step, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("width %q: %w", arg, ErrUnknownAction)
		}
		return s.stepWidth(step)
	case "copy":
		return s.copyImage()
	case "copyscene":
		return s.copyScene()
	case "pastescene":
		return s.pasteScene()
	case "save":
		_, err := s.Save()
		return err
	case "param":
		target, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAction, action)
		}
		tool, key := s.CurrentTool(), target
		if t, k, ok := strings.Cut(target, "."); ok {
			tool, key = t, k
		}
		return s.params.Set(tool, key, value)
	case "cycle":
		return s.cycle(arg)
	case "step":
		key, n, _ := strings.Cut(arg, ":")
		step, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("step %q: %w", arg, ErrUnknownAction)
		}
		return s.step(key, step)
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// Setting is one parameter of the active tool with its current value.
type Setting struct {
	params.Spec
	Value string
}

// Settings lists the parameters of the active tool that apply in its
// current state. Colour is left to the palette.
func (s *Session) Settings() []Setting {
	tool := s.CurrentTool()
	vals := s.params.Values(tool)
	var out []Setting
	for _, sp := range s.params.Visible(tool) {
		if sp.Key == params.KeyColor {
			continue
		}
		v := vals.String(sp.Key)
		if v == "" {
			v = sp.Default
		}
		out = append(out, Setting{Spec: sp, Value: v})
	}
	return out
}

// cycle moves a choice parameter of the active tool to its next value, or
// flips a bool.
func (s *Session) cycle(key string) error {
	tool := s.CurrentTool()
	sp, ok := s.spec(tool, key)
	if !ok {
		return fmt.Errorf("%w: %s has no %s", params.ErrUnknownParam, tool, key)
	}
	vals := s.params.Values(tool)
	var next string
	switch sp.Kind {
	case params.KindChoice:
		if len(sp.Choices) == 0 {
			return nil
		}
		cur := vals.String(key)
		i := slices.IndexFunc(sp.Choices, func(c string) bool { return strings.EqualFold(c, cur) })
		next = sp.Choices[(i+1)%len(sp.Choices)]
	case params.KindBool:
		def, _ := strconv.ParseBool(sp.Default)
		next = strconv.FormatBool(!vals.Bool(key, def))
	default:
		return fmt.Errorf("%w: %s.%s cannot be cycled", ErrUnknownAction, tool, key)
	}
	if err := s.params.Set(tool, key, next); err != nil {
		return err
	}
	s.message = sp.Label + ": " + next
	return nil
}

// step moves a number parameter of the active tool by n increments of a
// twentieth of its range.
func (s *Session) step(key string, n int) error {
	if key == params.KeyWidth {
		return s.stepWidth(n)
	}
	tool := s.CurrentTool()
	sp, ok := s.spec(tool, key)
	if !ok {
		return fmt.Errorf("%w: %s has no %s", params.ErrUnknownParam, tool, key)
	}
	if sp.Kind != params.KindNumber {
		return fmt.Errorf("%w: %s.%s is not a number", ErrUnknownAction, tool, key)
	}
	def, _ := strconv.ParseFloat(sp.Default, 64)
	v := s.params.Values(tool).Float(key, def) + float64(n)*stepSize(sp)
	if sp.Max > sp.Min {
		v = max(sp.Min, min(v, sp.Max))
	}
	v = math.Round(v*100) / 100
	return s.params.Set(tool, key, strconv.FormatFloat(v, 'f', -1, 64))
}

func stepSize(sp params.Spec) float64 {
	r := sp.Max - sp.Min
	switch {
	case r <= 0:
		return 1
	case r >= 20:
		return math.Round(r / 20)
	}
	return math.Max(0.01, math.Round(r/20*100)/100)
}

// SetColor changes the stroke colour of the active tool. Tools without a
// colour parameter ignore it.
func (s *Session) SetColor(c color.RGBA) error {
	tool := s.CurrentTool()
	if _, ok := s.spec(tool, params.KeyColor); !ok {
		return nil
	}
	return s.params.Set(tool, params.KeyColor, scene.FormatColor(c))
}

func (s *Session) stepWidth(step int) error {
	tool := s.CurrentTool()
	if _, ok := s.spec(tool, params.KeyWidth); !ok {
		return nil
	}
	cur := s.params.Values(tool).Int(params.KeyWidth, 1)
	idx := params.EnsureWidth(cur) + step
	widths := params.WidthOptions()
	idx = max(0, min(idx, len(widths)-1))
	return s.params.Set(tool, params.KeyWidth, strconv.Itoa(widths[idx]))
}

func (s *Session) spec(tool, key string) (params.Spec, bool) {
	for _, sp := range s.params.Specs(tool) {
		if sp.Key == key {
			return sp, true
		}
	}
	return params.Spec{}, false
}

func (s *Session) copyImage() error {
	img, err := s.surface.MergeWithBackground()
	if err != nil {
		return err
	}
	if err := s.clip.WriteImage(img); err != nil {
		return fmt.Errorf("copy image: %w", err)
	}
	s.message = "copied image"
	s.notifier.Copy("image")
	return nil
}

func (s *Session) copyScene() error {
	doc, err := s.surface.Save()
	if err != nil {
		return err
	}
	if err := s.clip.WriteScene(doc); err != nil {
		return fmt.Errorf("copy scene: %w", err)
	}
	s.message = fmt.Sprintf("copied %d objects", s.surface.Len())
	s.notifier.Copy("annotations")
	return nil
}

func (s *Session) pasteScene() error {
	doc, err := s.clip.ReadScene()
	if err != nil {
		return fmt.Errorf("paste scene: %w", err)
	}
	if err := s.toolbox.Switch(params.ToolSelect); err != nil {
		return err
	}
	if err := s.surface.Load(doc); err != nil {
		return fmt.Errorf("paste scene: %w", err)
	}
	s.message = fmt.Sprintf("pasted %d objects", s.surface.Len())
	return nil
}

// Save flattens the annotations onto the background and writes the result.
// The format follows the file extension. It returns the path written.
func (s *Session) Save() (string, error) {
	img, err := s.surface.MergeWithBackground()
	if err != nil {
		return "", err
	}
	path := s.output
	if path == "" {
		name := "shotmark-" + s.now().Format("20060102-150405") + ".png"
		path = filepath.Join(s.saveDir, name)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("save: %w", err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	logging.For("ui").Info("saved", "path", path)
	s.message = "saved " + path
	s.notifier.Save(path)
	return path, nil
}

// Status is the text of the status line.
func (s *Session) Status() string {
	h := s.surface.History()
	parts := []string{s.CurrentTool()}
	if cur, ok := h.Current(); ok {
		parts = append(parts, fmt.Sprintf("%d/%d %s", h.Cursor()+1, len(h.Entries()), cur.Description))
	}
	if n := len(s.surface.Selected()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if s.message != "" {
		parts = append(parts, s.message)
	}
	return strings.Join(parts, " | ")
}
