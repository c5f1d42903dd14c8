// Package ui hosts an editing session in a shiny window. Pointer and key
// events are routed to the toolbox on the window's event goroutine, and
// deferred callbacks are posted back to the same goroutine as events.
package ui

import (
	"fmt"
	"image"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/shotmark/internal/config"
	"github.com/example/shotmark/internal/deferred"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/notify"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/surface"
	"github.com/example/shotmark/internal/theme"
)

// callEvent carries a deferred callback onto the event loop.
type callEvent struct{ fn func() }

// Options configures an App.
type Options struct {
	Source    surface.BackgroundSource
	Config    *config.Config
	Theme     *theme.Theme
	Notifier  *notify.Notifier
	Clipboard Clipboard
	Output    string
	Title     string
}

// App is the annotation window.
type App struct {
	opts Options
}

// New creates an App.
func New(opts Options) *App {
	if opts.Title == "" {
		opts.Title = "shotmark"
	}
	return &App{opts: opts}
}

// Run executes the UI loop using shiny's driver and returns when the window
// is closed.
func (a *App) Run() error {
	var err error
	driver.Main(func(s screen.Screen) { err = a.Main(s) })
	return err
}

// Main runs the event loop on s.
func (a *App) Main(s screen.Screen) error {
	log := logging.For("ui")
	if a.opts.Source == nil {
		return fmt.Errorf("ui: no background source")
	}
	bg, err := a.opts.Source.Background()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	a.opts.Notifier.Capture("image", bg)
	bgSize := bg.Bounds().Size()

	var w screen.Window
	dirty := false
	repaint := func() {
		if w != nil && !dirty {
			dirty = true
			w.Send(paint.Event{})
		}
	}
	sched := deferred.NewLoop(func(fn func()) {
		if w != nil {
			w.Send(callEvent{fn})
		}
	})
	sess, err := NewSession(sched, SessionOptions{
		Config:    a.opts.Config,
		Clipboard: a.opts.Clipboard,
		Notifier:  a.opts.Notifier,
		Output:    a.opts.Output,
		OnChange:  repaint,
	})
	if err != nil {
		return err
	}

	winSize := windowSize(bgSize, sess.Tools())
	w, err = s.NewWindow(&screen.NewWindowOptions{Width: winSize.X, Height: winSize.Y, Title: a.opts.Title})
	if err != nil {
		return fmt.Errorf("new window: %w", err)
	}
	defer w.Release()

	lay := newLayout(winSize, sess.Tools(), params.Palette())
	static := surface.BackgroundFunc(func() (image.Image, error) { return bg, nil })
	if err := sess.Start(static, fitEdit(bgSize, lay.canvas.Size())); err != nil {
		return err
	}
	defer sess.Close()

	hover := -1
	pressed := false
	for {
		switch e := w.NextEvent().(type) {
		case callEvent:
			e.fn()
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}
		case size.Event:
			if e.WidthPx <= 0 || e.HeightPx <= 0 {
				continue
			}
			winSize = e.Size()
			lay = newLayout(winSize, sess.Tools(), params.Palette())
			sess.Resize(fitEdit(bgSize, lay.canvas.Size()))
			repaint()
		case paint.Event:
			dirty = false
			a.paint(s, w, lay.withSettings(sess.Settings()), sess, hover)
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			switch e.Direction {
			case mouse.DirPress:
				if e.Button != mouse.ButtonLeft {
					continue
				}
				cur := lay.withSettings(sess.Settings())
				if i, ok := cur.buttonAt(p); ok {
					if action := cur.buttons[i].action; action != "" {
						_ = sess.Do(action)
					}
				} else if p.In(lay.canvas) {
					pressed = true
					sess.PointerDown(lay.toEdit(p))
				}
			case mouse.DirRelease:
				if pressed {
					pressed = false
					sess.PointerUp(lay.toEdit(p))
				}
			case mouse.DirNone:
				if pressed {
					sess.PointerMove(lay.toEdit(p))
				} else {
					i, _ := lay.withSettings(sess.Settings()).buttonAt(p)
					if i == hover {
						continue
					}
					hover = i
				}
			}
			repaint()
		case key.Event:
			action, ok := actionFor(e)
			if !ok {
				continue
			}
			if action == actionQuit {
				return nil
			}
			if err := sess.Do(action); err != nil {
				log.Debug("key action", "action", action, "err", err)
			}
			repaint()
		case error:
			log.Error("window event", "err", e)
		}
	}
}

func (a *App) paint(s screen.Screen, w screen.Window, lay layout, sess *Session, hover int) {
	b, err := s.NewBuffer(lay.size)
	if err != nil {
		logging.For("ui").Error("new buffer", "err", err)
		return
	}
	defer b.Release()
	view, err := sess.View(a.opts.Theme)
	if err != nil {
		logging.For("ui").Error("render view", "err", err)
	}
	drawFrame(b.RGBA(), frame{
		layout:  lay,
		view:    view,
		theme:   a.opts.Theme,
		current: sess.CurrentTool(),
		hover:   hover,
		status:  sess.Status(),
	})
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
