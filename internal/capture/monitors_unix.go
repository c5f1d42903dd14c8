//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// randrLayout queries one X connection for the active CRTC of each output.
type randrLayout struct {
	conn *xgb.Conn
	root xproto.Window
	res  *randr.GetScreenResourcesReply
}

func listMonitors() ([]MonitorInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()

	l, err := openLayout(conn)
	if err != nil {
		return nil, err
	}
	primary := l.primary()
	var monitors []MonitorInfo
	for _, out := range l.res.Outputs {
		name, rect, ok := l.output(out)
		if !ok {
			continue
		}
		monitors = append(monitors, MonitorInfo{
			Index:   len(monitors),
			Name:    name,
			Rect:    rect,
			Primary: out == primary,
		})
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}

func openLayout(conn *xgb.Conn) (*randrLayout, error) {
	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, errors.New("X setup unavailable")
	}
	scr := setup.DefaultScreen(conn)
	if scr == nil {
		return nil, errors.New("X default screen unavailable")
	}
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, scr.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr resources: %w", err)
	}
	return &randrLayout{conn: conn, root: scr.Root, res: res}, nil
}

// primary returns the primary output, or 0 when none is set.
func (l *randrLayout) primary() randr.Output {
	reply, err := randr.GetOutputPrimary(l.conn, l.root).Reply()
	if err != nil {
		return 0
	}
	return reply.Output
}

// output reports the name and desktop rectangle of a connected output that
// is driving a CRTC.
func (l *randrLayout) output(out randr.Output) (string, image.Rectangle, bool) {
	ts := l.res.ConfigTimestamp
	info, err := randr.GetOutputInfo(l.conn, out, ts).Reply()
	if err != nil || info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
		return "", image.Rectangle{}, false
	}
	crtc, err := randr.GetCrtcInfo(l.conn, info.Crtc, ts).Reply()
	if err != nil {
		return "", image.Rectangle{}, false
	}
	origin := image.Pt(int(crtc.X), int(crtc.Y))
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(int(crtc.Width), int(crtc.Height)))}
	return strings.TrimSpace(string(info.Name)), rect, true
}
