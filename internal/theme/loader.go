package theme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const ext = ".theme"

// EmbeddedThemes holds the themes shipped with the binary.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

// ErrNotFound is returned when no source holds the requested theme.
var ErrNotFound = errors.New("theme not found")

// Loader resolves theme names against the embedded themes, then ConfigDir,
// then SystemDir.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader returns a Loader using the per-user and system theme directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "shotmark", "themes"),
		SystemDir: "/usr/share/shotmark/themes",
	}
}

func (l *Loader) sources() []fs.FS {
	defaults, _ := fs.Sub(EmbeddedThemes, "defaults")
	out := []fs.FS{defaults}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir != "" {
			out = append(out, os.DirFS(dir))
		}
	}
	return out
}

// Load returns the theme called name. An existing file path is read
// directly; the empty name is the default theme.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return parseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}
	file := name
	if !strings.HasSuffix(file, ext) {
		file += ext
	}
	if !fs.ValidPath(file) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	for _, src := range l.sources() {
		th, err := parseFile(src, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return th, err
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func parseFile(fsys fs.FS, name string) (*Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	th, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return th, nil
}

// List returns the names of every theme the loader can find, sorted and
// without duplicates.
func (l *Loader) List() []string {
	var names []string
	for _, src := range l.sources() {
		matches, err := fs.Glob(src, "*"+ext)
		if err != nil {
			continue
		}
		for _, m := range matches {
			names = append(names, strings.TrimSuffix(m, ext))
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
