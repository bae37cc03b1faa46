package sketch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/fsutil"
	"github.com/yaklabco/sketchdiag/pkg/langdetect"
)

// MainExtension is the extension of the main tab.
const MainExtension = ".pde"

// CodeFolderName is the sketch subfolder holding extra jars.
const CodeFolderName = "code"

// ErrNotSketch is returned when a directory has no main tab.
var ErrNotSketch = errors.New("not a sketch folder")

// Folder is a sketch backed by a directory on disk. The main tab is
// <dir>/<dir>.pde; other tabs follow sorted by name.
type Folder struct {
	dir  string
	name string

	mu    sync.RWMutex
	tabs  []Tab
	files []*fsutil.FileInfo
	live  map[string]string
}

// LoadFolder reads every tab in dir.
func LoadFolder(ctx context.Context, dir string) (*Folder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	folder := &Folder{
		dir:  abs,
		name: filepath.Base(abs),
		live: make(map[string]string),
	}

	tabs, files, err := readTabs(ctx, folder.dir, folder.name)
	if err != nil {
		return nil, err
	}
	folder.tabs = tabs
	folder.files = files

	return folder, nil
}

// Name returns the sketch name, which is the folder's base name.
func (f *Folder) Name() string {
	return f.name
}

// Dir returns the absolute sketch directory.
func (f *Folder) Dir() string {
	return f.dir
}

// CodeDir returns the sketch's code folder path. It may not exist.
func (f *Folder) CodeDir() string {
	return filepath.Join(f.dir, CodeFolderName)
}

// Tabs returns the current tabs, with live text substituted where set.
func (f *Folder) Tabs() []Tab {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Tab, len(f.tabs))
	copy(out, f.tabs)
	for i := range out {
		if text, ok := f.live[out[i].Name]; ok {
			out[i].Text = text
		}
	}
	return out
}

// TabPath returns the file path of the tab at idx.
func (f *Folder) TabPath(idx int) string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if idx < 0 || idx >= len(f.tabs) {
		return ""
	}
	return filepath.Join(f.dir, f.tabs[idx].Name)
}

// SetLiveText overrides the saved text of a tab, as an open editor would.
func (f *Folder) SetLiveText(name, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[name] = text
}

// ClearLiveText drops the override for a tab.
func (f *Folder) ClearLiveText(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, name)
}

// Refresh rereads the folder if a tab was added, removed, or modified on disk.
// It reports whether the tab list changed.
func (f *Folder) Refresh(ctx context.Context) (bool, error) {
	f.mu.RLock()
	names := make([]string, len(f.tabs))
	for i, tab := range f.tabs {
		names[i] = tab.Name
	}
	files := f.files
	f.mu.RUnlock()

	current, err := listTabNames(f.dir, f.name)
	if err != nil {
		return false, err
	}

	changed := !slices.Equal(current, names)
	for _, info := range files {
		if changed {
			break
		}
		modified, err := fsutil.CheckModified(ctx, info)
		if err != nil {
			return false, fmt.Errorf("check %s: %w", info.Path, err)
		}
		changed = modified
	}
	if !changed {
		return false, nil
	}

	tabs, newFiles, err := readTabs(ctx, f.dir, f.name)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	f.tabs = tabs
	f.files = newFiles
	f.mu.Unlock()

	return true, nil
}

// listTabNames returns the tab file names in tab order, judged by extension alone.
func listTabNames(dir, name string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sketch folder: %w", err)
	}

	mainName := name + MainExtension
	hasMain := false
	names := []string{mainName}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == mainName {
			hasMain = true
			continue
		}
		if langdetect.Classify(entry.Name(), nil).IsTab() {
			names = append(names, entry.Name())
		}
	}

	if !hasMain {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotSketch, dir, mainName)
	}

	// os.ReadDir sorts by name already; keep main first.
	return names, nil
}

func readTabs(ctx context.Context, dir, name string) ([]Tab, []*fsutil.FileInfo, error) {
	names, err := listTabNames(dir, name)
	if err != nil {
		return nil, nil, err
	}

	tabs := make([]Tab, 0, len(names))
	files := make([]*fsutil.FileInfo, 0, len(names))
	logger := logging.FromContext(ctx)

	for _, tabName := range names {
		content, info, err := fsutil.ReadFile(ctx, filepath.Join(dir, tabName))
		if err != nil {
			return nil, nil, fmt.Errorf("read tab: %w", err)
		}
		kind := langdetect.Classify(tabName, content)
		logger.Debug("tab read", logging.FieldTab, tabName, "kind", kind, "bytes", len(content))
		tabs = append(tabs, Tab{
			Name:       tabName,
			Text:       string(content),
			Analyzable: kind.Analyzable(),
		})
		files = append(files, info)
	}

	return tabs, files, nil
}

// Static is an in-memory sketch. It is safe for concurrent use.
type Static struct {
	name string

	mu   sync.RWMutex
	tabs []Tab
}

// NewStatic builds an in-memory sketch from analyzable tab texts.
func NewStatic(name string, texts ...string) *Static {
	tabs := make([]Tab, len(texts))
	for i, text := range texts {
		tabName := name + MainExtension
		if i > 0 {
			tabName = fmt.Sprintf("tab%d%s", i, MainExtension)
		}
		tabs[i] = Tab{Name: tabName, Text: text, Analyzable: true}
	}
	return &Static{name: name, tabs: tabs}
}

// Name implements Sketch.
func (s *Static) Name() string { return s.name }

// Tabs implements Sketch.
func (s *Static) Tabs() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// SetText replaces the text of the tab at idx.
func (s *Static) SetText(idx int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx >= 0 && idx < len(s.tabs) {
		s.tabs[idx].Text = text
	}
}

// AddTab appends a tab.
func (s *Static) AddTab(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs = append(s.tabs, tab)
}
