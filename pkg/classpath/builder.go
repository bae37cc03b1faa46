package classpath

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/rewrite"
)

// GroupKind identifies one of the independently rebuilt classpath groups.
type GroupKind int

const (
	// GroupRuntime is the language runtime.
	GroupRuntime GroupKind = iota
	// GroupCore is the libraries bundled with the mode.
	GroupCore
	// GroupLibraries is the contributed libraries the sketch imports.
	GroupLibraries
	// GroupCodeFolder is the jars in the sketch's code folder.
	GroupCodeFolder

	groupCount
)

// String returns the group name.
func (k GroupKind) String() string {
	switch k {
	case GroupRuntime:
		return "runtime"
	case GroupCore:
		return "core"
	case GroupLibraries:
		return "libraries"
	case GroupCodeFolder:
		return "code"
	default:
		return "unknown"
	}
}

// Group is one built group. Groups are immutable and shared between
// classpaths that did not rebuild them.
type Group struct {
	Kind     GroupKind
	Entries  []string
	Listings []*Listing

	// Libraries names the contributed libraries in a GroupLibraries group.
	Libraries []string
}

// Packages returns the packages provided by the group, sorted.
func (g *Group) Packages() []string {
	if g == nil {
		return nil
	}
	set := make(map[string]struct{})
	for _, l := range g.Listings {
		for _, p := range l.Packages {
			set[p] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Classpath is the immutable result of Builder.Prepare.
type Classpath struct {
	groups [groupCount]*Group
	index  *Index
}

// Group returns the group of the given kind.
func (c *Classpath) Group(kind GroupKind) *Group {
	if c == nil || kind < 0 || kind >= groupCount {
		return nil
	}
	return c.groups[kind]
}

// Full is every entry in order: runtime, core, libraries, code folder.
func (c *Classpath) Full() []string {
	return c.entries(GroupRuntime)
}

// Search is the subset used for completion lookups. It leaves out the
// runtime.
func (c *Classpath) Search() []string {
	return c.entries(GroupCore)
}

func (c *Classpath) entries(from GroupKind) []string {
	if c == nil {
		return nil
	}
	var out []string
	for k := from; k < groupCount; k++ {
		if g := c.groups[k]; g != nil {
			out = append(out, g.Entries...)
		}
	}
	return out
}

// Index resolves packages and classes against the full classpath.
func (c *Classpath) Index() *Index {
	if c == nil {
		return nil
	}
	return c.index
}

// CodeFolderPackages are the packages sketches get imported implicitly.
func (c *Classpath) CodeFolderPackages() []string {
	return c.Group(GroupCodeFolder).Packages()
}

// Library is a contributed library found in a library directory.
type Library struct {
	Name     string
	Dir      string
	Jars     []string
	Packages []string
}

// Options configures a Builder.
type Options struct {
	Mode *Mode

	// CodeDir is the sketch's code folder. It may not exist.
	CodeDir string

	// LibraryDirs are sketchbook library folders searched after the mode's.
	LibraryDirs []string

	Scanner *Scanner
	Logger  *log.Logger
}

// Builder rebuilds only the classpath groups marked dirty. It is owned by
// one orchestrator; it is safe to mark groups from other goroutines while
// Prepare runs.
type Builder struct {
	opts   Options
	logger *log.Logger

	mu           sync.Mutex
	dirty        [groupCount]bool
	gen          [groupCount]uint64
	catalogDirty bool
	catalogGen   uint64

	// Only touched by Prepare.
	catalog   map[string]*Library
	libraries []*Library
}

// NewBuilder creates a builder with every group dirty.
func NewBuilder(opts Options) *Builder {
	if opts.Mode == nil {
		opts.Mode = DefaultMode()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Scanner == nil {
		opts.Scanner = NewScanner(nil, 0, opts.Logger)
	}
	b := &Builder{opts: opts, logger: opts.Logger, catalogDirty: true}
	for k := range b.dirty {
		b.dirty[k] = true
	}
	return b
}

// Mode returns the mode the builder resolves against.
func (b *Builder) Mode() *Mode {
	return b.opts.Mode
}

// MarkLibrariesChanged records that installed libraries changed. The core
// and library groups are rebuilt on the next Prepare and the library
// catalog is rescanned.
func (b *Builder) MarkLibrariesChanged() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalogDirty = true
	b.catalogGen++
	b.mark(GroupCore)
	b.mark(GroupLibraries)
}

// MarkLibraryImportsChanged records that the sketch's imports changed.
func (b *Builder) MarkLibraryImportsChanged() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mark(GroupLibraries)
}

// MarkCodeFolderChanged records that the code folder changed.
func (b *Builder) MarkCodeFolderChanged() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mark(GroupCodeFolder)
}

func (b *Builder) mark(kind GroupKind) {
	b.dirty[kind] = true
	b.gen[kind]++
}

// Dirty reports whether kind will be rebuilt on the next Prepare.
func (b *Builder) Dirty(kind GroupKind) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty[kind]
}

// Prepare returns the classpath for imports. Groups that are not dirty are
// shared with prev. When nothing is dirty prev itself is returned. Dirty
// flags are cleared only when their group was rebuilt successfully.
func (b *Builder) Prepare(ctx context.Context, prev *Classpath, imports []rewrite.Import) (*Classpath, error) {
	b.mu.Lock()
	dirty, gen := b.dirty, b.gen
	catalogDirty, catalogGen := b.catalogDirty, b.catalogGen
	b.mu.Unlock()

	if prev != nil && dirty == [groupCount]bool{} {
		return prev, nil
	}

	next := &Classpath{}
	var rebuilt [groupCount]bool
	for k := range groupCount {
		if prev != nil && !dirty[k] && prev.groups[k] != nil {
			next.groups[k] = prev.groups[k]
			continue
		}
		group, err := b.build(ctx, k, imports, catalogDirty)
		if err != nil {
			return nil, fmt.Errorf("build %s classpath: %w", k, err)
		}
		next.groups[k] = group
		rebuilt[k] = true
		b.logger.Debug("classpath group rebuilt",
			logging.FieldGroup, k.String(),
			logging.FieldEntries, len(group.Entries))
	}

	var listings []*Listing
	for _, g := range next.groups {
		listings = append(listings, g.Listings...)
	}
	next.index = NewIndex(listings...)

	b.mu.Lock()
	// A mark that arrived while building keeps its group dirty.
	for k, done := range rebuilt {
		if done && gen[k] == b.gen[k] {
			b.dirty[k] = false
		}
	}
	if rebuilt[GroupLibraries] && catalogGen == b.catalogGen {
		b.catalogDirty = false
	}
	b.mu.Unlock()

	return next, nil
}

func (b *Builder) build(ctx context.Context, kind GroupKind, imports []rewrite.Import, catalogDirty bool) (*Group, error) {
	group := &Group{Kind: kind}
	switch kind {
	case GroupRuntime:
		group.Entries = b.expand(b.opts.Mode.RuntimePaths)
	case GroupCore:
		group.Entries = b.expand(b.opts.Mode.CoreLibraries)
	case GroupLibraries:
		if catalogDirty || b.catalog == nil {
			if err := b.scanCatalog(ctx); err != nil {
				return nil, err
			}
		}
		for _, lib := range b.selectLibraries(imports) {
			group.Libraries = append(group.Libraries, lib.Name)
			group.Entries = append(group.Entries, lib.Jars...)
		}
	case GroupCodeFolder:
		if b.opts.CodeDir != "" {
			group.Entries = archivesIn(b.opts.CodeDir)
		}
	}

	listings, err := b.opts.Scanner.Scan(ctx, group.Entries)
	if err != nil {
		return nil, err
	}
	group.Listings = listings
	return group, nil
}

// expand replaces a directory of archives with the archives it holds. A
// directory without archives is a class directory and kept as is.
func (b *Builder) expand(paths []string) []string {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			b.logger.Warn("classpath entry skipped", logging.FieldPath, p, logging.FieldError, err)
			continue
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		if archives := archivesIn(p); len(archives) > 0 {
			out = append(out, archives...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

func archivesIn(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && IsArchive(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(out)
	return out
}

// scanCatalog maps every package of every installed library to the first
// library providing it.
func (b *Builder) scanCatalog(ctx context.Context) error {
	dirs := append(slices.Clone(b.opts.Mode.LibraryDirs), b.opts.LibraryDirs...)
	libs := findLibraries(dirs)

	catalog := make(map[string]*Library)
	for _, lib := range libs {
		listings, err := b.opts.Scanner.Scan(ctx, lib.Jars)
		if err != nil {
			return fmt.Errorf("library %s: %w", lib.Name, err)
		}
		lib.Packages = NewIndex(listings...).Packages()
		for _, pkg := range lib.Packages {
			if owner, ok := catalog[pkg]; ok {
				if owner != lib {
					b.logger.Warn("package provided by more than one library",
						logging.FieldPackage, pkg,
						logging.FieldLibrary, owner.Name,
						"ignored", lib.Name)
				}
				continue
			}
			catalog[pkg] = lib
		}
	}
	b.catalog = catalog
	b.libraries = libs
	return nil
}

func findLibraries(dirs []string) []*Library {
	var libs []*Library
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			libDir := filepath.Join(dir, e.Name())
			jars := archivesIn(filepath.Join(libDir, "library"))
			if len(jars) == 0 {
				continue
			}
			libs = append(libs, &Library{Name: e.Name(), Dir: libDir, Jars: jars})
		}
	}
	return libs
}

// selectLibraries returns the libraries providing the imported packages,
// in import order, without duplicates.
func (b *Builder) selectLibraries(imports []rewrite.Import) []*Library {
	var out []*Library
	seen := make(map[*Library]bool)
	for _, imp := range imports {
		lib, ok := b.catalog[imp.Package()]
		if !ok || seen[lib] {
			continue
		}
		seen[lib] = true
		out = append(out, lib)
	}
	return out
}

// Libraries returns every installed library, scanning the library folders
// if needed. It must not run concurrently with Prepare.
func (b *Builder) Libraries(ctx context.Context) ([]*Library, error) {
	b.mu.Lock()
	stale := b.catalogDirty || b.catalog == nil
	b.mu.Unlock()
	if stale {
		if err := b.scanCatalog(ctx); err != nil {
			return nil, err
		}
	}
	return slices.Clone(b.libraries), nil
}
