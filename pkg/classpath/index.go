package classpath

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

const (
	classSuffix   = ".class"
	jmodClassRoot = "classes/"
)

// Listing is what one classpath entry provides.
type Listing struct {
	Path     string   `msgpack:"path"`
	Packages []string `msgpack:"packages"`

	// Classes are qualified top-level and member class names with '$'
	// replaced by '.'.
	Classes []string `msgpack:"classes"`
}

// IsArchive reports whether path names a jar, zip, or jmod file.
func IsArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jar", ".zip", ".jmod":
		return true
	}
	return false
}

// ScanEntry lists the packages and classes of an archive or class
// directory.
func ScanEntry(ctx context.Context, entry string) (*Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(entry)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", entry, err)
	}

	var names []string
	if info.IsDir() {
		names, err = classFilesInDir(ctx, entry)
	} else {
		names, err = classFilesInArchive(entry)
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", entry, err)
	}
	return listingOf(entry, names), nil
}

// classFilesInArchive opens jars and jmods alike. A jmod is a zip with a
// four byte header, which archive/zip skips as a prefix.
func classFilesInArchive(file string) ([]string, error) {
	r, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	jmod := strings.EqualFold(filepath.Ext(file), ".jmod")
	var names []string
	for _, f := range r.File {
		name := f.Name
		if jmod {
			if !strings.HasPrefix(name, jmodClassRoot) {
				continue
			}
			name = strings.TrimPrefix(name, jmodClassRoot)
		}
		names = append(names, name)
	}
	return names, nil
}

func classFilesInDir(ctx context.Context, dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), classSuffix) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	return names, err
}

func listingOf(entry string, names []string) *Listing {
	pkgs := make(map[string]struct{})
	classes := make(map[string]struct{})
	for _, name := range names {
		if !strings.HasSuffix(name, classSuffix) || strings.HasPrefix(name, "META-INF/") {
			continue
		}
		base := path.Base(name)
		if base == "module-info.class" || base == "package-info.class" {
			continue
		}
		dir := path.Dir(name)
		pkg := ""
		if dir != "." {
			pkg = strings.ReplaceAll(dir, "/", ".")
			pkgs[pkg] = struct{}{}
		}
		class := strings.ReplaceAll(strings.TrimSuffix(base, classSuffix), "$", ".")
		if anonymous(class) {
			continue
		}
		if pkg != "" {
			class = pkg + "." + class
		}
		classes[class] = struct{}{}
	}
	return &Listing{
		Path:     entry,
		Packages: sortedKeys(pkgs),
		Classes:  sortedKeys(classes),
	}
}

// anonymous reports names like Outer.1 or Outer.1Local.
func anonymous(class string) bool {
	for _, part := range strings.Split(class, ".") {
		if part != "" && part[0] >= '0' && part[0] <= '9' {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Index answers package and class lookups over a set of listings. It
// implements check.Resolver.
type Index struct {
	packages map[string]struct{}
	classes  map[string]struct{}
}

// NewIndex merges listings into one index.
func NewIndex(listings ...*Listing) *Index {
	idx := &Index{
		packages: make(map[string]struct{}),
		classes:  make(map[string]struct{}),
	}
	for _, l := range listings {
		if l == nil {
			continue
		}
		for _, p := range l.Packages {
			idx.packages[p] = struct{}{}
		}
		for _, c := range l.Classes {
			idx.classes[c] = struct{}{}
		}
	}
	return idx
}

// HasPackage reports whether any listing provides pkg.
func (x *Index) HasPackage(pkg string) bool {
	if x == nil {
		return false
	}
	_, ok := x.packages[pkg]
	return ok
}

// HasClass reports whether the qualified class exists.
func (x *Index) HasClass(qualified string) bool {
	if x == nil {
		return false
	}
	_, ok := x.classes[qualified]
	return ok
}

// Packages returns all indexed packages, sorted.
func (x *Index) Packages() []string {
	if x == nil {
		return nil
	}
	return sortedKeys(x.packages)
}

// ClassCount is the number of indexed classes.
func (x *Index) ClassCount() int {
	if x == nil {
		return 0
	}
	return len(x.classes)
}
