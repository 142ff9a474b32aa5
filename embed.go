// Package pantry provides the embedded seed data (records and tag catalogs)
// and an overlay filesystem that checks local disk first, falling back to embedded.
package pantry

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/record"
)

//go:embed seeds/*.yaml
var rawSeeds embed.FS

// Seeds is the embedded seed filesystem with the "seeds/" prefix stripped.
var Seeds = mustSub(rawSeeds, "seeds")

// ErrDuplicateID indicates a seed file lists two records with the same ID.
var ErrDuplicateID = errors.New("duplicate record id")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
// An empty localDir serves the embedded files only.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) || strings.Contains(name, `\`) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if o.localDir != "" {
		f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
		if err == nil {
			return f, nil
		}
	}
	return o.embedded.Open(name)
}

// SeedFiles returns the record and tag file names for kind,
// e.g. "fruits.yaml" and "fruit_tags.yaml".
func SeedFiles(kind record.Kind) (records, tags string) {
	return string(kind) + "s.yaml", string(kind) + "_tags.yaml"
}

type recordsFile struct {
	Records []record.Record `yaml:"records"`
}

type tagsFile struct {
	Tags []record.Tag `yaml:"tags"`
}

// LoadRecords reads a seed record file. Record IDs must be unique.
func LoadRecords(fsys fs.FS, name string) ([]record.Record, error) {
	var f recordsFile
	if err := decode(fsys, name, &f); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(f.Records))
	for _, r := range f.Records {
		if seen[r.ID] {
			return nil, fmt.Errorf("%s: %w %q", name, ErrDuplicateID, r.ID)
		}
		seen[r.ID] = true
	}
	if f.Records == nil {
		f.Records = []record.Record{}
	}
	return f.Records, nil
}

// LoadTags reads a tag catalog file.
func LoadTags(fsys fs.FS, name string) ([]record.Tag, error) {
	var f tagsFile
	if err := decode(fsys, name, &f); err != nil {
		return nil, err
	}
	return f.Tags, nil
}

// LoadSource reads the seed records and tag catalog of kind from fsys.
func LoadSource(fsys fs.FS, kind record.Kind) (catalog.Source, error) {
	recordsName, tagsName := SeedFiles(kind)
	seed, err := LoadRecords(fsys, recordsName)
	if err != nil {
		return catalog.Source{}, err
	}
	tags, err := LoadTags(fsys, tagsName)
	if err != nil {
		return catalog.Source{}, err
	}
	cat, err := catalog.New(kind, tags)
	if err != nil {
		return catalog.Source{}, fmt.Errorf("%s: %w", tagsName, err)
	}
	return catalog.Source{Kind: kind, Seed: seed, Tags: cat}, nil
}

// Registry returns a kind registry whose factories load from fsys.
func Registry(fsys fs.FS) *catalog.Registry {
	reg := catalog.NewRegistry()
	for _, kind := range record.Kinds() {
		reg.Register(kind, func() (catalog.Source, error) {
			return LoadSource(fsys, kind)
		})
	}
	return reg
}

func decode(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}
