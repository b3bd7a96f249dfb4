package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/surtype"
	"github.com/syssam/surtype/codegen"
	"github.com/syssam/surtype/codegen/golang"
	"github.com/syssam/surtype/codegen/typescript"
	"github.com/syssam/surtype/diag"
)

// sourceExt is the extension of schema and query source files.
const sourceExt = ".surql"

// A Compiler runs the full pipeline for one project.
type Compiler struct {
	Config *Config

	// Dir is the directory of the configuration file. Relative paths in
	// the configuration resolve against it.
	Dir string

	// Stderr receives diagnostic output. Defaults to os.Stderr.
	Stderr io.Writer
}

// New loads the configuration at configPath and returns a ready
// compiler.
func New(configPath string) (*Compiler, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	return &Compiler{Config: cfg, Dir: filepath.Dir(abs), Stderr: os.Stderr}, nil
}

// Run executes one full pipeline pass: build the registry, analyze
// every query file concurrently, report diagnostics, and write the
// generated artifact. Analysis continues past errors so one report
// covers the whole project; Run returns an AnalysisError when any
// Error-severity diagnostic was collected, in which case no artifact
// is written.
func (c *Compiler) Run(ctx context.Context) error {
	_, err := c.run(ctx, true)
	return err
}

// Check runs analysis and reports diagnostics without writing output.
func (c *Compiler) Check(ctx context.Context) error {
	_, err := c.run(ctx, false)
	return err
}

func (c *Compiler) run(ctx context.Context, write bool) (diag.List, error) {
	schemaSources, err := c.loadSources(c.Config.Schema.Path)
	if err != nil {
		return nil, err
	}
	reg, all := surtype.BuildRegistry(schemaSources)

	querySources, err := c.loadSources(c.Config.Queries.Path)
	if err != nil {
		return nil, err
	}

	// The registry is immutable past this point, so query files are
	// independent of each other and analyze in parallel.
	units := make([]codegen.Unit, len(querySources))
	fileDiags := make([]diag.List, len(querySources))
	g, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, src := range querySources {
		i, src := i, src
		g.Go(func() error {
			descs, ds := surtype.AnalyzeQuery(reg, src)
			mu.Lock()
			units[i] = codegen.Unit{Name: stem(src.Path), Query: src.Text, Descriptors: descs}
			fileDiags[i] = ds
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, ds := range fileDiags {
		all.Add(ds...)
	}
	all.SortByLocation()
	c.report(all)

	if err := surtype.NewAnalysisError(all); err != nil {
		return all, err
	}
	if !write {
		return all, nil
	}
	out, err := c.generator().Generate(units)
	if err != nil {
		return all, err
	}
	dest := c.resolve(c.Config.Output.Path)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return all, err
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return all, err
	}
	return all, nil
}

func (c *Compiler) generator() codegen.Generator {
	if c.Config.Output.Language == "go" {
		return golang.New(c.Config.Output.Package)
	}
	return typescript.New()
}

func (c *Compiler) report(ds diag.List) {
	w := c.Stderr
	if w == nil {
		w = os.Stderr
	}
	for _, d := range ds {
		fmt.Fprintln(w, d)
	}
}

// loadSources reads the .surql file at path, or every .surql file under
// it when path is a directory, in lexical walk order.
func (c *Compiler) loadSources(path string) ([]surtype.Source, error) {
	root := c.resolve(path)
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	var files []string
	if info.IsDir() {
		err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == sourceExt {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(files)
	} else {
		files = []string{root}
	}
	sources := make([]surtype.Source, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, surtype.Source{Path: c.display(f), Text: string(data)})
	}
	return sources, nil
}

func (c *Compiler) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// display shortens absolute paths back to config-relative form for
// diagnostics.
func (c *Compiler) display(path string) string {
	if rel, err := filepath.Rel(c.Dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
