// Package driver wires discovery, scanning, parsing, and extraction
// together: it runs one pass over a Python installation's import search
// path and returns, for every reachable .py file, its resolved module
// name and public symbols. A per-file error is logged and recorded
// against that file; it never aborts the run.
package driver

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/davidrios/pyimportls/internal/arena"
	"github.com/davidrios/pyimportls/internal/config"
	"github.com/davidrios/pyimportls/internal/extractor"
	"github.com/davidrios/pyimportls/internal/modpath"
	"github.com/davidrios/pyimportls/internal/parser"
	"github.com/davidrios/pyimportls/internal/pool"
	"github.com/davidrios/pyimportls/internal/pydiscovery"
	"github.com/davidrios/pyimportls/internal/scanner"
)

// FileResult is what one .py file contributed to a run.
type FileResult struct {
	Path    string
	Module  string
	Symbols []extractor.Symbol
	Err     error
}

// Result aggregates an entire run. RunID uniquely identifies the run in
// logs, independent of any caller-supplied correlation id.
type Result struct {
	RunID   string
	Roots   []string
	Files   []FileResult
	Scanned int
	Errored int
}

// Run discovers the interpreter's sys.path (or uses cfg.Roots if set,
// overriding discovery), scans every root for .py files, and fans
// parsing and extraction out across a pool sized by cfg.Pool. It
// returns once every discovered file has been processed.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	runID := uuid.New().String()
	log.Printf("[driver] run %s starting", runID)

	roots := cfg.Roots
	if len(roots) == 0 {
		discovered, err := pydiscovery.Discover(ctx, cfg.Interpreter)
		if err != nil {
			return nil, err
		}
		roots = discovered
	}

	it := scanner.New(roots)
	defer it.Close()

	p := pool.New(pool.Config{
		MaxThreads: cfg.Pool.MaxThreads,
		StackSize:  cfg.Pool.StackSize,
	})

	var (
		mu      sync.Mutex
		results []FileResult
		wg      sync.WaitGroup
	)

	for {
		file, ok := it.Next()
		if !ok {
			break
		}

		wg.Add(1)
		f := file
		task := pool.NewTask(func(_ any) {
			defer wg.Done()
			res := processFile(f, cfg)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}, nil)

		if err := p.Schedule(pool.NewBatch(task)); err != nil {
			log.Printf("[driver] schedule %s: %v", f.AbsPath(), err)
			wg.Done()
		}
	}

	wg.Wait()
	p.Shutdown()
	p.Join()

	out := &Result{RunID: runID, Roots: roots, Files: results}
	for _, r := range results {
		out.Scanned++
		if r.Err != nil {
			out.Errored++
		}
	}
	log.Printf("[driver] run %s done: scanned=%d errored=%d", runID, out.Scanned, out.Errored)
	return out, nil
}

// processFile reads, parses, and extracts one file. Each file gets its
// own short-lived arena: extracted symbol names are copied out of it
// before the source buffer and parse tree are released, so a run over a
// large installation never keeps every file's full contents alive just
// because a handful of identifier slices still point into them.
func processFile(f *scanner.PyFile, cfg *config.Config) FileResult {
	path := f.AbsPath()

	src, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[driver] read %s: %v", path, err)
		return FileResult{Path: path, Err: err}
	}

	h, err := parser.Parse(src)
	if err != nil {
		log.Printf("[driver] parse %s: %v", path, err)
		return FileResult{Path: path, Err: err}
	}
	defer h.Close()

	symbols, err := extractor.Extract(h)
	if err != nil {
		log.Printf("[driver] extract %s: %v", path, err)
		return FileResult{Path: path, Err: err}
	}

	modName, err := modpath.Resolve(path)
	if err != nil {
		log.Printf("[driver] module path %s: %v", path, err)
	}

	return FileResult{Path: path, Module: modName, Symbols: detach(symbols, cfg)}
}

// detach copies each symbol's name out of the source buffer it borrowed
// from, using a per-file arena. If the arena is exhausted (a
// pathologically large file) it falls back to an individual copy rather
// than dropping the symbol.
func detach(symbols []extractor.Symbol, cfg *config.Config) []extractor.Symbol {
	if len(symbols) == 0 {
		return nil
	}
	a := arena.New(cfg.Arena.InitialBytes, cfg.Arena.MaxBytes)
	out := make([]extractor.Symbol, len(symbols))
	for i, s := range symbols {
		buf := a.Alloc(len(s.Name), 1)
		if buf == nil {
			buf = append([]byte(nil), s.Name...)
		} else {
			copy(buf, s.Name)
		}
		out[i] = extractor.Symbol{Kind: s.Kind, Name: buf}
	}
	return out
}
