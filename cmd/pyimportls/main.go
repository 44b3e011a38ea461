// Command pyimportls discovers a Python installation's import search
// path, scans it for .py sources, and prints every public module-level
// symbol it finds.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/davidrios/pyimportls/internal/config"
	"github.com/davidrios/pyimportls/internal/driver"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (optional; defaults are used if omitted)")
	interpreter := flag.String("interpreter", "", "override the interpreter binary used for sys.path discovery")
	rootsFlag := flag.String("roots", "", "comma-separated root directories, bypassing interpreter discovery")
	workers := flag.Int("workers", 0, "override pool.max_threads")
	stackSize := flag.Int("stack-size", 0, "override pool.stack_size")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *interpreter != "" {
		cfg.Interpreter = *interpreter
	}
	if *rootsFlag != "" {
		cfg.Roots = splitRoots(*rootsFlag)
	}
	if *workers > 0 {
		cfg.Pool.MaxThreads = *workers
	}
	if *stackSize > 0 {
		cfg.Pool.StackSize = *stackSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown: received signal")
		cancel()
	}()

	log.Printf("pyimportls starting: interpreter=%s max_threads=%d roots=%v",
		cfg.Interpreter, cfg.Pool.MaxThreads, cfg.Roots)

	res, err := driver.Run(ctx, cfg)
	signal.Stop(sigCh)
	cancel()
	if err != nil {
		log.Printf("run failed: %v", err)
		os.Exit(1)
	}

	printSummary(res)

	if res.Errored > 0 {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// truncatePath shortens a path with an ellipsis-marked prefix cut so a
// summary line never wraps past a narrow terminal. width <= 0 means
// unknown and disables truncation.
func truncatePath(path string, width int) string {
	const reserve = 24 // room for the rest of the line's columns
	limit := width - reserve
	if width <= 0 || limit <= 3 || len(path) <= limit {
		return path
	}
	return "..." + path[len(path)-(limit-3):]
}

func splitRoots(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// printSummary writes a per-module listing of discovered symbols,
// colorized when stdout is a terminal and plain otherwise.
func printSummary(res *driver.Result) {
	out := colorable.NewColorableStdout()
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	width := terminalWidth()

	const (
		reset  = "\x1b[0m"
		bold   = "\x1b[1m"
		green  = "\x1b[32m"
		yellow = "\x1b[33m"
		red    = "\x1b[31m"
	)
	wrap := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + reset
	}

	for _, f := range res.Files {
		path := truncatePath(f.Path, width)
		if f.Err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", wrap(red, "ERR"), path, f.Err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", wrap(bold, f.Module), path)
		for _, sym := range f.Symbols {
			fmt.Fprintf(out, "  %s %s\n", wrap(green, sym.Kind.String()), sym.Name)
		}
	}

	fmt.Fprintf(out, "%s scanned=%d errored=%d roots=%d\n",
		wrap(yellow, "summary:"), res.Scanned, res.Errored, len(res.Roots))
}
