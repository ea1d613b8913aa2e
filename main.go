// m2nav indexes a Magento 2 workspace and resolves references in XML
// configuration and RequireJS scripts to their declaration sites.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"m2nav/internal/model"
	"m2nav/internal/nav"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "index":
			return runIndex(args[1:], stdout, stderr)
		case "def":
			return runDef(args[1:], stdout, stderr)
		case "-V", "--version", "version":
			_, _ = fmt.Fprintf(stdout, "m2nav %s\n", version)
			return nil
		}
	}
	usage(stderr)
	return fmt.Errorf("expected a subcommand")
}

func usage(stderr io.Writer) {
	fmt.Fprintf(stderr, `Usage:
  m2nav index [flags] [root ...]          index workspaces and print a summary
  m2nav def [flags] FILE:LINE:COL [root ...]
                                          resolve the reference under a cursor
                                          (LINE and COL are one-based)
  m2nav version                           show version and exit
`)
}

func runIndex(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("m2nav index", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		verbose bool
		dump    bool
	)
	fs.BoolVar(&verbose, "v", false, "enable debug logging")
	fs.BoolVar(&dump, "dump", false, "list every indexed fully-qualified name")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	srv := nav.New(newLogger(stderr, verbose))
	roots, err := workspaceRoots(fs.Args())
	if err != nil {
		return err
	}
	for _, root := range roots {
		srv.Index().AddWorkspace(root)
		srv.Index().IndexWorkspace(root)
	}

	classes, modules := srv.Index().Stats()
	_, _ = fmt.Fprintf(stdout, "indexed %d classes across %d modules\n", classes, modules)
	if dump {
		for _, fqn := range srv.Index().ClassNames() {
			_, _ = fmt.Fprintln(stdout, fqn)
		}
	}
	return nil
}

func runDef(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("m2nav def", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var verbose bool
	fs.BoolVar(&verbose, "v", false, "enable debug logging")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("expected FILE:LINE:COL")
	}

	file, pos, err := parseCursor(fs.Arg(0))
	if err != nil {
		return err
	}

	srv := nav.New(newLogger(stderr, verbose))
	roots, err := workspaceRoots(fs.Args()[1:])
	if err != nil {
		return err
	}
	for _, root := range roots {
		srv.Index().AddWorkspace(root)
		srv.Index().IndexWorkspace(root)
	}

	locations := srv.Definition(file, pos)
	if len(locations) == 0 {
		return fmt.Errorf("no definition found")
	}
	for _, loc := range locations {
		_, _ = fmt.Fprintf(stdout, "%s:%d:%d\n", loc.File, loc.Span.Start.Line+1, loc.Span.Start.Col+1)
	}
	return nil
}

// parseCursor splits FILE:LINE:COL, converting the one-based cursor to the
// zero-based positions used internally.
func parseCursor(arg string) (string, model.Position, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 3 {
		return "", model.Position{}, fmt.Errorf("%s: expected FILE:LINE:COL", arg)
	}
	line, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return "", model.Position{}, fmt.Errorf("%s: bad line number", arg)
	}
	col, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", model.Position{}, fmt.Errorf("%s: bad column number", arg)
	}
	if line < 1 || col < 1 {
		return "", model.Position{}, fmt.Errorf("%s: line and column are one-based", arg)
	}
	file := strings.Join(parts[:len(parts)-2], ":")
	file, err = filepath.Abs(file)
	if err != nil {
		return "", model.Position{}, fmt.Errorf("resolving %s: %w", arg, err)
	}
	return file, model.Position{Line: line - 1, Col: col - 1}, nil
}

// workspaceRoots resolves the positional root arguments, defaulting to the
// current directory.
func workspaceRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var roots []string
	for _, arg := range args {
		root, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving root: %w", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("root path: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s: not a directory", root)
		}
		roots = append(roots, root)
	}
	return roots, nil
}

func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg). All current
// flags are boolean, so no value lookahead is needed.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
