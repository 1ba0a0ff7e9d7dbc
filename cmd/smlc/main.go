// Command smlc elaborates Standard ML source files and prints the inferred
// top-level declarations, or the first diagnostic of each failing file.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/smlkit/smlc/internal/config"
	"github.com/smlkit/smlc/internal/diagnostics"
	"github.com/smlkit/smlc/internal/pipeline"
	"github.com/smlkit/smlc/internal/prettyprinter"
)

const usage = `usage: smlc [options] [file.sml ...]

With no files, sources are taken from an smlc.yaml project file in the
current directory (entry plus every source file under its source_roots).

options:
  -v           log pipeline stages
  --version    print version and exit
`

func main() {
	var files []string
	verbose := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v":
			verbose = true
		case "--version":
			fmt.Println("smlc", config.Version)
			return
		case "-h", "--help":
			fmt.Print(usage)
			return
		default:
			if len(arg) > 0 && arg[0] == '-' {
				fmt.Fprintf(os.Stderr, "smlc: unknown option %q\n%s", arg, usage)
				os.Exit(2)
			}
			if !config.HasSourceExt(arg) {
				fmt.Fprintf(os.Stderr, "smlc: %s: not a recognized source file\n", arg)
				os.Exit(2)
			}
			files = append(files, arg)
		}
	}
	if len(files) == 0 {
		var err error
		files, err = projectFiles(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "smlc: %v\n", err)
			os.Exit(1)
		}
	}
	if len(files) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	results, err := pipeline.RunFiles(files, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "smlc: %v\n", err)
		os.Exit(1)
	}

	color := isatty.IsTerminal(os.Stderr.Fd())
	failed := false
	for _, res := range results {
		for _, d := range res.Diags {
			printDiagnostic(res.FilePath, d, color)
			if d.Severity != diagnostics.Warning {
				failed = true
			}
		}
		if !res.Failed() && res.Elab != nil {
			fmt.Print(prettyprinter.New(res.Elab).Program())
		}
	}
	if failed {
		os.Exit(1)
	}
}

// projectFiles consults the smlc.yaml in dir for the sources a bare
// `smlc` invocation should compile: the entry file first, then every
// source file directly under each source root. A missing project file
// yields no files.
func projectFiles(dir string) ([]string, error) {
	proj, err := config.LoadProject(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	if proj.Entry != "" {
		add(filepath.Join(dir, proj.Entry))
	}
	for _, root := range proj.SourceRoots {
		entries, err := os.ReadDir(filepath.Join(dir, root))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && config.HasSourceExt(e.Name()) {
				add(filepath.Join(dir, root, e.Name()))
			}
		}
	}
	return files, nil
}

func printDiagnostic(path string, d *diagnostics.Diagnostic, color bool) {
	if color {
		code := "31" // red for errors and bugs
		if d.Severity == diagnostics.Warning {
			code = "33"
		}
		fmt.Fprintf(os.Stderr, "%s: \x1b[%sm%s\x1b[0m\n", path, code, d.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", path, d.Error())
}
