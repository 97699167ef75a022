// Command charly runs .charly scripts (spec.md §1, §5) or starts a REPL,
// following cmd/flowac's run/repl split.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"charly/pkg/evaluator"
	"charly/pkg/lexer"
	"charly/pkg/object"
	"charly/pkg/parser"
	"charly/pkg/sourcefile"
	"charly/pkg/trace"
)

const prompt = ">>> "

func main() {
	_ = godotenv.Load() // optional: CHARLYDIR, SMTP_*, etc. (spec.md §5, SPEC_FULL.md §2)

	noPrelude := flag.Bool("no-prelude", false, "skip loading the prelude (SPEC_FULL.md §4)")
	charlyDir := flag.String("charlydir", "", "override $CHARLYDIR")
	repl := flag.Bool("repl", false, "start an interactive REPL")
	flag.Usage = printUsage
	flag.Parse()

	ev, err := evaluator.New(evaluator.Options{LoadPrelude: !*noPrelude, CharlyDir: *charlyDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %s\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	switch {
	case *repl || len(args) == 0:
		runREPL(ev)
	default:
		runFile(ev, args[0])
	}
}

func printUsage() {
	fmt.Println("charly - a small dynamically-typed scripting language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  charly <script.charly>     Run a script")
	fmt.Println("  charly --repl              Start an interactive REPL")
	fmt.Println("  charly --no-prelude ...    Skip loading the standard prelude")
	fmt.Println("  charly --charlydir <dir>   Override $CHARLYDIR")
}

func runFile(ev *evaluator.Evaluator, filename string) {
	src, err := sourcefile.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %s\n", err)
		os.Exit(1)
	}

	program, errs := parser.ParseProgram(src.Path, lexer.New(src.Text))
	if len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "parser errors:")
		for _, msg := range errs {
			fmt.Fprintln(os.Stderr, "\t"+msg)
		}
		os.Exit(1)
	}

	if _, err := ev.ExecProgram(program, ev.Global); err != nil {
		printRuntimeError(err)
		os.Exit(1)
	}
}

func runREPL(ev *evaluator.Evaluator) {
	scanner := bufio.NewScanner(os.Stdin)
	replScope := object.NewScope(ev.Global)

	fmt.Println("charly REPL — type an expression or statement and press Enter")
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		program, errs := parser.ParseProgram("<repl>", lexer.New(line))
		if len(errs) > 0 {
			for _, msg := range errs {
				fmt.Println("parser error:", msg)
			}
			continue
		}

		value, err := ev.ExecProgram(program, replScope)
		if err != nil {
			printRuntimeError(err)
			continue
		}
		io.WriteString(os.Stdout, value.Inspect())
		io.WriteString(os.Stdout, "\n")
	}
}

func printRuntimeError(err error) {
	if re, ok := err.(*trace.RuntimeError); ok {
		fmt.Fprintln(os.Stderr, re.Render())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
