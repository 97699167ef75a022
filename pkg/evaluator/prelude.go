package evaluator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charly/pkg/lexer"
	"charly/pkg/parser"
	"charly/pkg/sourcefile"
	"charly/pkg/trace"
)

// preludeRelativePath is fixed by spec.md §5: the prelude always lives at
// $CHARLYDIR/src/std/prelude.charly.
const preludeRelativePath = "src/std/prelude.charly"

// loadPrelude resolves $CHARLYDIR (or dir, when non-empty), reads the
// prelude source, parses it, and executes it against ev.Global. Any failure
// — unresolved CHARLYDIR, unreadable file, parse errors, or a runtime error
// while running it — aborts construction (spec.md §5).
func loadPrelude(ev *Evaluator, dir string) error {
	if dir == "" {
		dir = os.Getenv("CHARLYDIR")
	}
	if dir == "" {
		return trace.NewError(trace.PreludeMissing, trace.NewContext("", ev.Stack), nil, "CHARLYDIR is not set")
	}

	path := filepath.Join(dir, preludeRelativePath)
	src, err := sourcefile.Open(path)
	if err != nil {
		return trace.NewError(trace.PreludeMissing, trace.NewContext(path, ev.Stack), nil, "could not read prelude: %s", err)
	}

	program, errs := parser.ParseProgram(path, lexer.New(src.Text))
	if len(errs) > 0 {
		return fmt.Errorf("prelude %s has %d syntax error(s): %s", path, len(errs), strings.Join(errs, "; "))
	}

	if _, err := ev.ExecProgram(program, ev.Global); err != nil {
		return fmt.Errorf("prelude %s failed to run: %w", path, err)
	}
	return nil
}
