// Command debug_parser prints the AST the parser produces for a snippet of
// source, for manual inspection during grammar work.
package main

import (
	"fmt"
	"os"

	"charly/pkg/lexer"
	"charly/pkg/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug_parser '<code>'")
		os.Exit(1)
	}

	input := os.Args[1]
	program, errs := parser.ParseProgram("<debug_parser>", lexer.New(input))

	if len(errs) != 0 {
		fmt.Println("Parser errors:")
		for _, msg := range errs {
			fmt.Printf("  %s\n", msg)
		}
		fmt.Println()
	}

	if program != nil {
		fmt.Printf("AST:\n%s\n", program.Tree.String())
	}
}
