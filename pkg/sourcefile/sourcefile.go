// Package sourcefile is the source-file I/O collaborator spec.md §1 treats
// as external to the evaluator: it turns a path on disk into source text
// and the path string the evaluator attaches to trace.Context.
package sourcefile

import "os"

// SourceFile is an opened source: its path and contents.
type SourceFile struct {
	Path string
	Text string
}

// Open reads path from disk. The evaluator never reads files itself
// (spec.md §1's external collaborators); this is the one seam that does.
func Open(path string) (*SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &SourceFile{Path: path, Text: string(data)}, nil
}
