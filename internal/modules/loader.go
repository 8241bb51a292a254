package modules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/speclink/internal/ast"
	"github.com/funvibe/speclink/internal/utils"
)

// LoadError reports a malformed forest document.
type LoadError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *LoadError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Loader reads forest documents. Ids keep increasing across every document
// a loader reads, so several files can be combined into one forest.
type Loader struct {
	LoadedFiles map[string]*Forest // Cache of loaded documents by absolute path
	ModuleFiles map[string]string  // Top-level module name -> document that declared it
	lastID      uint64
}

func NewLoader() *Loader {
	return &Loader{
		LoadedFiles: make(map[string]*Forest),
		ModuleFiles: make(map[string]string),
	}
}

// Load reads every forest document under paths (files, or directories whose
// forest files are read in name order) and merges them into one forest.
func (l *Loader) Load(paths ...string) (*Forest, error) {
	files, err := utils.ExpandForestPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no forest documents found")
	}

	forest := &Forest{Sources: make(ast.SourceMap)}
	seen := make(map[*Forest]bool, len(files))
	for _, file := range files {
		part, err := l.LoadFile(file)
		if err != nil {
			return nil, err
		}
		if seen[part] {
			continue
		}
		seen[part] = true
		forest.Files = append(forest.Files, part.Files...)
		forest.Modules = append(forest.Modules, part.Modules...)
		for id, loc := range part.Sources {
			forest.Sources[id] = loc
		}
	}
	return forest, nil
}

// LoadFile reads a single forest document. A document is read at most once
// per loader.
func (l *Loader) LoadFile(path string) (*Forest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve path %s: %w", path, err)
	}
	if forest, ok := l.LoadedFiles[absPath]; ok {
		return forest, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("could not read forest %s: %w", path, err)
	}
	forest, err := l.Parse(path, data)
	if err != nil {
		return nil, err
	}
	l.LoadedFiles[absPath] = forest
	return forest, nil
}

// Parse decodes a forest document held in memory. file is only used for
// positions and messages.
func (l *Loader) Parse(file string, data []byte) (*Forest, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{File: file, Message: "empty document"}
		}
		return nil, &LoadError{File: file, Message: err.Error()}
	}

	d := &decoder{file: file, nextID: l.lastID + 1, sources: make(ast.SourceMap)}
	modules, err := d.forest(&doc)
	if err != nil {
		return nil, err
	}

	for _, m := range modules {
		if prev, ok := l.ModuleFiles[m.Name]; ok {
			loc := d.sources[m.ID]
			return nil, &LoadError{File: file, Line: loc.Line, Column: loc.Column,
				Message: fmt.Sprintf("module %s already declared in %s", m.Name, prev)}
		}
	}
	for _, m := range modules {
		l.ModuleFiles[m.Name] = file
	}
	l.lastID = d.nextID - 1

	return &Forest{Files: []string{file}, Modules: modules, Sources: d.sources}, nil
}
