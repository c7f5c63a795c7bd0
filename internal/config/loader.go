package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> last writer
	Files   []string          // loaded files, in merge order
}

// EnvConfigPath overrides DefaultConfigPath when set.
const EnvConfigPath = "NOSYTOS_CONFIG"

func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "nosytos", "config.yaml"), nil
}

// Load reads the merged configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields the
// built-in desktop.
func LoadFromPath(path string) (*LoadResult, error) {
	raw := RawConfig{}
	sources := map[string]Source{}
	var files []string

	exists, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		if raw, sources, files, err = loadRawMerged(path); err != nil {
			return nil, err
		}
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err != nil {
		return nil, attachSourceContext(err, sources)
	}
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{Config: cfg, Sources: sources, Files: files}, nil
}

// include is one entry of an include: key, with the position it was written at.
type include struct {
	target string
	at     Source
}

// loader walks a config file and its includes. visited holds every file
// already merged; chain is the include path leading to the current file.
type loader struct {
	visited map[string]bool
	chain   []string
	sources map[string]Source
	files   []string
}

func loadRawMerged(path string) (RawConfig, map[string]Source, []string, error) {
	l := &loader{visited: map[string]bool{}, sources: map[string]Source{}}
	raw, err := l.load(path)
	if err != nil {
		return RawConfig{}, nil, nil, err
	}
	return raw, l.sources, l.files, nil
}

func (l *loader) load(path string) (RawConfig, error) {
	file, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, err
	}
	if slices.Contains(l.chain, file) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), file)
	}
	if l.visited[file] {
		return RawConfig{}, nil
	}
	l.visited[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	if err := decodeStrictYAML(data, &own); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", file, err)
	}

	l.chain = append(l.chain, file)
	var merged RawConfig
	for _, inc := range includesOf(&doc, file) {
		targets, err := expandInclude(file, inc.target)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s:%d:%d: include %q: %w", inc.at.File, inc.at.Line, inc.at.Column, inc.target, err)
		}
		for _, target := range targets {
			sub, err := l.load(target)
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(sub)
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	// A file overrides everything it includes.
	recordSources(rootMapping(&doc), file, "", l.sources)
	l.files = append(l.files, file)
	return merged.merge(own), nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// expandInclude resolves an include target to the files it names: a single
// file, every *.yaml/*.yml in a directory, or the matches of a glob. Results
// are sorted so merge order is stable.
func expandInclude(from, target string) ([]string, error) {
	path, err := resolveIncludePath(from, target)
	if err != nil {
		return nil, err
	}

	if strings.ContainsAny(path, "*?[") {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match")
		}
		return slices.Sorted(slices.Values(matches)), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			if !e.IsDir() {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}
	return files, nil
}

func resolveIncludePath(from, target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("path is empty")
	}
	if rest, ok := strings.CutPrefix(target, "~"); ok && (rest == "" || rest[0] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		target = filepath.Join(home, rest)
	}
	if filepath.IsAbs(target) {
		return target, nil
	}
	return filepath.Join(filepath.Dir(from), target), nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc != nil && doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc == nil || doc.Kind != yaml.MappingNode {
		return nil
	}
	return doc
}

// recordSources stores the position of every key under node as a dotted
// path. Sequence items with an id (windows) are addressed by that id.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			out[key] = positionOf(val, file)
			recordSources(val, file, key, out)
		}
	case yaml.SequenceNode:
		if prefix == "" {
			return
		}
		out[prefix] = positionOf(node, file)
		for _, item := range node.Content {
			if id := scalarField(item, "id"); id != "" {
				out[prefix+"."+id] = positionOf(item, file)
				recordSources(item, file, prefix+"."+id, out)
			}
		}
	}
}

func positionOf(node *yaml.Node, file string) Source {
	return Source{Kind: SourceFile, File: file, Line: node.Line, Column: node.Column}
}

func scalarField(node *yaml.Node, key string) string {
	if node == nil || node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key && node.Content[i+1].Kind == yaml.ScalarNode {
			return node.Content[i+1].Value
		}
	}
	return ""
}

// includesOf returns the include: entries of a document; the key takes a
// single path or a list of paths.
func includesOf(doc *yaml.Node, file string) []include {
	root := rootMapping(doc)
	if root == nil {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		var out []include
		for _, item := range items {
			if item.Kind == yaml.ScalarNode {
				out = append(out, include{target: item.Value, at: positionOf(item, file)})
			}
		}
		return out
	}
	return nil
}

// attachSourceContext points a ValidationError at the file position of its
// key, or of the nearest enclosing key that has one.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	for path := verr.Path; ; {
		if src, ok := sources[path]; ok {
			verr.Source = src
			return verr
		}
		i := strings.LastIndexByte(path, '.')
		if i < 0 {
			return verr
		}
		path = path[:i]
	}
}
