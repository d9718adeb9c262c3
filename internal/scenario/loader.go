package scenario

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"agentictest/internal/errkind"
	"agentictest/pkg/logging"
)

// LoadResult is the outcome of a directory/file load: scenarios that
// parsed and validated cleanly, plus per-file failures that were skipped
// rather than aborting the whole load.
type LoadResult struct {
	Scenarios []Scenario
	Failures  []LoadFailure
}

// LoadFailure records one scenario file this load could not use.
type LoadFailure struct {
	Path string
	Err  error
}

// Options configures a Loader.
type Options struct {
	BaseDir         string            // containment root for include resolution
	MaxIncludeDepth int               // default 5
	Strict          bool              // unknown enum values fail instead of defaulting
	Env             map[string]string // substitution source "env"; defaults to os.Environ()
	Global          map[string]interface{}
}

// Loader loads scenario YAML files from a path, resolving includes and
// variable substitution, and validating the result.
type Loader struct {
	opts Options
}

// NewLoader constructs a Loader, filling in documented defaults.
func NewLoader(opts Options) *Loader {
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = 5
	}
	if opts.Env == nil {
		opts.Env = envMap()
	}
	return &Loader{opts: opts}
}

func envMap() map[string]string {
	m := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

// Load loads scenarios from configPath, a file or a directory. A single
// invalid scenario inside a directory is reported as a LoadFailure and
// does not abort the rest of the load.
func (l *Loader) Load(configPath string) (LoadResult, error) {
	info, err := os.Stat(configPath)
	if err != nil {
		return LoadResult{}, errkind.Config("scenario.Load", fmt.Errorf("scenario path %q: %w", configPath, err))
	}

	if !info.IsDir() {
		scenarios, err := l.loadFile(configPath)
		if err != nil {
			return LoadResult{Failures: []LoadFailure{{Path: configPath, Err: err}}}, nil
		}
		return LoadResult{Scenarios: scenarios}, nil
	}

	var result LoadResult
	walkErr := filepath.WalkDir(configPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLFile(path) {
			return nil
		}
		logging.Debug("scenario", "loading scenario file: %s", path)
		scenarios, ferr := l.loadFile(path)
		if ferr != nil {
			logging.Warn("scenario", "skipping invalid scenario file %s: %v", path, ferr)
			result.Failures = append(result.Failures, LoadFailure{Path: path, Err: ferr})
			return nil
		}
		result.Scenarios = append(result.Scenarios, scenarios...)
		return nil
	})
	if walkErr != nil {
		return result, errkind.Config("scenario.Load", walkErr)
	}

	logging.Info("scenario", "loaded %d scenarios (%d failures)", len(result.Scenarios), len(result.Failures))
	return result, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// loadFile loads, resolves includes in, substitutes variables in, and
// validates every scenario document in one file. A file may contain a
// single scenario document, a top-level list under "scenarios:", or a
// bare top-level sequence of scenarios.
func (l *Loader) loadFile(path string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errkind.Config("scenario.loadFile", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, errkind.Config("scenario.loadFile", fmt.Errorf("%s: %w", path, err))
	}
	if len(node.Content) == 0 {
		return nil, errkind.Config("scenario.loadFile", fmt.Errorf("%s: empty document", path))
	}

	resolver := &includeResolver{
		baseDir:  l.opts.BaseDir,
		maxDepth: l.opts.MaxIncludeDepth,
	}
	resolved, err := resolver.resolve(node.Content[0], path, nil)
	if err != nil {
		return nil, err
	}

	rawDocs, err := extractScenarioDocs(resolved)
	if err != nil {
		return nil, err
	}

	ctx := substitutionContext{env: l.opts.Env, global: l.opts.Global, scenario: resolver.collected}

	var out []Scenario
	for _, doc := range rawDocs {
		substituted := substituteNode(doc, &ctx)
		var s Scenario
		if err := substituted.Decode(&s); err != nil {
			return nil, errkind.Config("scenario.loadFile", fmt.Errorf("%s: %w", path, err))
		}
		s.SourceFile = path
		if !hasKey(substituted, "enabled") {
			s.Enabled = true
		}
		applyDefaults(&s)
		if err := validate(&s, l.opts.Strict); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// extractScenarioDocs returns the list of scenario mapping nodes found in
// a parsed+include-resolved document: a single mapping (one scenario), a
// mapping with a top-level "scenarios" sequence, or a bare top-level
// sequence of scenario mappings.
func extractScenarioDocs(n *yaml.Node) ([]*yaml.Node, error) {
	if n.Kind == yaml.SequenceNode {
		return n.Content, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errkind.Config("scenario.extractScenarioDocs", fmt.Errorf("expected a mapping or sequence document"))
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key.Value == "scenarios" && n.Content[i+1].Kind == yaml.SequenceNode {
			return n.Content[i+1].Content, nil
		}
	}
	return []*yaml.Node{n}, nil
}

func hasKey(n *yaml.Node, key string) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

func applyDefaults(s *Scenario) {
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.Prerequisites == nil {
		s.Prerequisites = []string{}
	}
	if s.EstimatedDuration == 0 {
		s.EstimatedDuration = 60
	}
}
