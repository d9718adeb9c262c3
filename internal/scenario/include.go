package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"agentictest/internal/errkind"
)

// ValidationErrorTag names the specific include-safety violation, mirrored
// in the error text so callers (and tests) can match on it without a
// custom error type per tag.
type ValidationErrorTag string

const (
	TagPathTraversal ValidationErrorTag = "PathTraversal"
	TagCircularInclude ValidationErrorTag = "CircularInclude"
	TagIncludeTooDeep ValidationErrorTag = "IncludeTooDeep"
)

// includeResolver walks a parsed YAML node tree replacing any
// {include: "<path>", variables?: {...}} mapping with the parsed contents
// of the target file, resolved relative to the including file's directory
// and contained within baseDir.
type includeResolver struct {
	baseDir  string
	maxDepth int
	// collected accumulates any "variables" maps attached to include
	// directives, flattened, for use as the "${...}" scenario context.
	collected map[string]interface{}
}

// resolve walks node depth-first, replacing include directives. chain
// tracks the absolute paths of files currently open, for cycle detection;
// fromFile is the file node currently lives in (used to resolve relative
// include paths and as the chain's starting entry).
func (r *includeResolver) resolve(node *yaml.Node, fromFile string, chain []string) (*yaml.Node, error) {
	if node == nil {
		return node, nil
	}

	if node.Kind == yaml.MappingNode {
		if inc, vars, ok := includeDirective(node); ok {
			r.mergeVars(vars)
			return r.loadInclude(inc, fromFile, chain)
		}
		for i := range node.Content {
			resolved, err := r.resolve(node.Content[i], fromFile, chain)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
		return node, nil
	}

	if node.Kind == yaml.SequenceNode || node.Kind == yaml.DocumentNode {
		for i := range node.Content {
			resolved, err := r.resolve(node.Content[i], fromFile, chain)
			if err != nil {
				return nil, err
			}
			node.Content[i] = resolved
		}
		return node, nil
	}

	return node, nil
}

// includeDirective reports whether node is exactly an {include: "..."}
// (optionally with "variables") mapping, returning the include path and
// any attached variables node.
func includeDirective(node *yaml.Node) (string, *yaml.Node, bool) {
	var path string
	var varsNode *yaml.Node
	var hasInclude bool
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "include":
			if val.Kind != yaml.ScalarNode {
				return "", nil, false
			}
			path = val.Value
			hasInclude = true
		case "variables":
			varsNode = val
		default:
			return "", nil, false
		}
	}
	return path, varsNode, hasInclude
}

func (r *includeResolver) mergeVars(node *yaml.Node) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	if r.collected == nil {
		r.collected = map[string]interface{}{}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var v interface{}
		if err := val.Decode(&v); err == nil {
			r.collected[key.Value] = v
		}
	}
}

func (r *includeResolver) loadInclude(includePath string, fromFile string, chain []string) (*yaml.Node, error) {
	if len(chain) == 0 {
		chain = []string{absPath(fromFile)}
	}
	if len(chain) > r.maxDepth {
		return nil, errkind.Config("scenario.include", fmt.Errorf("%s: include depth exceeds %d [%s]", includePath, r.maxDepth, TagIncludeTooDeep))
	}

	fromDir := filepath.Dir(fromFile)
	target := includePath
	if !filepath.IsAbs(target) {
		target = filepath.Join(fromDir, target)
	}
	target = filepath.Clean(target)

	if r.baseDir != "" {
		base := absPath(r.baseDir)
		absTarget := absPath(target)
		rel, err := filepath.Rel(base, absTarget)
		if err != nil || strings.HasPrefix(rel, "..") || rel == ".." {
			return nil, errkind.Config("scenario.include", fmt.Errorf("%s escapes base directory %s [%s]", includePath, r.baseDir, TagPathTraversal))
		}
	}

	absTarget := absPath(target)
	for _, open := range chain {
		if open == absTarget {
			return nil, errkind.Config("scenario.include", fmt.Errorf("%s: circular include via %s [%s]", includePath, open, TagCircularInclude))
		}
	}

	raw, err := os.ReadFile(target)
	if err != nil {
		return nil, errkind.Config("scenario.include", fmt.Errorf("reading include %s: %w", includePath, err))
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errkind.Config("scenario.include", fmt.Errorf("parsing include %s: %w", includePath, err))
	}
	if len(doc.Content) == 0 {
		return nil, errkind.Config("scenario.include", fmt.Errorf("include %s is empty", includePath))
	}

	nextChain := append(append([]string{}, chain...), absTarget)
	return r.resolve(doc.Content[0], target, nextChain)
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
