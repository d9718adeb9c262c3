package scenario

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

// substitutionContext is the {env, global, scenario} lookup the
// "${a.b.c}" dot-path syntax resolves against.
type substitutionContext struct {
	env      map[string]string
	global   map[string]interface{}
	scenario map[string]interface{}
}

// variableExpr matches "${a.b.c}" or "${a.b.c | fn}" (a Sprig function
// piped over the resolved value, e.g. "${global.name | upper}").
var variableExpr = regexp.MustCompile(`\$\{\s*([a-zA-Z0-9_.]+)\s*(?:\|\s*([a-zA-Z0-9_]+)\s*)?\}`)

// sprigFuncs is Masterminds/sprig's full function map, consulted for
// "${... | fn}" postprocessing. Only functions of type func(string) string
// (such as upper, lower and trim) are applied; any other function (such as
// default or quote), or an unknown name, leaves the value unchanged.
var sprigFuncs = sprig.FuncMap()

// substituteNode walks a yaml.Node tree, replacing "${...}" occurrences in
// scalar string values. Unresolvable references are left verbatim: a
// fail-open choice that distinguishes "not found" from "error".
func substituteNode(n *yaml.Node, ctx *substitutionContext) *yaml.Node {
	if n == nil {
		return n
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Value = substituteString(n.Value, ctx)
		return n
	}
	for i := range n.Content {
		n.Content[i] = substituteNode(n.Content[i], ctx)
	}
	return n
}

func substituteString(s string, ctx *substitutionContext) string {
	return variableExpr.ReplaceAllStringFunc(s, func(match string) string {
		groups := variableExpr.FindStringSubmatch(match)
		path, fn := groups[1], groups[2]
		value, ok := resolvePath(path, ctx)
		if !ok {
			return match // preserve literal ${...}
		}
		rendered := fmt.Sprintf("%v", value)
		if fn != "" {
			if f, ok := sprigFuncs[fn]; ok {
				if applied, ok := applySprigString(f, rendered); ok {
					rendered = applied
				}
			}
		}
		return rendered
	})
}

func applySprigString(fn interface{}, in string) (string, bool) {
	switch f := fn.(type) {
	case func(string) string:
		return f(in), true
	default:
		return in, false
	}
}

// resolvePath resolves "a.b.c" against {env, global, scenario}: the first
// path segment selects the root ("env" | "global" | "scenario"); the rest
// is a dot-path lookup into that root's value.
func resolvePath(path string, ctx *substitutionContext) (interface{}, bool) {
	segments := strings.Split(path, ".")
	if len(segments) == 0 {
		return nil, false
	}
	root, rest := segments[0], segments[1:]

	switch root {
	case "env":
		if len(rest) != 1 {
			return nil, false
		}
		v, ok := ctx.env[rest[0]]
		return v, ok
	case "global":
		return dotLookup(ctx.global, rest)
	case "scenario":
		return dotLookup(ctx.scenario, rest)
	default:
		return nil, false
	}
}

func dotLookup(root map[string]interface{}, path []string) (interface{}, bool) {
	if root == nil || len(path) == 0 {
		return nil, false
	}
	var cur interface{} = root
	for _, seg := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
