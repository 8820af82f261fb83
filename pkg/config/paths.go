package config

import (
	"regexp"
	"strings"
)

// paramNamePattern matches the names accepted for path parameters. The
// HTTP router only accepts Go identifiers as wildcard names.
var paramNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// JoinPath prepends prefix to an endpoint path without doubling slashes.
func JoinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix + path
}

// NormalizePath rewrites ":name" segments into "{name}" segments.
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok && name != "" {
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/")
}

// PathParamNames returns the parameter names of a path in order of
// appearance. Both "{name}" and ":name" segments are recognized.
func PathParamNames(path string) []string {
	var names []string
	for _, seg := range strings.Split(NormalizePath(path), "/") {
		if name, ok := segmentParam(seg); ok {
			names = append(names, name)
		}
	}
	return names
}

// RouteKey identifies a route for duplicate detection. Parameter names are
// erased so that "/users/{id}" and "/users/{uid}" collide.
func RouteKey(method HTTPMethod, fullPath string) string {
	segments := strings.Split(NormalizePath(fullPath), "/")
	for i, seg := range segments {
		if _, ok := segmentParam(seg); ok {
			segments[i] = "{}"
		}
	}
	return string(method) + " " + strings.Join(segments, "/")
}

func segmentParam(seg string) (string, bool) {
	if len(seg) < 2 || seg[0] != '{' || seg[len(seg)-1] != '}' {
		return "", false
	}
	return seg[1 : len(seg)-1], true
}

func validParamName(name string) bool {
	return paramNamePattern.MatchString(name)
}
