package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "stewardship"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// Third-party packages application code may use directly. Everything else
// reaches the application layer through ports.
var applicationThirdParty = []string{
	"go.opentelemetry.io/otel",
	"golang.org/x/sync",
}

func main() {
	violations := collectViolations(".")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks <root>/contexts and checks every non-test source
// file against the layer rules of its bounded context.
func collectViolations(root string) []violation {
	var violations []violation

	contextsDir := filepath.Join(root, "contexts")
	_ = filepath.WalkDir(contextsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		normalized := filepath.ToSlash(rel)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}

		modulePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		violations = append(violations, validateFile(path, normalized, parts[3], modulePrefix)...)
		return nil
	})

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})
	return violations
}

func validateFile(path string, normalizedPath string, layer string, modulePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		add := func(rule string) {
			violations = append(violations, violation{File: normalizedPath, Line: line, Import: importPath, Rule: rule})
		}

		if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, modulePrefix) {
			add("cross-module imports are forbidden")
		}

		switch layer {
		case "domain":
			if strings.Contains(importPath, "/adapters/") {
				add("domain must not import adapters")
			}
			if !isStdlib(importPath) && !hasPrefix(importPath, modulePrefix+"/domain") {
				add("domain import is outside explicit allowlist")
			}
		case "ports":
			if !isStdlib(importPath) && !isAllowed(importPath, []string{
				modulePrefix + "/domain",
				modulePath + "/contracts",
			}) {
				add("ports import is outside explicit allowlist")
			}
		case "application":
			if strings.Contains(importPath, "/adapters/") {
				add("application must not import adapters")
			}
			allowed := append([]string{
				modulePrefix + "/application",
				modulePrefix + "/domain",
				modulePrefix + "/ports",
				modulePath + "/contracts",
				modulePath + "/internal/platform/keylock",
			}, applicationThirdParty...)
			if !isStdlib(importPath) && !isAllowed(importPath, allowed) {
				add("application import is outside explicit allowlist")
			}
		}
	}
	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
