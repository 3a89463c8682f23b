package highlight

import (
	"path/filepath"
	"strings"
)

// extLanguages maps the extensions actually expected in a watched source
// tree to their Chroma lexer name. Kept short on purpose: an unrecognized
// extension just falls back to "text" rather than losing gutter markers.
var extLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".jsx":  "jsx",
	".tsx":  "tsx",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".hpp":  "cpp",
	".cs":   "csharp",
	".rb":   "ruby",
	".php":  "php",
	".rs":   "rust",
	".sh":   "bash",
	".sql":  "sql",
	".html": "html",
	".css":  "css",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".md":   "markdown",
}

// namedLanguages covers the handful of extensionless files worth detecting
// by base name alone.
var namedLanguages = map[string]string{
	"dockerfile": "docker",
	"makefile":   "make",
	"gemfile":    "ruby",
	"rakefile":   "ruby",
}

// languageFor returns the Chroma lexer name for path, falling back to
// "text" when nothing matches.
func languageFor(path string) string {
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	if lang, ok := namedLanguages[strings.ToLower(filepath.Base(path))]; ok {
		return lang
	}
	return "text"
}
