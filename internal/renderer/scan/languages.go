package scan

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry manages scanners by language and file extension.
type Registry struct {
	mu sync.RWMutex

	byLanguage  map[string]*Scanner
	byExtension map[string]*Scanner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLanguage:  make(map[string]*Scanner),
		byExtension: make(map[string]*Scanner),
	}
}

// Register adds a scanner to the registry.
func (r *Registry) Register(s *Scanner) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLanguage[s.Language()] = s
	for _, ext := range s.FileExtensions() {
		r.byExtension[ext] = s
	}
}

// ByLanguage returns the scanner for language.
func (r *Registry) ByLanguage(language string) (*Scanner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byLanguage[language]
	return s, ok
}

// ForFile returns the scanner registered for the extension of path.
func (r *Registry) ForFile(path string) (*Scanner, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byExtension[ext]
	return s, ok
}

// Languages returns the registered language names, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, 0, len(r.byLanguage))
	for lang := range r.byLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// DefaultRegistry returns a registry with the built-in scanners.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Go())
	r.Register(Python())
	return r
}

// Go returns a scanner for Go.
func Go() *Scanner {
	s := New("go", ".go")

	s.AddLineComment("//", "comment.line")
	s.AddBlock("/*", "*/", "comment.block")
	s.AddBlock("`", "`", "string.raw")
	s.AddString(`"`, "string.quoted")
	s.AddString("'", "string.quoted.rune")

	s.AddRule(`\b0[xX][0-9a-fA-F_]+\b`, "constant.numeric.hex")
	s.AddRule(`\b0[oO][0-7_]+\b`, "constant.numeric.octal")
	s.AddRule(`\b0[bB][01_]+\b`, "constant.numeric.binary")
	s.AddRule(`\b\d[\d_]*\.?\d*(?:[eE][+-]?\d+)?\b`, "constant.numeric")

	s.AddKeywords("keyword.control",
		"if", "else", "for", "range", "switch", "case", "default",
		"break", "continue", "return", "goto", "fallthrough", "select")
	s.AddKeywords("keyword.declaration",
		"func", "var", "const", "type", "struct", "interface", "map", "chan")
	s.AddKeywords("keyword.other",
		"package", "import", "defer", "go")
	s.AddKeywords("constant.language",
		"true", "false", "nil", "iota")
	s.AddKeywords("type.builtin",
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "complex64", "complex128",
		"bool", "byte", "rune", "string", "error", "any")
	s.AddKeywords("function.builtin",
		"make", "new", "len", "cap", "append", "copy", "delete",
		"close", "panic", "recover", "print", "println",
		"real", "imag", "complex", "min", "max", "clear")

	return s
}

// Python returns a scanner for Python.
func Python() *Scanner {
	s := New("python", ".py", ".pyi")

	s.AddLineComment("#", "comment.line")
	s.AddBlock(`"""`, `"""`, "string.quoted.triple")
	s.AddBlock(`'''`, `'''`, "string.quoted.triple")
	s.AddString(`"`, "string.quoted")
	s.AddString("'", "string.quoted")

	s.AddRule(`\b0[xX][0-9a-fA-F]+\b`, "constant.numeric.hex")
	s.AddRule(`\b\d+\.?\d*(?:[eE][+-]?\d+)?j?\b`, "constant.numeric")
	s.AddRule(`@\w+`, "meta.decorator")

	s.AddKeywords("keyword.control",
		"if", "elif", "else", "for", "while", "break", "continue",
		"return", "try", "except", "finally", "raise", "with", "as",
		"match", "case")
	s.AddKeywords("keyword.declaration",
		"def", "class", "lambda", "async", "await")
	s.AddKeywords("keyword.other",
		"import", "from", "global", "nonlocal", "pass", "yield",
		"assert", "del", "in", "is", "not", "and", "or")
	s.AddKeywords("constant.language",
		"True", "False", "None")

	return s
}
