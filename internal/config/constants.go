package config

import "strings"

const SourceFileExt = ".lx"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".lx", ".lazex"}

// ConfigFileNames are looked up, in order, next to the script and in its parents.
var ConfigFileNames = []string{"lazex.yaml", "lazex.yml", "lazex.toml"}

// Built-in function names
const (
	PrintFuncName      = "print"
	LenFuncName        = "len"
	StrFuncName        = "str"
	IntFuncName        = "int"
	FloatFuncName      = "float"
	TypeFuncName       = "type"
	PushFuncName       = "push"
	KeysFuncName       = "keys"
	RangeFuncName      = "range"
	ContainsFuncName   = "contains"
	ExpressionFuncName = "expression"
	LazyFuncName       = "lazy"
	IsLazyFuncName     = "isLazy"
	AssertFuncName     = "assert"
)

// Handle method names reachable through member access.
const (
	RawMethod   = "raw"
	EvalMethod  = "eval"
	AstMethod   = "ast"
	SiteMethod  = "site"
	LenMethod   = "len"
	NamesMethod = "names"
	KindMethod  = "kind"
	NameMethod  = "name"
)

// Defaults
const (
	DefaultMaxDepth   = 2000
	DefaultPrintWidth = 100
	DefaultLogLevel   = "warn"
)

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
