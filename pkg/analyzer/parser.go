package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// DefaultMaxFileSize is the largest file the parser accepts unless configured otherwise.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned for files over the parser's size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent is returned for content that is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrSyntax is returned when the syntax tree contains errors.
	ErrSyntax = errors.New("syntax error")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Imports are the import statements found in one file, in source order
type Imports struct {
	Modules   []string
	Functions []FunctionImport
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithMaxFileSize sets the size limit. Non-positive values are ignored.
func WithMaxFileSize(bytes int64) ParserOption {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// Parser extracts import statements from Python source.
// It is safe for concurrent use; each call builds its own tree-sitter parser.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a new Parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads path and extracts its imports.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Imports, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, info.Size(), p.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseImports(ctx, content)
}

// ParseImports extracts every import statement in content, including those
// nested in functions, classes and conditional blocks. Relative imports are
// dropped. Any syntax error fails the whole file.
func (p *Parser) ParseImports(ctx context.Context, content []byte) (*Imports, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty syntax tree", ErrSyntax)
	}
	if root.HasError() {
		return nil, ErrSyntax
	}
	if construct := python2Syntax(root, content); construct != "" {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, construct)
	}

	imports := &Imports{}
	collectImports(root, content, imports)
	return imports, nil
}

// python2Syntax names the first construct in the tree that the grammar
// accepts but Python 3 rejects, or returns "" when there is none.
func python2Syntax(root *sitter.Node, content []byte) string {
	var quoted [][2]uint32
	if construct := legacyNode(root, content, &quoted); construct != "" {
		return construct
	}

	for i := bytes.IndexByte(content, '`'); i >= 0; {
		if !inRanges(uint32(i), quoted) {
			return "backtick expression"
		}
		next := bytes.IndexByte(content[i+1:], '`')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return ""
}

// legacyNode walks node and records the byte ranges of strings and comments
// in quoted.
func legacyNode(node *sitter.Node, content []byte, quoted *[][2]uint32) string {
	switch node.Type() {
	case "print_statement":
		return "print statement"
	case "exec_statement":
		return "exec statement"
	case "string", "comment":
		*quoted = append(*quoted, [2]uint32{node.StartByte(), node.EndByte()})
		return ""
	case "integer":
		if legacyInteger(node.Content(content)) {
			return "legacy integer literal " + node.Content(content)
		}
		return ""
	case "raise_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if node.NamedChild(i).Type() == "expression_list" {
				return "raise with comma"
			}
		}
	case "except_clause":
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "," {
				return "except with comma"
			}
		}
	case "comparison_operator":
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "<>" {
				return "<> operator"
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if construct := legacyNode(node.Child(i), content, quoted); construct != "" {
			return construct
		}
	}
	return ""
}

// legacyInteger reports long suffixes (10L) and leading-zero octals (0777).
func legacyInteger(text string) bool {
	if strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L") {
		return true
	}
	if len(text) < 2 || text[0] != '0' {
		return false
	}
	switch text[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}
	if strings.HasSuffix(text, "j") || strings.HasSuffix(text, "J") {
		return false
	}
	// Only zero itself may have leading zeros.
	return strings.Trim(text, "0_") != ""
}

func inRanges(pos uint32, ranges [][2]uint32) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}

func collectImports(node *sitter.Node, content []byte, out *Imports) {
	switch node.Type() {
	case "import_statement":
		importStatement(node, content, out)
		return
	case "import_from_statement":
		importFromStatement(node, content, out)
		return
	case "future_import_statement":
		futureImportStatement(node, content, out)
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectImports(node.NamedChild(i), content, out)
	}
}

// import a.b, c as d
func importStatement(node *sitter.Node, content []byte, out *Imports) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if name := importedName(node.NamedChild(i), content); name != "" {
			out.Modules = append(out.Modules, name)
		}
	}
}

// from m import x, y as z
// from m import *
func importFromStatement(node *sitter.Node, content []byte, out *Imports) {
	var module string
	var sawImport bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			return
		case "dotted_name":
			if !sawImport {
				module = dottedName(child, content)
			} else if module != "" {
				out.Functions = append(out.Functions, FunctionImport{Module: module, Symbol: dottedName(child, content)})
			}
		case "aliased_import":
			if sawImport && module != "" {
				if name := importedName(child, content); name != "" {
					out.Functions = append(out.Functions, FunctionImport{Module: module, Symbol: name})
				}
			}
		case "wildcard_import":
			if module != "" {
				out.Functions = append(out.Functions, FunctionImport{Module: module, Symbol: "*"})
			}
		}
	}
}

// from __future__ import annotations
func futureImportStatement(node *sitter.Node, content []byte, out *Imports) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if name := importedName(node.NamedChild(i), content); name != "" {
			out.Functions = append(out.Functions, FunctionImport{Module: "__future__", Symbol: name})
		}
	}
}

// importedName returns the imported (not aliased) name of a dotted_name or
// aliased_import node.
func importedName(node *sitter.Node, content []byte) string {
	switch node.Type() {
	case "dotted_name":
		return dottedName(node, content)
	case "aliased_import":
		for j := 0; j < int(node.NamedChildCount()); j++ {
			if gc := node.NamedChild(j); gc.Type() == "dotted_name" {
				return dottedName(gc, content)
			}
		}
	}
	return ""
}

// dottedName joins the identifiers of a dotted_name, dropping any whitespace
// or line continuations between the parts.
func dottedName(node *sitter.Node, content []byte) string {
	parts := make([]string, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "identifier" {
			parts = append(parts, child.Content(content))
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(node.Content(content))
	}
	return strings.Join(parts, ".")
}
