// Package parser wraps tree-sitter for parsing Python source files.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps a tree-sitter parser configured for Python.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// IsPythonFile reports whether a path looks like a Python source file.
func IsPythonFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return true
	}
	return false
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(source, path)
}

// Parse parses Python source code. Invalid UTF-8 input is rejected up
// front; syntax errors do not fail the parse but are flagged on the
// result via HasSyntaxError.
func (p *Parser) Parse(source []byte, path string) (*ParseResult, error) {
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("invalid encoding in %s: not valid UTF-8", path)
	}

	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// HasSyntaxError reports whether the parsed tree contains error nodes.
func (r *ParseResult) HasSyntaxError() bool {
	root := r.Tree.RootNode()
	return root == nil || root.HasError()
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
// Use this when you need to check node types frequently.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}

	nodeType := node.Type() // Cache the type once per node
	if !visitor(node, nodeType, source) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// FindNodesByType returns all nodes of a specific type.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	WalkTyped(root, source, func(n *sitter.Node, nt string, _ []byte) bool {
		if nt == nodeType {
			results = append(results, n)
		}
		return true
	})
	return results
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FunctionNode represents a parsed function or method definition.
type FunctionNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Params    int
	Node      *sitter.Node
	Body      *sitter.Node
}

// GetFunctions extracts all function definitions in order of appearance,
// including methods and nested functions.
func GetFunctions(result *ParseResult) []FunctionNode {
	var functions []FunctionNode
	root := result.Tree.RootNode()

	WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType == "function_definition" {
			functions = append(functions, extractFunction(node, source))
		}
		return true
	})

	return functions
}

// extractFunction extracts function details from a function_definition node.
func extractFunction(node *sitter.Node, source []byte) FunctionNode {
	fn := FunctionNode{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
		Node:      node,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = GetNodeText(nameNode, source)
	}
	fn.Body = node.ChildByFieldName("body")
	fn.Params = countParameters(node.ChildByFieldName("parameters"))

	return fn
}

// countParameters counts plain positional parameters; splat and
// keyword-only markers are excluded.
func countParameters(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		switch params.NamedChild(i).Type() {
		case "identifier", "default_parameter", "typed_parameter", "typed_default_parameter":
			count++
		}
	}
	return count
}

// ClassNode represents a parsed class definition.
type ClassNode struct {
	Name      string
	StartLine uint32
	EndLine   uint32
	Bases     int
	Node      *sitter.Node
	Body      *sitter.Node
}

// GetClasses extracts all class definitions in order of appearance.
func GetClasses(result *ParseResult) []ClassNode {
	var classes []ClassNode
	root := result.Tree.RootNode()

	WalkTyped(root, result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if nodeType == "class_definition" {
			classes = append(classes, extractClass(node, source))
		}
		return true
	})

	return classes
}

// extractClass extracts class details from a class_definition node.
func extractClass(node *sitter.Node, source []byte) ClassNode {
	cls := ClassNode{
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
		Node:      node,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		cls.Name = GetNodeText(nameNode, source)
	}
	cls.Body = node.ChildByFieldName("body")

	// Base classes live in the superclasses argument list; keyword
	// arguments (metaclass=...) are not inheritance.
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			if supers.NamedChild(i).Type() != "keyword_argument" {
				cls.Bases++
			}
		}
	}

	return cls
}
