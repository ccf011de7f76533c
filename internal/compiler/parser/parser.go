// Package parser transforms knot token streams into an Abstract Syntax Tree.
package parser

import (
	"fmt"

	"github.com/unknot-dev/unknot/internal/compiler/ast"
	"github.com/unknot-dev/unknot/internal/compiler/lexer"
)

// ParseError represents an error encountered during parsing
type ParseError struct {
	Message string
	Token   lexer.Token
}

// Error implements the error interface
func (e ParseError) Error() string {
	return fmt.Sprintf("Parse error at %d:%d: %s",
		e.Token.Line, e.Token.Column, e.Message)
}

// TokenToLocation converts a token position to an AST source location
func TokenToLocation(t lexer.Token) ast.SourceLocation {
	return ast.SourceLocation{Line: t.Line, Column: t.Column}
}

// Parser transforms token streams into an Abstract Syntax Tree
type Parser struct {
	tokens  []lexer.Token
	current int
	errors  []ParseError
}

// New creates a new Parser from a token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		errors:  []ParseError{},
	}
}

// Parse parses the token stream and returns the AST and any errors
func (p *Parser) Parse() (*ast.Program, []ParseError) {
	program := p.parseProgram()
	return program, p.errors
}

// parseProgram parses the top-level program
func (p *Parser) parseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.isAtEnd() {
		var decl ast.Decl
		switch p.peek().Type {
		case lexer.TOKEN_CAPABILITY:
			decl = p.parseCapability()
		case lexer.TOKEN_IMPL:
			decl = p.parseImpl()
		case lexer.TOKEN_PATTERN:
			decl = p.parsePattern()
		case lexer.TOKEN_TRACK:
			decl = p.parseTrack()
		default:
			p.addError(fmt.Sprintf(
				"Unexpected token '%s'. Expected 'capability', 'impl', 'pattern', or 'track'.",
				p.peek().Lexeme))
			p.synchronize()
			continue
		}

		if decl != nil {
			program.Decls = append(program.Decls, decl)
		} else {
			p.synchronize()
		}
	}

	return program
}

// parseCapability parses: capability Name [< Param, ... >]
func (p *Parser) parseCapability() *ast.CapabilityNode {
	keyword := p.advance()

	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected capability name")
	if !ok {
		return nil
	}

	node := &ast.CapabilityNode{
		Name: name.Lexeme,
		Loc:  TokenToLocation(keyword),
	}

	if p.match(lexer.TOKEN_LT) {
		for {
			param, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected capability parameter name")
			if !ok {
				return nil
			}
			node.Params = append(node.Params, param.Lexeme)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		if _, ok := p.consume(lexer.TOKEN_GT, "Expected '>' after capability parameters"); !ok {
			return nil
		}
	}

	return node
}

// parseImpl parses: impl [<generics>] CapRef for TypeExpr [where preds]
func (p *Parser) parseImpl() *ast.ImplNode {
	keyword := p.advance()

	generics, ok := p.parseGenerics()
	if !ok {
		return nil
	}

	capability := p.parseCapRef()
	if capability == nil {
		return nil
	}

	if _, ok := p.consume(lexer.TOKEN_FOR, "Expected 'for' after capability reference"); !ok {
		return nil
	}

	selfType := p.parseTypeExpr()
	if selfType == nil {
		return nil
	}

	node := &ast.ImplNode{
		Generics:   generics,
		Capability: capability,
		SelfType:   selfType,
		Loc:        TokenToLocation(keyword),
	}

	if p.match(lexer.TOKEN_WHERE) {
		preds, ok := p.parsePredicates()
		if !ok {
			return nil
		}
		node.Where = preds
	}

	return node
}

// parsePattern parses: pattern [<generics>] CapRef for TypeExpr [requires preds]
func (p *Parser) parsePattern() *ast.PatternNode {
	keyword := p.advance()

	generics, ok := p.parseGenerics()
	if !ok {
		return nil
	}

	capability := p.parseCapRef()
	if capability == nil {
		return nil
	}

	if _, ok := p.consume(lexer.TOKEN_FOR, "Expected 'for' after capability reference"); !ok {
		return nil
	}

	target := p.parseTypeExpr()
	if target == nil {
		return nil
	}

	node := &ast.PatternNode{
		Generics:   generics,
		Capability: capability,
		Target:     target,
		Loc:        TokenToLocation(keyword),
	}

	if p.match(lexer.TOKEN_REQUIRES) {
		preds, ok := p.parsePredicates()
		if !ok {
			return nil
		}
		node.Requires = preds
	}

	return node
}

// parseTrack parses: track Name [, Name ...]
func (p *Parser) parseTrack() *ast.TrackNode {
	keyword := p.advance()

	node := &ast.TrackNode{Loc: TokenToLocation(keyword)}
	for {
		name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected capability name after 'track'")
		if !ok {
			return nil
		}
		node.Names = append(node.Names, name.Lexeme)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	return node
}

// parseGenerics parses an optional generic parameter list: <T: A + B, U>
func (p *Parser) parseGenerics() ([]*ast.GenericParamNode, bool) {
	if !p.match(lexer.TOKEN_LT) {
		return nil, true
	}

	var params []*ast.GenericParamNode
	for {
		name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected generic parameter name")
		if !ok {
			return nil, false
		}

		param := &ast.GenericParamNode{
			Name: name.Lexeme,
			Loc:  TokenToLocation(name),
		}

		if p.match(lexer.TOKEN_COLON) {
			bounds, ok := p.parseBounds()
			if !ok {
				return nil, false
			}
			param.Bounds = bounds
		}

		params = append(params, param)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_GT, "Expected '>' after generic parameters"); !ok {
		return nil, false
	}

	return params, true
}

// parsePredicates parses a comma-separated where/requires list
func (p *Parser) parsePredicates() ([]*ast.PredicateNode, bool) {
	var preds []*ast.PredicateNode
	for {
		pred := p.parsePredicate()
		if pred == nil {
			return nil, false
		}
		preds = append(preds, pred)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	return preds, true
}

// parsePredicate parses: TypeExpr ':' bounds
func (p *Parser) parsePredicate() *ast.PredicateNode {
	typ := p.parseTypeExpr()
	if typ == nil {
		return nil
	}

	if _, ok := p.consume(lexer.TOKEN_COLON, "Expected ':' after predicate type"); !ok {
		return nil
	}

	bounds, ok := p.parseBounds()
	if !ok {
		return nil
	}

	return &ast.PredicateNode{
		Type:   typ,
		Bounds: bounds,
		Loc:    typ.Loc,
	}
}

// parseBounds parses: CapRef [+ CapRef ...]
func (p *Parser) parseBounds() ([]*ast.CapRefNode, bool) {
	var bounds []*ast.CapRefNode
	for {
		ref := p.parseCapRef()
		if ref == nil {
			return nil, false
		}
		bounds = append(bounds, ref)
		if !p.match(lexer.TOKEN_PLUS) {
			break
		}
	}
	return bounds, true
}

// parseCapRef parses a capability reference: QualName [< TypeExpr, ... >]
func (p *Parser) parseCapRef() *ast.CapRefNode {
	start := p.peek()
	name, ok := p.parseQualName()
	if !ok {
		return nil
	}

	node := &ast.CapRefNode{Name: name, Loc: TokenToLocation(start)}

	args, ok := p.parseTypeArgs()
	if !ok {
		return nil
	}
	node.Args = args

	return node
}

// parseTypeExpr parses a type expression: QualName [< TypeExpr, ... >]
func (p *Parser) parseTypeExpr() *ast.TypeExprNode {
	start := p.peek()
	name, ok := p.parseQualName()
	if !ok {
		return nil
	}

	node := &ast.TypeExprNode{Name: name, Loc: TokenToLocation(start)}

	args, ok := p.parseTypeArgs()
	if !ok {
		return nil
	}
	node.Args = args

	return node
}

// parseTypeArgs parses an optional generic argument list: <T, Vec<U>>
func (p *Parser) parseTypeArgs() ([]*ast.TypeExprNode, bool) {
	if !p.match(lexer.TOKEN_LT) {
		return nil, true
	}

	var args []*ast.TypeExprNode
	for {
		arg := p.parseTypeExpr()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if _, ok := p.consume(lexer.TOKEN_GT, "Expected '>' after generic arguments"); !ok {
		return nil, false
	}

	return args, true
}

// parseQualName parses a possibly qualified name: a.b.C
func (p *Parser) parseQualName() (string, bool) {
	name, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected identifier")
	if !ok {
		return "", false
	}

	qualified := name.Lexeme
	for p.match(lexer.TOKEN_DOT) {
		segment, ok := p.consume(lexer.TOKEN_IDENTIFIER, "Expected identifier after '.'")
		if !ok {
			return "", false
		}
		qualified += "." + segment.Lexeme
	}

	return qualified, true
}

// Helper methods for token manipulation

// isAtEnd checks if we're at the end of the token stream
func (p *Parser) isAtEnd() bool {
	if p.current >= len(p.tokens) {
		return true
	}
	return p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // Return EOF
	}
	return p.tokens[p.current]
}

// previous returns the previous token
func (p *Parser) previous() lexer.Token {
	if p.current > 0 {
		return p.tokens[p.current-1]
	}
	return p.tokens[0]
}

// advance consumes and returns the current token
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check checks if the current token is of the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// match checks if the current token matches any of the given types.
// If it matches, consumes the token and returns true
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, tokenType := range types {
		if p.check(tokenType) {
			p.advance()
			return true
		}
	}
	return false
}

// consume consumes a token of the given type or adds an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) (lexer.Token, bool) {
	if p.check(tokenType) {
		return p.advance(), true
	}

	p.addError(message)
	return lexer.Token{}, false
}

// addError records a parse error at the current token
func (p *Parser) addError(message string) {
	p.errors = append(p.errors, ParseError{
		Message: message,
		Token:   p.peek(),
	})
}

// synchronize skips tokens until the next declaration keyword so one bad
// declaration does not swallow the rest of the file
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.TOKEN_CAPABILITY, lexer.TOKEN_IMPL, lexer.TOKEN_PATTERN, lexer.TOKEN_TRACK:
			return
		}
		p.advance()
	}
}
