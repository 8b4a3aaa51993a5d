package stache

// openSection tracks one entry on the parser's nesting stack.
type openSection struct {
	key      Key
	inverted bool
	line     int
	col      int
	body     []Node
}

// parseState holds the mutable state threaded through Parse: the name of
// the template being parsed (for diagnostics), the stack of currently
// open sections, and the delimiter pair active at the current position —
// tracked the same way the scanner tracks it, by watching
// TokenSetDelimiter tokens go by, so that keys are validated against
// whichever delimiters were active when their tag was lexed.
type parseState struct {
	name        string
	stack       []*openSection
	open, close string
}

// Parse turns a token stream into the top-level node list. It rejects an
// unclosed section, a Close tag naming the wrong section, and
// an unexpected Close with no open section to match.
func Parse(name string, tokens []*Token) ([]Node, error) {
	ps := &parseState{name: name, open: "{{", close: "}}"}
	ps.stack = append(ps.stack, &openSection{})

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenEOF:
			if len(ps.stack) != 1 {
				top := ps.stack[len(ps.stack)-1]
				return nil, &Error{Template: name, Line: top.line, Col: top.col, Kind: ErrUnclosedSection, Message: "section \"" + top.key.String() + "\" is never closed"}
			}
			return ps.stack[0].body, nil

		case TokenText:
			if tok.Text != "" {
				ps.append(&TextNode{Text: tok.Text})
			}

		case TokenVariable:
			key, err := ParseKey(tok.KeyText, ps.open, ps.close)
			if err != nil {
				return nil, ps.withPos(err, tok)
			}
			ps.append(&InterpolationNode{Key: key})

		case TokenUnescaped:
			key, err := ParseKey(tok.KeyText, ps.open, ps.close)
			if err != nil {
				return nil, ps.withPos(err, tok)
			}
			ps.append(&InterpolationNode{Key: key, Raw: true})

		case TokenSectionOpen, TokenInvertedOpen:
			key, err := ParseKey(tok.KeyText, ps.open, ps.close)
			if err != nil {
				return nil, ps.withPos(err, tok)
			}
			ps.stack = append(ps.stack, &openSection{
				key:      key,
				inverted: tok.Kind == TokenInvertedOpen,
				line:     tok.Line,
				col:      tok.Col,
			})

		case TokenClose:
			if len(ps.stack) == 1 {
				return nil, &Error{Template: name, Line: tok.Line, Col: tok.Col, Kind: ErrUnexpectedClose, Message: "unexpected closing tag \"" + tok.KeyText + "\""}
			}
			key, err := ParseKey(tok.KeyText, ps.open, ps.close)
			if err != nil {
				return nil, ps.withPos(err, tok)
			}
			top := ps.stack[len(ps.stack)-1]
			if !top.key.Equal(key) {
				return nil, &Error{Template: name, Line: tok.Line, Col: tok.Col, Kind: ErrUnexpectedClose, Message: "closing tag \"" + key.String() + "\" does not match open section \"" + top.key.String() + "\""}
			}
			ps.stack = ps.stack[:len(ps.stack)-1]
			ps.append(&SectionNode{Key: top.key, Inverted: top.inverted, Body: top.body})

		case TokenPartial:
			ps.append(&PartialNode{Name: tok.KeyText, Indent: tok.Indent})

		case TokenComment:
			// no node: comments never reach the AST.

		case TokenSetDelimiter:
			ps.open, ps.close = tok.NewOpen, tok.NewClose
		}
	}

	// Reaching here without a TokenEOF means buildTokens produced a stream
	// with no terminator, which is a bug in the caller, not user input.
	if len(ps.stack) != 1 {
		top := ps.stack[len(ps.stack)-1]
		return nil, &Error{Template: name, Line: top.line, Col: top.col, Kind: ErrUnclosedSection, Message: "section \"" + top.key.String() + "\" is never closed"}
	}
	return ps.stack[0].body, nil
}

// append adds n to the body of the innermost open section, merging it
// into an immediately preceding TextNode when both are text — this keeps
// the emitter's string table from fragmenting a single run of literal
// output into several interned pieces.
func (ps *parseState) append(n Node) {
	top := ps.stack[len(ps.stack)-1]
	if text, ok := n.(*TextNode); ok {
		if last := len(top.body) - 1; last >= 0 {
			if prevText, ok := top.body[last].(*TextNode); ok {
				top.body[last] = &TextNode{Text: prevText.Text + text.Text}
				return
			}
		}
	}
	top.body = append(top.body, n)
}

// withPos stamps the template name and position from tok onto err, since
// ParseKey has neither to give its own errors.
func (ps *parseState) withPos(err error, tok *Token) error {
	if e, ok := err.(*Error); ok {
		e.Template = ps.name
		e.Line, e.Col = tok.Line, tok.Col
	}
	return err
}
