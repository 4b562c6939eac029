package lang

// Parse reads a single s-expression from s, failing if anything is left
// over afterwards.
func Parse(s string) (SExp, error) {
	p := NewParser(s)

	term, err := p.Parse()
	if err == nil && p.index != len(p.text) {
		return nil, p.error("unexpected remainder")
	}

	return term, err
}

// ParseAll reads zero or more top-level s-expressions from s - one per
// constraint, in the CLI's usage.
func ParseAll(s string) ([]SExp, error) {
	terms := make([]SExp, 0)
	p := NewParser(s)

	for {
		term, err := p.Parse()
		if err != nil {
			return terms, err
		} else if term == nil {
			return terms, nil
		}

		terms = append(terms, term)
	}
}

// Parser turns a string into a stream of SExp nodes.
type Parser struct {
	text  []rune
	index int
}

// NewParser constructs a Parser over text.
func NewParser(text string) *Parser {
	return &Parser{text: []rune(text)}
}

// Parse reads the next top-level SExp, or (nil, nil) at end of input.
func (p *Parser) Parse() (SExp, error) {
	tok, str, err := p.next()
	if err != nil {
		return nil, err
	}

	switch {
	case tok == nil && str == nil:
		return nil, nil
	case str != nil:
		return &StrLit{*str}, nil
	case len(tok) == 1 && tok[0] == ')':
		p.index--
		return nil, p.error("unexpected end-of-list")
	case len(tok) == 1 && tok[0] == '(':
		var elements []SExp

		for c := p.lookahead(0); c == nil || *c != ')'; c = p.lookahead(0) {
			element, err := p.Parse()
			if err != nil {
				return nil, err
			} else if element == nil {
				p.index--
				return nil, p.error("unexpected end-of-file")
			}

			elements = append(elements, element)
		}

		p.next() // consume ')'

		return &List{elements}, nil
	default:
		return &Symbol{string(tok)}, nil
	}
}

// next extracts the next raw token, or a decoded quoted-string value when
// the token is a string literal.
func (p *Parser) next() ([]rune, *string, error) {
	if p.index == len(p.text) {
		return nil, nil, nil
	}

	switch p.text[p.index] {
	case '(', ')':
		p.index++
		return p.text[p.index-1 : p.index], nil, nil
	case ' ', '\t', '\n', '\r':
		p.index++
		return p.next()
	case ';':
		return p.parseComment()
	case '"':
		return p.parseString()
	}

	return p.parseSymbol(), nil, nil
}

func (p *Parser) lookahead(i int) *rune {
	pos := i + p.index

	if len(p.text) <= pos {
		return nil
	}

	switch p.text[pos] {
	case '(', ')', ';':
		return &p.text[pos]
	case ' ', '\n', '\t', '\r':
		return p.lookahead(i + 1)
	default:
		return nil
	}
}

func (p *Parser) parseSymbol() []rune {
	i := len(p.text)

	for j := p.index; j < i; j++ {
		switch p.text[j] {
		case '(', ')', ' ', '\n', '\t', '\r':
			i = j
		default:
			continue
		}

		break
	}

	tok := p.text[p.index:i]
	p.index = i

	return tok
}

// parseString reads a double-quoted token, honouring "\\\"" and "\\\\" as
// the only two escapes the sequence alphabet needs.
func (p *Parser) parseString() ([]rune, *string, error) {
	start := p.index
	p.index++ // opening quote

	var b []rune

	for {
		if p.index >= len(p.text) {
			p.index = start
			return nil, nil, p.error("unterminated string literal")
		}

		c := p.text[p.index]

		switch {
		case c == '"':
			p.index++
			s := string(b)

			return nil, &s, nil
		case c == '\\' && p.index+1 < len(p.text):
			b = append(b, p.text[p.index+1])
			p.index += 2
		default:
			b = append(b, c)
			p.index++
		}
	}
}

func (p *Parser) parseComment() ([]rune, *string, error) {
	i := len(p.text)

	for j := p.index; j < i; j++ {
		if p.text[j] == '\n' {
			i = j
			break
		}
	}

	p.index = i

	return p.next()
}

func (p *Parser) error(msg string) *SyntaxError {
	return &SyntaxError{span: NewSpan(p.index, p.index+1), msg: msg}
}
