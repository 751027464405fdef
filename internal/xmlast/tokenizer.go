package xmlast

import "strings"

// matcher attempts to recognize a token at the stream's current position.
// It returns nil without consuming input when it does not match.
type matcher func(s *stream) *Token

// tokenizer tries each matcher in order at the current position; the first
// match wins. This mirrors the matcher-list design used for XML lexing
// elsewhere in the pack, collapsed to a single rune path.
type tokenizer struct {
	s        *stream
	matchers []matcher
	inTag    bool // between a tag/PI opener and its closing > or />
}

func newTokenizer(input string) *tokenizer {
	return &tokenizer{
		s: newStream(input),
		matchers: []matcher{
			matchComment,
			matchCData,
			matchPIOrXMLDecl,
			literalMatcher(KindPIEnd, "?>"),
			literalMatcher(KindEndTagOpen, "</"),
			literalMatcher(KindTagSelfClose, "/>"),
			literalMatcher(KindTagOpen, "<"),
			literalMatcher(KindTagClose, ">"),
			literalMatcher(KindEquals, "="),
			matchString,
			matchName,
			matchText,
		},
	}
}

// next returns the next token, or a KindEOF token at end of input.
func (t *tokenizer) next() (*Token, error) {
	if t.inTag {
		for r, ok := t.s.peek(); ok && isSpace(r); r, ok = t.s.peek() {
			t.s.next()
		}
	} else {
		t.skipWhitespace()
	}

	if t.s.eof() {
		return &Token{Kind: KindEOF, Pos: t.s.position()}, nil
	}

	pos := t.s.position()
	if !t.inTag {
		if tok := matchText(t.s); tok != nil {
			tok.Pos = pos
			return tok, nil
		}
	}
	for _, m := range t.matchers {
		if tok := m(t.s); tok != nil {
			tok.Pos = pos
			switch tok.Kind {
			case KindTagOpen, KindEndTagOpen, KindXMLDeclStart, KindPIStart:
				t.inTag = true
			case KindTagClose, KindTagSelfClose, KindPIEnd:
				t.inTag = false
			}
			return tok, nil
		}
	}

	return nil, &SyntaxError{Pos: pos, Msg: "unrecognized input"}
}

func (t *tokenizer) skipWhitespace() {
	// Outside a tag, whitespace is only skipped when nothing but a tag or the
	// end of input follows it; text runs (which may contain whitespace) are
	// handled by matchText and kept verbatim by the parser.
	for {
		r, ok := t.s.peek()
		if !ok || !isSpace(r) {
			return
		}
		// Only skip leading whitespace when the next non-space rune starts
		// a tag; otherwise it is part of text content.
		if !followedByTag(t.s) {
			return
		}
		t.s.next()
	}
}

func followedByTag(s *stream) bool {
	i := 0
	for {
		r, ok := s.peekAt(i)
		if !ok {
			return true
		}
		if !isSpace(r) {
			return r == '<'
		}
		i++
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func literalMatcher(kind Kind, lit string) matcher {
	return func(s *stream) *Token {
		if s.matchLiteral(lit) {
			return &Token{Kind: kind, Value: lit}
		}
		return nil
	}
}

func matchComment(s *stream) *Token {
	if !s.matchLiteral("<!--") {
		return nil
	}
	var sb strings.Builder
	for {
		if s.matchLiteral("-->") {
			return &Token{Kind: KindCommentStart, Value: sb.String()}
		}
		r, ok := s.next()
		if !ok {
			return &Token{Kind: KindCommentStart, Value: sb.String()}
		}
		sb.WriteRune(r)
	}
}

func matchCData(s *stream) *Token {
	if !s.matchLiteral("<![CDATA[") {
		return nil
	}
	var sb strings.Builder
	for {
		if s.matchLiteral("]]>") {
			return &Token{Kind: KindCDataContent, Value: sb.String()}
		}
		r, ok := s.next()
		if !ok {
			return &Token{Kind: KindCDataContent, Value: sb.String()}
		}
		sb.WriteRune(r)
	}
}

func matchPIOrXMLDecl(s *stream) *Token {
	m := s.save()
	if !s.matchLiteral("<?") {
		return nil
	}
	if s.matchLiteral("xml") {
		s.restore(m)
		s.matchLiteral("<?xml")
		return &Token{Kind: KindXMLDeclStart, Value: "<?xml"}
	}
	return &Token{Kind: KindPIStart, Value: "<?"}
}

func matchString(s *stream) *Token {
	r, ok := s.peek()
	if !ok || (r != '"' && r != '\'') {
		return nil
	}
	quote := r
	s.next()
	var sb strings.Builder
	for {
		r, ok := s.next()
		if !ok {
			return &Token{Kind: KindString, Value: sb.String()}
		}
		if r == quote {
			return &Token{Kind: KindString, Value: sb.String()}
		}
		sb.WriteRune(r)
	}
}

func matchName(s *stream) *Token {
	r, ok := s.peek()
	if !ok || !isNameStart(r) {
		return nil
	}
	var sb strings.Builder
	for {
		r, ok := s.peek()
		if !ok || !isNameChar(r) {
			break
		}
		sb.WriteRune(r)
		s.next()
	}
	return &Token{Kind: KindName, Value: sb.String()}
}

func matchText(s *stream) *Token {
	r, ok := s.peek()
	if !ok || r == '<' {
		return nil
	}
	var sb strings.Builder
	for {
		r, ok := s.peek()
		if !ok || r == '<' {
			break
		}
		sb.WriteRune(r)
		s.next()
	}
	return &Token{Kind: KindText, Value: unescapeEntities(sb.String())}
}

func isNameStart(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '_' || r == ':'
}

func isNameChar(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9') || r == '.' || r == '-'
}

func unescapeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&apos;", "'",
		"&quot;", "\"",
	)
	return replacer.Replace(s)
}
