package model

import "fmt"

// EmitDeclaration renders this structure's own member line within its
// parent (used only when the parent chose not to inline a single-child
// structure); nested structure bodies are emitted separately by
// RenderStructDeclaration.
func (s *Structure) EmitDeclaration() []string {
	name := s.Name
	if s.Array != "" {
		name = fmt.Sprintf("%s[%s]", s.Name, s.Array)
	}
	line := fmt.Sprintf("%s %s;", s.TypeName, name)
	if s.Comment != "" {
		line += " /*!< " + s.Comment + " */"
	}
	return []string{line}
}

// EmitEncode renders the C statements that encode every child field in
// document order, descending into nested structures with an extended
// receiver expression. Array structures wrap the whole body in a for-loop
// over the nested receiver's indexed element.
func (s *Structure) EmitEncode(ctx EmitContext) []string {
	if s.Array == "" {
		return s.emitChildrenEncode(s.extendReceiver(ctx))
	}

	idx := "i"
	inner := ctx
	inner.Receiver = fmt.Sprintf("%s%s[%s].", ctx.Receiver, s.Name, idx)

	lines := []string{
		fmt.Sprintf("for (%s = 0; %s; %s++)", idx, s.loopCondition(ctx, idx), idx),
		"{",
	}
	for _, l := range s.emitChildrenEncode(inner) {
		lines = append(lines, "    "+l)
	}
	lines = append(lines, "}")
	return lines
}

// EmitDecode mirrors EmitEncode for the decode direction.
func (s *Structure) EmitDecode(ctx EmitContext) []string {
	if s.Array == "" {
		return s.emitChildrenDecode(s.extendReceiver(ctx))
	}

	idx := "i"
	inner := ctx
	inner.Receiver = fmt.Sprintf("%s%s[%s].", ctx.Receiver, s.Name, idx)

	lines := []string{
		fmt.Sprintf("for (%s = 0; %s; %s++)", idx, s.loopCondition(ctx, idx), idx),
		"{",
	}
	for _, l := range s.emitChildrenDecode(inner) {
		lines = append(lines, "    "+l)
	}
	lines = append(lines, "}")
	return lines
}

// extendReceiver appends this structure's own field name onto ctx's receiver
// when it has more than one child (so they land on "parent.thisField.x"
// rather than colliding at "parent." for every structure's children). Only
// used for the non-array case: the array branch already builds the
// per-element "parent.thisField[i]." receiver itself and must not have the
// name appended a second time.
func (s *Structure) extendReceiver(ctx EmitContext) EmitContext {
	if len(s.Children) != 1 {
		ctx.Receiver = ctx.Receiver + s.Name + "."
	}
	return ctx
}

func (s *Structure) emitChildrenEncode(ctx EmitContext) []string {
	var lines []string
	for _, child := range s.Children {
		switch c := child.(type) {
		case *Primitive:
			lines = append(lines, c.EmitEncode(ctx)...)
		case *Structure:
			lines = append(lines, c.EmitEncode(ctx)...)
		}
	}
	return lines
}

func (s *Structure) emitChildrenDecode(ctx EmitContext) []string {
	var lines []string
	for _, child := range s.Children {
		switch c := child.(type) {
		case *Primitive:
			lines = append(lines, c.EmitDecode(ctx)...)
		case *Structure:
			lines = append(lines, c.EmitDecode(ctx)...)
		}
	}
	return lines
}

// loopCondition mirrors Primitive.loopCondition for an array-of-structure
// field.
func (s *Structure) loopCondition(ctx EmitContext, idx string) string {
	if s.VariableArray == "" {
		return fmt.Sprintf("%s < %s", idx, s.Array)
	}
	return fmt.Sprintf("%s < (int)%s && %s < %s", idx, ctx.accessor(s.VariableArray), idx, s.Array)
}
