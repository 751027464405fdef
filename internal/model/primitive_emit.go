package model

import "fmt"

// EmitDeclaration renders this field's struct member line(s), or nil for a
// notInMemory field (which still participates in encode/decode but has no
// backing storage).
func (p *Primitive) EmitDeclaration() []string {
	decl := p.StructMemberDeclaration()
	if decl == "" {
		return nil
	}
	if p.Comment != "" {
		decl += " /*!< " + p.Comment + " */"
	}
	return []string{decl}
}

// EmitEncode renders the C statements that write this field onto the wire,
// calling into the shipped fieldencode/bitfieldspecial helper runtime.
func (p *Primitive) EmitEncode(ctx EmitContext) []string {
	if p.NotEncoded {
		return nil
	}

	accessor := ctx.accessor(p.Name)
	if p.Constant != "" {
		accessor = p.Constant
	}

	if p.IsBitfield() {
		lines := []string{
			fmt.Sprintf("encodeBitfield(data, %s, &%s, (uint32_t)(%s), %d);",
				ctx.CursorVar, ctx.BitCountVar, accessor, p.BitfieldBits),
		}
		if p.TerminatesBitfield {
			lines = append(lines, fmt.Sprintf("%s += %d; /* flush */", ctx.CursorVar, p.runBytes))
		}
		return lines
	}

	helper := encodeHelperFor(p.wireTypeName(), ctx.BigEndian)

	if p.Array != "" {
		idx := "i"
		body := fmt.Sprintf("%s = %s(%s[%s], data, %s);", ctx.CursorVar, helper, accessor, idx, ctx.CursorVar)
		return []string{
			fmt.Sprintf("for (%s = 0; %s; %s++)", idx, p.loopCondition(ctx, idx), idx),
			"{",
			"    " + body,
			"}",
		}
	}

	return []string{fmt.Sprintf("%s = %s(%s, data, %s);", ctx.CursorVar, helper, accessor, ctx.CursorVar)}
}

// EmitDecode renders the C statements that read this field from the wire.
// Constant fields are verified, not stored, and are absent from decode
// output per spec.
func (p *Primitive) EmitDecode(ctx EmitContext) []string {
	if p.NotEncoded {
		return nil
	}

	helper := decodeHelperFor(p.wireTypeName(), ctx.BigEndian)
	accessor := ctx.accessor(p.Name)

	if p.IsBitfield() {
		lines := []string{
			fmt.Sprintf("%s = decodeBitfield(data, %s, &%s, %d);",
				accessor, ctx.CursorVar, ctx.BitCountVar, p.BitfieldBits),
		}
		if p.TerminatesBitfield {
			lines = append(lines, fmt.Sprintf("%s += %d; /* flush */", ctx.CursorVar, p.runBytes))
		}
		return lines
	}

	size := p.elementByteSize()

	if p.Constant != "" {
		verifyVar := "verify_" + p.Name
		ctype := cTypeForType(p.wireTypeName())
		return []string{
			fmt.Sprintf("%s %s = %s(data, %s); /* constant, verified not stored */", ctype, verifyVar, helper, ctx.CursorVar),
			fmt.Sprintf("%s += %d;", ctx.CursorVar, size),
			fmt.Sprintf("if (%s != (%s)(%s))", verifyVar, ctype, p.Constant),
			"{",
			"    return 0;",
			"}",
		}
	}

	if p.Array != "" {
		idx := "i"
		body := fmt.Sprintf("%s[%s] = %s(data, %s); %s += %d;", accessor, idx, helper, ctx.CursorVar, ctx.CursorVar, size)
		return []string{
			fmt.Sprintf("for (%s = 0; %s; %s++)", idx, p.loopCondition(ctx, idx), idx),
			"{",
			"    " + body,
			"}",
		}
	}

	return []string{
		fmt.Sprintf("%s = %s(data, %s);", accessor, helper, ctx.CursorVar),
		fmt.Sprintf("%s += %d;", ctx.CursorVar, size),
	}
}

// loopCondition returns the runtime bound for an array field's index
// variable idx: the variableArray sibling's current value capped by the
// fixed array capacity, or just the fixed capacity when there is no
// variableArray.
func (p *Primitive) loopCondition(ctx EmitContext, idx string) string {
	if p.VariableArray == "" {
		return fmt.Sprintf("%s < %s", idx, p.Array)
	}
	return fmt.Sprintf("%s < (int)%s && %s < %s", idx, ctx.accessor(p.VariableArray), idx, p.Array)
}
