package emit

import (
	"github.com/shapestone/protogen/internal/model"
)

// SourceFor renders one packet module's complete .c file body: runtime
// includes (first emission only), then the encode/decode function bodies.
// Plain Structure modules (pkt == nil) have no standalone encode/decode
// entry points of their own — their children are inlined into whichever
// packet embeds them — so SourceFor is only called for packet modules.
func SourceFor(w *SourceWriter, headerInclude string, pkt *model.Packet, bigEndian bool) error {
	// A source file has no closing sentinel: all existing content is kept
	// and the new functions follow it.
	if err := w.prepareToAppend(""); err != nil {
		return err
	}
	w.WriteRuntimeIncludes()
	w.writeIncludeDirective(headerInclude)
	w.makeLineSeparator()

	ctx := model.EmitContext{BigEndian: bigEndian, CursorVar: "byteindex", BitCountVar: "bitcount"}

	for _, line := range pkt.RenderEncode(ctx) {
		w.write(line)
	}
	w.makeLineSeparator()

	for _, line := range pkt.RenderDecode(ctx) {
		w.write(line)
	}
	w.makeLineSeparator()

	w.write(pkt.RenderAccessors())

	return w.flush()
}
