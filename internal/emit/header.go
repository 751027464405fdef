package emit

import (
	"fmt"

	"github.com/shapestone/protogen/internal/model"
)

// HeaderFor renders one module's complete .h file body: banner, include
// guard, includes, enum declarations, struct declaration, and prototypes.
// pkt is nil for a plain Structure module.
func HeaderFor(w *HeaderWriter, includeDirectives []string, enums []*model.Enum, s *model.Structure, pkt *model.Packet, comment string) error {
	if err := w.PrepareToAppend(); err != nil {
		return err
	}

	w.WriteBanner(w.path, comment)
	w.WriteGuardOpen()
	w.makeLineSeparator()

	w.writeIncludeDirective("<stdint.h>")
	for _, inc := range includeDirectives {
		w.writeIncludeDirective(inc)
	}
	w.makeLineSeparator()

	for _, e := range enums {
		if decl := e.RenderDeclaration(); decl != "" {
			w.write(decl)
			w.makeLineSeparator()
		}
	}

	if decl := s.RenderStructDeclaration(true); decl != "" {
		w.write(decl)
		w.makeLineSeparator()
	}

	if pkt != nil {
		w.write(fmt.Sprintf("uint32_t %s(void);", pkt.PacketIDAccessorName()))
		w.write(fmt.Sprintf("int %s(void);", pkt.MinDataLengthAccessorName()))
		w.write(fmt.Sprintf("void %s(void* pkt%s);", pkt.EncodeFunctionName(), pkt.ParameterSuffix()))
		w.write(fmt.Sprintf("int %s(const void* pkt%s);", pkt.DecodeFunctionName(), pkt.ParameterSuffix()))
		w.makeLineSeparator()
	}

	w.WriteGuardClose()
	return w.flush()
}
