// Package helperruntime ships the generated C code's runtime support
// files verbatim: the byte-order-aware field encoders/decoders, the
// bitfield packer, float special-value classification, and scaled
// fixed-point conversions. These are static ancillary C sources copied
// next to generated output, not compiled as part of this Go module.
package helperruntime

import "embed"

//go:embed *.h *.c
var files embed.FS

// Files returns the embedded filesystem containing every shipped runtime
// file by its base name (e.g. "fieldencode.h").
func Files() embed.FS {
	return files
}

// Names lists every shipped runtime file, in the stable order the CLI
// copies them to the output directory.
func Names() []string {
	return []string{
		"fieldencode.h", "fieldencode.c",
		"fielddecode.h", "fielddecode.c",
		"bitfieldspecial.h", "bitfieldspecial.c",
		"floatspecial.h", "floatspecial.c",
		"scaledencode.h", "scaledencode.c",
		"scaleddecode.h", "scaleddecode.c",
	}
}
