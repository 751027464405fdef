// Command protogen turns a protocol description XML document into
// generated C encode/decode sources, headers, and Markdown documentation.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shapestone/protogen/internal/diagnostics"
	"github.com/shapestone/protogen/internal/driver"
	"github.com/shapestone/protogen/internal/emit"
	"github.com/shapestone/protogen/internal/model"
	"github.com/shapestone/protogen/internal/runtimefiles/helperruntime"
)

// config holds the CLI flags, registered once on the root command.
type config struct {
	noDoxygen    bool
	noMarkdown   bool
	noHelperFiles bool
	logLevel     string
	logFormat    string
}

func (c *config) registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&c.noDoxygen, "no-doxygen", false, "omit the brief description from generated header banners (the Doxygen banner block itself is still written)")
	flags.BoolVar(&c.noMarkdown, "no-markdown", false, "skip Markdown documentation generation")
	flags.BoolVar(&c.noHelperFiles, "no-helper-files", false, "skip copying the helper runtime C files")
	flags.StringVar(&c.logLevel, "log-level", "info", "log level, one of: debug, info, warn, error")
	flags.StringVar(&c.logFormat, "log-format", "text", "log format, one of: text, json")
}

func (c *config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.logLevel)}
	var handler slog.Handler
	if c.logFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:           "protogen input.xml [outputPath]",
		Short:         "Generate C encode/decode code and docs from a protocol description",
		Args:          cobra.RangeArgs(1, 2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(cfg, args)
		},
	}
	cfg.registerFlags(rootCmd)

	// The flags are spelled with a single dash (-no-doxygen); pflag would
	// read that as a cluster of one-letter shorthands, so such arguments are
	// rewritten to the double-dash form before parsing.
	args := os.Args[1:]
	for i, a := range args {
		if len(a) > 2 && a[0] == '-' && a[1] != '-' {
			args[i] = "-" + a
		}
	}
	rootCmd.SetArgs(args)

	// The historical exit-code convention is inverted: 1 means success, 0
	// means failure. This is preserved rather than "fixed" for
	// compatibility with existing build scripts.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(0)
	}
	os.Exit(1)
}

func run(cfg *config, args []string) error {
	inputPath := args[0]
	if !strings.HasSuffix(inputPath, ".xml") {
		return fmt.Errorf("input path %q must end in .xml", inputPath)
	}

	outputPath := filepath.Dir(inputPath)
	if len(args) == 2 {
		outputPath = args[1]
	}

	logger := cfg.newLogger(os.Stderr)

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %q: %w", inputPath, err)
	}

	diag := diagnostics.NewSlogCollector(logger)

	doc, err := driver.Load(string(input), diag)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", inputPath, err)
	}

	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("creating output directory %q: %w", outputPath, err)
	}

	for _, module := range doc.Modules {
		if err := emitModule(cfg, doc, module, outputPath); err != nil {
			return err
		}
	}

	if !cfg.noHelperFiles {
		if err := copyHelperFiles(outputPath); err != nil {
			return err
		}
	}

	for _, d := range diag.All() {
		fmt.Println(d.String())
	}

	return nil
}

func emitModule(cfg *config, doc *driver.Document, m driver.Module, outputPath string) error {
	headerPath := filepath.Join(outputPath, m.FileStem+"Packet.h")
	sourcePath := filepath.Join(outputPath, m.FileStem+"Packet.c")

	var s *model.Structure
	var pkt *model.Packet
	if m.Packet != nil {
		pkt = m.Packet
		s = pkt.Structure
	} else {
		s = m.Structure
	}

	hw := emit.NewHeaderWriter(headerPath)
	comment := s.Comment
	if cfg.noDoxygen {
		comment = ""
	}
	if err := emit.HeaderFor(hw, doc.IncludeDirectives(), s.Enums, s, pkt, comment); err != nil {
		return err
	}

	if pkt != nil {
		sw := emit.NewSourceWriter(sourcePath)
		if err := emit.SourceFor(sw, m.FileStem+"Packet.h", pkt, doc.BigEndian); err != nil {
			return err
		}
	}

	if !cfg.noMarkdown && pkt != nil {
		resolved := doc.ReplaceEnumerationNameWithValue(pkt.IDLiteral())
		md := emit.MarkdownForPacket(pkt, pkt.IDLiteral(), resolved)
		mdPath := filepath.Join(outputPath, m.FileStem+"Packet.md")
		if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", mdPath, err)
		}
	}

	return nil
}

func copyHelperFiles(outputPath string) error {
	for _, name := range helperruntime.Names() {
		data, err := helperruntime.Files().ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading embedded runtime file %q: %w", name, err)
		}
		dst := filepath.Join(outputPath, name)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("writing runtime file %q: %w", dst, err)
		}
	}
	return nil
}
