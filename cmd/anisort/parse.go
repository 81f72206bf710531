package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/anisort/internal/pipeline"
	"github.com/vmunix/anisort/pkg/release"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file-name>...",
	Short: "Parse file names (no config or filesystem access needed)",
	Long: `Parse file names to extract series title, season and episode.

Examples:
  anisort parse "[SubsPlease] Sousou no Frieren - 05 (1080p) [ABCD1234].mkv"
  anisort parse --engine rls "Show.Name.S02E03.1080p.WEB-DL.x264-GROUP.mkv"
  anisort parse --file names.txt --json`,
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().String("engine", "regex", "Parser engine (regex, rls)")
	parseCmd.Flags().StringP("file", "f", "", "Read file names from file (one per line)")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	engine, _ := cmd.Flags().GetString("engine")
	inputFile, _ := cmd.Flags().GetString("file")

	var names []string
	switch {
	case inputFile != "":
		var err error
		if names, err = readNames(inputFile); err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
	case len(args) > 0:
		names = args
	default:
		return fmt.Errorf("usage: anisort parse <file-name> or anisort parse --file <filename>")
	}

	parser, err := pipeline.NewParser(engine)
	if err != nil {
		return err
	}
	n := release.NewNormalizer(parser)

	results := make([]release.Metadata, 0, len(names))
	for _, name := range names {
		results = append(results, n.Normalize(name))
	}

	if jsonOutput {
		printJSON(results)
		return nil
	}
	for i, m := range results {
		if i > 0 {
			fmt.Println()
		}
		printMetadata(m)
	}
	return nil
}

// readNames reads file names from a file, one per line. Blank lines and
// lines starting with # are ignored.
func readNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}

func printMetadata(m release.Metadata) {
	fmt.Printf("  Name:       %s\n", m.RawTitle)
	fmt.Printf("  Title:      %s\n", orNone(m.CleanTitle))
	if label := m.SeasonLabel(); label != "" {
		fmt.Printf("  Season:     %s\n", label)
	}
	if m.Episode != nil {
		fmt.Printf("  Episode:    %d\n", *m.Episode)
	} else {
		fmt.Println("  Episode:    (none)")
	}
	if m.Year > 0 {
		fmt.Printf("  Year:       %d\n", m.Year)
	}
	if m.Resolution != "" {
		fmt.Printf("  Resolution: %s\n", m.Resolution)
	}
	if m.Source != "" {
		fmt.Printf("  Source:     %s\n", m.Source)
	}
	if m.ReleaseGroup != "" {
		fmt.Printf("  Group:      %s\n", m.ReleaseGroup)
	}
	if m.ParseError != "" {
		fmt.Printf("  Error:      %s\n", m.ParseError)
	}
}
