// Package main implements the toon CLI for converting between TOON,
// JSON and YAML on the command line.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/toonfmt/toon/toon"
)

var (
	flagDelimiter  string
	flagIndent     int
	flagLengthMark bool
	flagNoTabular  bool
	flagFrom       string
	flagTo         string
	flagLenient    bool
	flagCompact    bool
	version        = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "toon",
	Short: "Convert between TOON, JSON and YAML",
	Long: `toon converts structured data to and from TOON, a token-efficient
indentation-based text format for LLM prompts.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(validateCmd)

	encodeCmd.Flags().StringVar(&flagFrom, "from", "json", "input format: json or yaml")
	encodeCmd.Flags().StringVar(&flagDelimiter, "delimiter", "comma", "cell delimiter: comma, tab or pipe")
	encodeCmd.Flags().IntVar(&flagIndent, "indent", 2, "spaces per nesting level")
	encodeCmd.Flags().BoolVar(&flagLengthMark, "length-marker", false, "write # before array lengths")
	encodeCmd.Flags().BoolVar(&flagNoTabular, "no-tabular", false, "disable tabular array folding")

	decodeCmd.Flags().StringVar(&flagTo, "to", "json", "output format: json or yaml")
	decodeCmd.Flags().IntVar(&flagIndent, "indent", 2, "spaces per nesting level")
	decodeCmd.Flags().BoolVar(&flagLenient, "lenient", false, "tolerate length and indentation deviations")
	decodeCmd.Flags().BoolVar(&flagCompact, "compact", false, "emit compact JSON")

	validateCmd.Flags().BoolVar(&flagLenient, "lenient", false, "grade recoverable findings as warnings")
	validateCmd.Flags().IntVar(&flagIndent, "indent", 2, "spaces per nesting level")
}

// encodeCmd converts JSON or YAML to TOON.
var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode JSON or YAML as TOON",
	Long: `Encode JSON or YAML input as TOON.

Examples:
  # Encode a JSON file
  toon encode data.json

  # Encode from stdin
  cat data.json | toon encode -

  # Encode YAML with tab cells
  toon encode --from yaml --delimiter tab data.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

// decodeCmd converts TOON to JSON or YAML.
var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode TOON to JSON or YAML",
	Long: `Decode TOON input to JSON or YAML.

Examples:
  # Decode to pretty JSON
  toon decode data.toon

  # Decode loosely edited input to YAML
  toon decode --lenient --to yaml data.toon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

// validateCmd lints TOON input without converting it.
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check TOON input and report findings",
	Long: `Validate TOON input and print every error and warning found.
Exits nonzero when errors are present.

Examples:
  toon validate data.toon
  cat data.toon | toon validate --lenient -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

// readInput reads the positional file argument, or stdin for "-" or no
// argument.
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func parseDelimiter(s string) (byte, error) {
	switch strings.ToLower(s) {
	case "comma", ",":
		return ',', nil
	case "tab", "\t":
		return '\t', nil
	case "pipe", "|":
		return '|', nil
	default:
		return 0, fmt.Errorf("unknown delimiter %q (want comma, tab or pipe)", s)
	}
}

func runEncode(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	var doc *toon.Value
	switch strings.ToLower(flagFrom) {
	case "json":
		doc, err = toon.FromJSON(data)
	case "yaml", "yml":
		doc, err = toon.FromYAML(data)
	default:
		return fmt.Errorf("unknown input format %q (want json or yaml)", flagFrom)
	}
	if err != nil {
		return err
	}

	delim, err := parseDelimiter(flagDelimiter)
	if err != nil {
		return err
	}
	opts := toon.EncodeOptions{
		Delimiter:     delim,
		IndentWidth:   flagIndent,
		PreferTabular: !flagNoTabular,
		LengthMarker:  flagLengthMark,
	}
	out, err := toon.Encode(toon.Normalize(doc), opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	doc, err := toon.Decode(string(data), toon.DecodeOptions{
		Strict:      !flagLenient,
		IndentWidth: flagIndent,
	})
	if err != nil {
		return err
	}

	switch strings.ToLower(flagTo) {
	case "json":
		out, err := toon.ToJSON(doc)
		if err != nil {
			return err
		}
		if !flagCompact {
			var pretty bytes.Buffer
			if err := gojson.Indent(&pretty, out, "", "  "); err != nil {
				return err
			}
			out = pretty.Bytes()
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	case "yaml", "yml":
		out, err := toon.ToYAML(doc)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", flagTo)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	level := toon.LevelStrict
	if flagLenient {
		level = toon.LevelLenient
	}
	res := toon.ValidateWithOptions(string(data), toon.ValidateOptions{
		Level:       level,
		IndentWidth: flagIndent,
	})

	for _, d := range res.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), d)
	}
	for _, d := range res.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), d)
	}
	if !res.Valid {
		return fmt.Errorf("%d error(s)", len(res.Errors))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok (%d warning(s))\n", len(res.Warnings))
	return nil
}
