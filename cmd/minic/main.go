package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yumety/minic/src/backend/arm"
	"github.com/yumety/minic/src/backend/llvm"
	"github.com/yumety/minic/src/diag"
	"github.com/yumety/minic/src/frontend"
	"github.com/yumety/minic/src/ir/lower"
	"github.com/yumety/minic/src/util"
)

var version = "0.1.0"

// flags holds the raw command-line flags; cobra populates this, then
// resolveOptions turns it into a util.Options merged on top of any
// --config file and the built-in defaults (flags always win).
var flags struct {
	ast       bool
	ir        bool
	asm       bool
	llvm      bool
	verbose   bool
	out       string
	config    string
	keepGoing bool
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "minic [file]",
		Short:         "minic compiles a small imperative C subset to ARM32 assembly",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) > 0 {
				src = args[0]
			}
			return compile(src, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&flags.ast, "ast", false, "dump the typed syntax tree")
	rootCmd.Flags().BoolVar(&flags.ir, "ir", false, "dump the linear three-address IR")
	rootCmd.Flags().BoolVar(&flags.asm, "asm", false, "emit ARM32 assembly (default)")
	rootCmd.Flags().BoolVar(&flags.llvm, "llvm", false, "emit LLVM textual IR")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "annotate assembly with the IR it was generated from")
	rootCmd.Flags().StringVarP(&flags.out, "output", "o", "", "output file (defaults to stdout)")
	rootCmd.Flags().StringVar(&flags.config, "config", "", "YAML file pre-populating these settings")
	rootCmd.Flags().BoolVar(&flags.keepGoing, "keep-going", false, "degrade a non-constant array dimension to 1 instead of failing")

	return rootCmd
}

// loadConfig reads --config, if given, into an util.Options to merge
// under the command-line flags.
func loadConfig(path string) (util.Options, error) {
	if path == "" {
		return util.Options{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return util.Options{}, diag.NewIOError("read config", err)
	}
	var o util.Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return util.Options{}, diag.NewIOError("parse config", err)
	}
	return o, nil
}

// resolveOptions merges defaults, --config file and CLI flags, in that
// precedence order, and validates the output-mode flags are mutually
// exclusive.
func resolveOptions(src string) (util.Options, error) {
	modesSet := 0
	for _, b := range []bool{flags.ast, flags.ir, flags.asm, flags.llvm} {
		if b {
			modesSet++
		}
	}
	if modesSet > 1 {
		return util.Options{}, fmt.Errorf("only one of --ast, --ir, --asm, --llvm may be given")
	}

	fileOpt, err := loadConfig(flags.config)
	if err != nil {
		return util.Options{}, err
	}

	opt := util.Default().Merge(fileOpt)

	cliOpt := util.Options{
		Src:       src,
		Out:       flags.out,
		Verbose:   flags.verbose,
		KeepGoing: flags.keepGoing,
	}
	switch {
	case flags.ast:
		cliOpt.Mode = "ast"
	case flags.ir:
		cliOpt.Mode = "ir"
	case flags.llvm:
		cliOpt.Mode = "llvm"
	case flags.asm:
		cliOpt.Mode = "asm"
	}
	opt = opt.Merge(cliOpt)
	return opt, nil
}

func compile(src string, out, errOut io.Writer) error {
	opt, err := resolveOptions(src)
	if err != nil {
		fmt.Fprintf(errOut, "minic: %s\n", err)
		return err
	}

	source, err := readSource(opt)
	if err != nil {
		fmt.Fprintf(errOut, "minic: %s\n", err)
		return err
	}

	root, err := frontend.Parse(source)
	if err != nil {
		fmt.Fprintf(errOut, "minic: parse error: %s\n", err)
		return err
	}

	w, closeOut, err := openOutput(opt.Out, out)
	if err != nil {
		fmt.Fprintf(errOut, "minic: %s\n", err)
		return err
	}
	defer closeOut()

	if opt.Mode == "ast" {
		root.Fprint(w, 0)
		return nil
	}

	m, err := lower.Lower(root, opt)
	if err != nil {
		fmt.Fprintf(errOut, "minic: %s\n", err)
		return err
	}

	switch opt.Mode {
	case "ir":
		fmt.Fprint(w, m.String())
		return nil
	case "llvm":
		text, err := llvm.Emit(m)
		if err != nil {
			fmt.Fprintf(errOut, "minic: %s\n", err)
			return err
		}
		fmt.Fprint(w, text)
		return nil
	default:
		text, err := arm.Emit(m, opt.Verbose)
		if err != nil {
			fmt.Fprintf(errOut, "minic: %s\n", err)
		}
		fmt.Fprint(w, text)
		return err
	}
}

// readSource reads opt.Src, or stdin when opt.Src is empty: the
// positional file argument is optional.
func readSource(opt util.Options) (string, error) {
	if opt.Src == "" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return "", diag.NewIOError("read stdin", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(opt.Src)
	if err != nil {
		return "", diag.NewIOError("read source", err)
	}
	return string(data), nil
}

// openOutput opens opt.Out for writing, or falls back to out (stdout)
// when it is empty. The returned closer is always safe to call.
func openOutput(path string, out io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return out, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, diag.NewIOError("open output", err)
	}
	return f, func() { f.Close() }, nil
}
