// SPDX-License-Identifier: Apache-2.0
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"contractc/internal/compiler"
	"contractc/internal/errors"
	"contractc/internal/layout"
	"contractc/internal/target"
)

type options struct {
	target        string
	config        string
	dumpLayout    bool
	dumpSelectors bool
	verbosity     int
	files         []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("contractc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: contractc [flags] <file.sol>...")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.target, "target", "solana", "target chain: solana, polkadot or evm")
	fs.StringVar(&opts.config, "config", "", "HCL file overriding the target parameters")
	fs.BoolVar(&opts.dumpLayout, "dump-layout", false, "print the storage layout of every contract")
	fs.BoolVar(&opts.dumpSelectors, "dump-selectors", false, "print the selectors of every contract")
	fs.IntVar(&opts.verbosity, "v", 0, "log verbosity")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.files = fs.Args()
	if len(opts.files) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no input files")
	}
	return opts, nil
}

func loadConfig(opts *options) (target.Config, error) {
	t, err := target.Parse(opts.target)
	if err != nil {
		return target.Config{}, err
	}
	cfg := target.Default(t)
	if opts.config != "" {
		if cfg, err = target.LoadFile(opts.config, t); err != nil {
			return target.Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return target.Config{}, fmt.Errorf("invalid %s configuration: %w", t, err)
	}
	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return 2
	}
	commonlog.Configure(opts.verbosity, nil)

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "contractc: %v\n", err)
		return 2
	}

	failed := false
	for _, path := range opts.files {
		if !compileFile(path, cfg, opts, stdout, stderr) {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

func compileFile(path string, cfg target.Config, opts *options, stdout, stderr io.Writer) bool {
	startTime := time.Now()

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read file: %v\n", err)
		return false
	}

	res := compiler.CompileSource(path, string(source), cfg)

	reporter := errors.NewErrorReporter(path, string(source))
	for _, d := range res.Diagnostics {
		fmt.Fprint(stderr, reporter.FormatError(d))
	}

	formattedDuration := formatDuration(time.Since(startTime))
	if !res.Ok {
		fmt.Fprintln(stderr, color.RedString("Compilation of %s failed after %s", path, formattedDuration))
		return false
	}

	for _, c := range res.Contracts() {
		fmt.Fprintln(stdout, layout.Summary(res.Namespace, c))
	}
	if opts.dumpLayout {
		dumpLayout(stdout, res)
	}
	if opts.dumpSelectors {
		dumpSelectors(stdout, res)
	}

	fmt.Fprintln(stdout, color.GreenString("Successfully compiled %s for %s in %s", path, cfg.Target, formattedDuration))
	return true
}

func dumpLayout(w io.Writer, res *compiler.Result) {
	for _, c := range res.Contracts() {
		fmt.Fprintf(w, "%s:\n", color.New(color.Bold).Sprint(c.Name))
		for _, e := range layout.Describe(res.Namespace, c) {
			fmt.Fprintf(w, "  %-24s %-24s %s\n", e.Contract+"."+e.Name, e.Type, e.Location)
		}
	}
}

func dumpSelectors(w io.Writer, res *compiler.Result) {
	for _, c := range res.Contracts() {
		iface, ok := res.Interface(c.Name)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s %s (%s)\n", color.New(color.Bold).Sprint(iface.Name), hex.EncodeToString(iface.Selector), iface.Codec)
		for _, m := range iface.Methods {
			fmt.Fprintf(w, "  %s %s\n", hex.EncodeToString(m.Selector), m.Signature)
			if len(m.Accounts) == 0 {
				continue
			}
			var accounts []string
			for _, acc := range m.Accounts {
				flags := ""
				if acc.Writable {
					flags += "w"
				}
				if acc.Signer {
					flags += "s"
				}
				if flags != "" {
					accounts = append(accounts, acc.Name+"("+flags+")")
				} else {
					accounts = append(accounts, acc.Name)
				}
			}
			fmt.Fprintf(w, "    accounts: %s\n", strings.Join(accounts, ", "))
		}
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
