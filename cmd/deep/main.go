// Package main provides the deep CLI: graph demonstrations and a CSV
// regression trainer built on the autodiff engine.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
)

const version = "v0.1.0"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "deep %s\n", version)
		return nil
	case "demo":
		return runDemo(args[1:], stdout)
	case "train":
		return runTrain(args[1:], stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stdout)
		return errors.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "deep - reverse-mode autodiff over dense matrices")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  demo       Build two example graphs and print their structure")
	fmt.Fprintln(w, "  train      Train an MLP regressor on a CSV dataset")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deep <command> -h' for command flags.")
}
