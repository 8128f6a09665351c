// Command voteflow is a small operational companion to the voting
// library.
//
// Usage:
//
//	voteflow estimate -p 0.9 -s 12 -c 0.002   # rounds and cost for a pipeline
//	voteflow config -config voteflow.yaml     # print the effective config
//	voteflow version
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voteflow/voteflow/config"
	"github.com/voteflow/voteflow/estimate"
)

// Injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "estimate":
		runEstimate(os.Args[2:])
	case "config":
		runConfig(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runEstimate(args []string) {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	p := fs.Float64("p", 0.9, "per-sample probability of a correct answer")
	s := fs.Int("s", 1, "number of voted steps in the pipeline")
	t := fs.Float64("t", estimate.DefaultTarget, "target pipeline success probability")
	c := fs.Float64("c", 0, "average cost of one sample call")
	fs.Parse(args)

	k, err := estimate.KMin(*p, *s, *t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "estimate failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("k_min:           %d\n", k)
	if *c > 0 {
		cost, err := estimate.Cost(*p, *s, *c, k, *t)
		if err != nil {
			fmt.Fprintf(os.Stderr, "estimate failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("expected cost:   %.6f\n", cost)
	}
}

func runConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render config: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}

func printVersion() {
	fmt.Printf("voteflow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`voteflow - consensus voting toolkit

Commands:
  estimate   Compute the minimum vote margin and expected cost
  config     Print the effective configuration
  version    Show version information

Run 'voteflow <command> -h' for command flags.`)
}
