package utils

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"strings"
)

type options struct {
	workers      uint
	minlen       uint
	nodesep      float64
	outputFormat string
	gopath       string
	modulePath   string
	fixture      string
	task         string
	metrics      bool
	noColorize   bool
	verbose      bool
	includeTests bool
	localOnly    bool
	closedWorld  bool
	visualize    bool
}

const (
	_CLASSIFY = iota
	_FACTS
	_DEPS_TO_DOT
	_CHECK_CYCLES
)

func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if Opts().NoColorize() {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

var task = []struct{ flag, explanation string }{{
	"classify",
	"Classify every class, field and type along the reference, field, class and type immutability dimensions",
}, {
	"facts",
	"Print the program facts consumed by the engine: write sites, escape facts and access traces per field",
}, {
	"deps-to-dot",
	"Create a graph of the classification dependency graph, labelled with the converged values",
}, {
	"check-cycles",
	"Print the strongly connected components of the classification dependency graph",
}}

var opts = &options{}

type optInterface struct{}

type taskInterface struct{}

func Opts() optInterface {
	return optInterface{}
}

func (optInterface) NoColorize() bool {
	return opts.noColorize
}

// Workers is the number of partitions the solver may evaluate concurrently.
func (optInterface) Workers() int {
	if opts.workers == 0 {
		return 1
	}
	return int(opts.workers)
}

func (optInterface) Minlen() uint {
	return opts.minlen
}
func (optInterface) Nodesep() float64 {
	return opts.nodesep
}
func (optInterface) OutputFormat() string {
	return opts.outputFormat
}
func (optInterface) GoPath() string {
	return opts.gopath
}
func (optInterface) ModulePath() string {
	return opts.modulePath
}

// Fixture is the path of a YAML program description. When set, the program
// model is read from it instead of loading Go packages.
func (optInterface) Fixture() string {
	return opts.fixture
}
func (optInterface) Task() taskInterface {
	return taskInterface{}
}
func (taskInterface) IsClassify() bool {
	return opts.task == task[_CLASSIFY].flag
}
func (taskInterface) IsFacts() bool {
	return opts.task == task[_FACTS].flag
}
func (taskInterface) IsDepsToDot() bool {
	return opts.task == task[_DEPS_TO_DOT].flag
}
func (taskInterface) IsCycleCheck() bool {
	return opts.task == task[_CHECK_CYCLES].flag
}
func (optInterface) Metrics() bool {
	return opts.metrics
}
func (optInterface) Verbose() bool {
	return opts.verbose
}
func (optInterface) IncludeTests() bool {
	return opts.includeTests
}

// LocalOnly restricts the classified roots to types declared in the loaded
// packages. Types from dependencies are still classified on demand.
func (optInterface) LocalOnly() bool {
	return opts.localOnly
}

// ClosedWorld assumes that every implementer of a type is part of the
// analyzed program.
func (optInterface) ClosedWorld() bool {
	return opts.closedWorld
}
func (optInterface) Visualize() bool {
	return opts.visualize
}

func init() {
	taskFlag := "\n"
	for _, task := range task {
		taskFlag += task.flag + " -- " + task.explanation + "\n"
	}
	taskFlag += "\n"

	flag.UintVar(&(opts.workers), "workers", uint(runtime.GOMAXPROCS(0)), "Number of dependency graph partitions solved concurrently.")
	flag.UintVar(&(opts.minlen), "minlen", 2, "Minimum edge length (for wider output).")
	flag.Float64Var(&(opts.nodesep), "nodesep", 0.35, "Minimum space between two adjacent nodes in the same rank (for taller output).")
	flag.StringVar(&(opts.outputFormat), "format", "svg", "output file format [svg | png | jpg | ...]")
	flag.StringVar(&(opts.gopath), "gopath", "examples", "specify GOPATH to be used for packages.Load")
	flag.StringVar(&(opts.modulePath), "modulepath", "", `specify a path to a directory containing a Go module.
- If provided this will make our code loading tools (that piggyback on Go's tools) run
in "module-aware" mode (GO111MODULE=on).`)
	flag.StringVar(&(opts.fixture), "fixture", "", "read the program model from a YAML fixture instead of Go packages")
	flag.StringVar(&(opts.task), "task", task[_CLASSIFY].flag, "Set the task to do during execution. Options:"+taskFlag)
	flag.BoolVar(&(opts.metrics), "metrics", false, "Enable collection of solver metrics")
	flag.BoolVar(&(opts.noColorize), "no-colorize", false, "Disable pretty printer colorization")
	flag.BoolVar(&(opts.verbose), "verbose", false, "enable verbose output")
	flag.BoolVar(&(opts.includeTests), "include-tests", false, "include test files in the analysis.")
	flag.BoolVar(&(opts.localOnly), "local-pkgs", true, "only report types declared in the loaded packages.")
	flag.BoolVar(&(opts.closedWorld), "closed-world", true, "assume all implementers of a type are part of the program")
	flag.BoolVar(&(opts.visualize), "visualize", false, "enable visualization via XDot")

	// Set up logging
	log.SetFlags(log.Ltime | log.Lshortfile)
}

func ParseArgs() {
	// Calling flag.Parse in init messes up unit tests.
	// See https://stackoverflow.com/questions/60235896/flag-provided-but-not-defined-test-v
	flag.Parse()

	validTask := false
	for _, task := range task {
		if task.flag == opts.task {
			validTask = true
			break
		}
	}

	if !validTask {
		log.Fatalf("Value \"%s\" is not valid for -task", opts.task)
	}

	if Opts().Task().IsDepsToDot() {
		opts.noColorize = true
	}
}

func (optInterface) OnVerbose(do func()) {
	if Opts().Verbose() {
		do()
	}
}
