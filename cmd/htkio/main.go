// Command htkio is the CLI for htkio.
// It maps batches of HTK / HTS alignment files and inspects decision tree and
// raw vector files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/htkio/internal/batch"
	"github.com/FocuswithJustin/htkio/internal/logging"
)

const version = "0.1.0"

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// Globals holds flags shared by every command.
type Globals struct {
	LogLevel  string `name:"log-level" help:"Log level" default:"info" enum:"debug,info,warn,error" env:"HTKIO_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" default:"text" enum:"text,json"`
	Workers   int    `help:"Utterances processed in parallel (0 = one per CPU)" default:"0" env:"HTKIO_WORKERS"`
	Manifest  string `help:"Write a JSON manifest of batch outputs to this path" type:"path"`
}

func (g *Globals) initLogging() error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

func (g *Globals) runner() *batch.Runner {
	config := batch.DefaultConfig()
	if g.Workers > 0 {
		config.Workers = g.Workers
	}
	config.ManifestPath = g.Manifest
	return batch.NewRunner(config)
}

// CLI defines the command-line interface for htkio.
var CLI struct {
	Globals

	Alignment AlignmentGroup `cmd:"" help:"Alignment file operations (map, leaf-macro-id, ques-answers, flatten, unflatten)"`
	Tree      TreeGroup      `cmd:"" help:"Decision tree file operations"`
	Vecseq    VecseqGroup    `cmd:"" help:"Raw vector sequence file operations"`
	Version   VersionCmd     `cmd:"" help:"Print version information"`
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(stdout, "htkio version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("htkio"),
		kong.Description("htkio - HTK / HTS alignment, decision tree and vector file tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(CLI.Globals.initLogging())
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
