package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/haksh/cli/cmd"
	"github.com/ardnew/haksh/host"
	"github.com/ardnew/haksh/lang"
	"github.com/ardnew/haksh/log"
	"github.com/ardnew/haksh/pkg"
)

// CLI is the top-level command-line interface for haksh.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Prelude []string `help:"Script(s) evaluated first; their bindings are in scope. '-' reads stdin." short:"I" type:"existingfile"`
	Define  []string `help:"Bind NAME to the value of expr-lang expression EXPR."                    short:"D" placeholder:"NAME=EXPR" sep:"none"`

	MaxDepth     int           `default:"100"   help:"Maximum nesting depth accepted by the parser."`
	MaxCallDepth int           `default:"10000" help:"Maximum depth of nested function calls."`
	HTTPTimeout  time.Duration `default:"0s"    help:"Default timeout of HTTP requests; 0 waits indefinitely." name:"http-timeout"`

	Run     cmd.Run     `cmd:"" default:"withargs" help:"Run a script, or start the REPL"`
	Repl    cmd.Repl    `cmd:""                    help:"Start the interactive REPL"`
	Parse   cmd.Parse   `cmd:""                    help:"Print the syntax tree of a script"`
	Fmt     cmd.Fmt     `cmd:""                    help:"Format a script"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
	Version cmd.Version `cmd:""                    help:"Print version information"`
}

// Run executes the haksh CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath+".yaml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	stopLog, err := cli.Log.start(ctx)
	if err != nil {
		return err
	}

	defer stopLog()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	env, err := defines(ctx, cli.Define)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSourceFiles(ctx, cli.Prelude)
	ctx = cmd.WithSession(ctx, cmd.Session{
		Env:      env,
		Options:  cli.options(),
		Host:     cli.hostOptions(),
		CacheDir: cacheDir(),
		Logger:   log.Default(),
	})

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}

func (c *CLI) options() []lang.Option {
	return []lang.Option{
		lang.WithMaxDepth(c.MaxDepth),
		lang.WithMaxCallDepth(c.MaxCallDepth),
	}
}

func (c *CLI) hostOptions() []host.Option {
	if c.HTTPTimeout <= 0 {
		return nil
	}

	return []host.Option{
		host.WithClient(&http.Client{Timeout: c.HTTPTimeout}),
	}
}
