package main

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toyz/cachewire/internal/cli"
	"github.com/toyz/cachewire/internal/config"
	"github.com/toyz/cachewire/internal/utils"
)

// app holds the state shared by every command once flags are parsed.
type app struct {
	root       *cobra.Command
	viper      *viper.Viper
	configFile string

	settings    *config.Settings
	diagnostics *utils.DiagnosticSystem
	reporter    *cli.DiagnosticReporter
	out, errOut io.Writer
}

func newApp() *app {
	c := &app{viper: config.NewViper()}

	root := &cobra.Command{
		Use:   "cachewire",
		Short: "Compile cache services and install profiling proxies",
		Long: "cachewire loads a services file into a dependency container, wraps every\n" +
			"service tagged cache.provider in a recording proxy and registers it with\n" +
			"the cache data collector.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "Settings file (default ./cachewire.yaml or ./config/cachewire.yaml)")
	flags.StringP("services", "s", "", "Services file to compile")
	flags.String("proxy-dir", "", "Directory receiving generated proxy sources")
	flags.String("log-level", "", "Output level: silent, error, warn, info, verbose or debug")
	flags.String("listen", "", "Address the profiler listens on")

	for key, flag := range map[string]string{
		config.KeyServicesFile: "services",
		config.KeyProxyDir:     "proxy-dir",
		config.KeyLogLevel:     "log-level",
		config.KeyListen:       "listen",
	} {
		_ = c.viper.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(c.newCompileCmd(), c.newCleanCmd(), c.newServeCmd())
	c.root = root
	return c
}

// Execute runs the command line with ctx.
func (c *app) Execute(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// SetArgs replaces os.Args[1:].
func (c *app) SetArgs(args []string) {
	c.root.SetArgs(args)
}

// SetOutput redirects command and diagnostic output.
func (c *app) SetOutput(out, errOut io.Writer) {
	c.root.SetOut(out)
	c.root.SetErr(errOut)
	c.out, c.errOut = out, errOut
}

func (c *app) setup(_ *cobra.Command, _ []string) error {
	settings, err := config.LoadSettings(c.viper, c.configFile)
	if err != nil {
		return err
	}
	level, err := utils.ParseDiagnosticLevel(settings.LogLevel)
	if err != nil {
		return err
	}

	c.settings = settings
	c.diagnostics = utils.NewDiagnosticSystem(level)
	errOut := io.Writer(os.Stderr)
	if c.out != nil {
		c.diagnostics.SetOutput(c.out, c.errOut)
		errOut = c.errOut
	}
	if level == utils.DiagnosticSilent {
		errOut = io.Discard
	}
	c.reporter = cli.NewDiagnosticReporter(errOut, level >= utils.DiagnosticVerbose).
		WithColors(c.out == nil && !color.NoColor)
	return nil
}
