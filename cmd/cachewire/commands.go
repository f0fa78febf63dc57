package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/cachewire/internal/bundle"
	"github.com/toyz/cachewire/internal/compiler"
	"github.com/toyz/cachewire/internal/config"
	"github.com/toyz/cachewire/internal/container"
	"github.com/toyz/cachewire/internal/generator"
	"github.com/toyz/cachewire/internal/profiler"
	"github.com/toyz/cachewire/pkg/collector"
)

func (c *app) newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "Compile the services file and generate cache pool proxies",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			d := c.diagnostics
			d.Header("compile")

			ctr, proxies, err := c.compile()
			if err != nil {
				c.reporter.ReportError("Compilation failed", err)
				return err
			}

			generated := proxies.Proxies()
			d.Summary("Compilation complete", map[string]interface{}{
				"Services":       len(ctr.IDs()),
				"Cache pools":    len(collectedIDs(ctr)),
				"Proxy classes":  len(generated),
				"Proxy package":  proxies.Package(),
				"Proxy location": proxies.Dir(),
			})

			if len(generated) > 0 {
				d.Subsection("Proxies")
				for _, p := range generated {
					d.List("%s -> %s", p.Target, p.Class)
				}
			}
			return nil
		},
	}
}

func (c *app) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated proxy sources",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			d := c.diagnostics
			proxies := generator.NewProxyFactory(c.settings.ProxyDir, container.NewClassRegistry())

			removed, err := proxies.Clean()
			if err != nil {
				c.reporter.ReportError("Clean failed", err)
				return err
			}
			for _, path := range removed {
				d.Verbose("removed %s", path)
			}
			d.Success("Removed %d generated proxy file(s) from %s", len(removed), proxies.Dir())
			return nil
		},
	}
}

func (c *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Compile the services file and serve the cache profiler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := c.diagnostics

			ctr, _, err := c.compile()
			if err != nil {
				c.reporter.ReportError("Compilation failed", err)
				return err
			}

			dc, err := container.Resolve[*collector.DataCollector](ctr, compiler.DefaultCollectorID)
			if err != nil {
				c.reporter.ReportError("Cannot build the data collector", err)
				return err
			}

			p, err := profiler.New(dc, profiler.WithLogger(d))
			if err != nil {
				return err
			}

			d.Info("Profiling %d cache pool(s) on %s%s", len(dc.Instances()), c.settings.Listen, profiler.ProfilePath)
			if err := p.Serve(cmd.Context(), c.settings.Listen); err != nil {
				c.reporter.ReportError("Profiler stopped", err)
				return err
			}
			d.Info("Profiler stopped")
			return nil
		},
	}
}

// compile loads the services file into a fresh builder carrying the built-in
// cache services and compiles it.
func (c *app) compile() (*container.Container, *generator.ProxyFactory, error) {
	d := c.diagnostics
	b := container.NewBuilder(nil)

	proxies, err := bundle.Configure(b, bundle.Options{
		ProxyDir: c.settings.ProxyDir,
		Logger:   d,
	})
	if err != nil {
		return nil, nil, err
	}

	d.Verbose("loading services from %s", c.settings.ServicesFile)
	if _, err := config.NewLoader().LoadFile(c.settings.ServicesFile, b); err != nil {
		return nil, nil, err
	}

	ctr, err := b.Compile()
	if err != nil {
		return nil, nil, err
	}
	return ctr, proxies, nil
}

// collectedIDs returns the services the collector receives.
func collectedIDs(ctr *container.Container) []string {
	def, ok := ctr.Definition(compiler.DefaultCollectorID)
	if !ok {
		return nil
	}
	var ids []string
	for _, call := range def.MethodCalls() {
		if call.Method == compiler.AddInstanceMethod && len(call.Arguments) > 0 {
			ids = append(ids, fmt.Sprint(call.Arguments[0]))
		}
	}
	return ids
}
