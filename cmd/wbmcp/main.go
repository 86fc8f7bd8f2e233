package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/callbacks"
	"github.com/effective-security/worldbank-mcp/config"
	"github.com/effective-security/worldbank-mcp/employment"
	"github.com/effective-security/worldbank-mcp/encoding"
	"github.com/effective-security/worldbank-mcp/server"
	"github.com/effective-security/worldbank-mcp/tools"
	"github.com/effective-security/worldbank-mcp/utils"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/worldbank-mcp", "wbmcp")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var logLevels = map[string]xlog.LogLevel{
	"TRACE":    xlog.TRACE,
	"DEBUG":    xlog.DEBUG,
	"INFO":     xlog.INFO,
	"NOTICE":   xlog.NOTICE,
	"WARNING":  xlog.WARNING,
	"ERROR":    xlog.ERROR,
	"CRITICAL": xlog.CRITICAL,
}

// app holds the state shared by the commands
type app struct {
	out    io.Writer
	errOut io.Writer

	configFile string
	logLevel   string

	cfg      *config.Config
	registry *tools.Registry
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "wbmcp",
		Short: "World Bank employment tools for MCP hosts",
		Long: `wbmcp serves World Bank employment indicators as MCP tools:
  get_employment_by_sector, get_employment_ratio, get_unemployment_rate.

Run "wbmcp stdio" from an MCP host, or "wbmcp http" to listen on HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to the config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: TRACE, DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL")

	root.AddCommand(
		a.stdioCmd(),
		a.httpCmd(),
		a.callCmd(),
		a.toolsCmd(),
		a.templateCmd(),
	)
	return root
}

// init loads the config, sets up logging and the tools registry
func (a *app) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToUpper(a.logLevel)
	}
	level, ok := logLevels[cfg.LogLevel]
	if !ok {
		return errors.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// stdout is reserved for MCP framing and tool output
	xlog.SetFormatter(xlog.NewStringFormatter(a.errOut))
	xlog.SetGlobalLogLevel(level)

	client, err := cfg.WorldBank.Client()
	if err != nil {
		return err
	}
	registry, err := employment.NewRegistry(client)
	if err != nil {
		return err
	}
	registry.WithCallback(callbacks.NewPackageLogger(logger))

	a.cfg = cfg
	a.registry = registry
	return nil
}

func (a *app) stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.ServeStdio(cmd.Context(), a.registry, cmd.InOrStdin(), a.out)
		},
	}
}

func (a *app) httpCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve MCP over HTTP, with a /ping health check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			return server.Run(cmd.Context(), a.cfg, a.registry)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr from the config")
	return cmd
}

func (a *app) callCmd() *cobra.Command {
	var (
		country string
		year    int
		input   string
		format  string
		verbose bool
		stats   bool
	)
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call a tool once and print the result",
		Example: `  wbmcp call get_unemployment_rate --country US --year 2020
  wbmcp call get_employment_by_sector --country DEU --year 2019 -o yaml
  wbmcp call get_employment_ratio --input request.yaml --year 2021`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var req employment.Request
			if input != "" {
				if err := readRequest(input, &req); err != nil {
					return err
				}
			} else {
				for _, name := range []string{"country", "year"} {
					if !cmd.Flags().Changed(name) {
						return errors.Errorf("required flag(s) %q not set", name)
					}
				}
			}
			if cmd.Flags().Changed("country") {
				req.Country = country
			}
			if cmd.Flags().Changed("year") {
				req.Year = year
			}

			// fail on the output format before calling upstream
			if _, err := encoding.New(format); err != nil {
				return err
			}

			var sp *callbacks.Scratchpad
			cb := callbacks.NewFanout(callbacks.NewPackageLogger(logger))
			if verbose {
				cb.Add(callbacks.NewPrinter(a.errOut, callbacks.ModeVerbose))
			}
			if stats {
				sp = callbacks.NewScratchpad(callbacks.ModeDefault)
				cb.Add(sp)
				ctx = callbacks.WithRunID(ctx, "call-"+strconv.FormatInt(time.Now().UnixNano(), 36))
				sp.StartRun(ctx)
			}
			a.registry.WithCallback(cb)

			out, err := a.registry.Call(ctx, args[0], utils.ToJSON(&req))
			if sp != nil {
				_, transcript := sp.EndRun(ctx)
				_, _ = a.errOut.Write(transcript)
			}
			if err != nil {
				return err
			}

			res, err := encoding.Transcode(format, []byte(out))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, strings.TrimSpace(string(res)))
			return errors.WithStack(err)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "ISO-2 or ISO-3 country code")
	cmd.Flags().IntVar(&year, "year", 0, "year, between 1991 and 2100")
	cmd.Flags().StringVarP(&input, "input", "i", "", "request file in JSON, YAML or TOML, flags override its values")
	cmd.Flags().StringVarP(&format, "output", "o", encoding.FormatJSON, "output format: json, yaml, toml")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print tool events to stderr")
	cmd.Flags().BoolVar(&stats, "stats", false, "print the call transcript and stats to stderr")
	return cmd
}

// readRequest decodes the request file by its extension
func readRequest(file string, req *employment.Request) error {
	format, err := encoding.FormatFromPath(file)
	if err != nil {
		return err
	}
	enc, err := encoding.New(format)
	if err != nil {
		return err
	}
	bs, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "failed to read request")
	}
	if err = enc.Unmarshal(bs, req); err != nil {
		return errors.Wrapf(err, "failed to decode request: %s", file)
	}
	return nil
}

func (a *app) templateCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print an example request file for call --input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := encoding.Example(format, employment.Request{})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, strings.TrimSpace(string(res)))
			return errors.WithStack(err)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", encoding.FormatYAML, "output format: json, yaml, toml")
	return cmd
}

func (a *app) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools and their descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(a.out, a.registry.Descriptions())
			return errors.WithStack(err)
		},
	}
}
