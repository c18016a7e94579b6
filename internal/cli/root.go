package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"crystal/internal/config"
	"crystal/internal/httpapi"
	"crystal/internal/module"
	"crystal/pkg/crystal"
)

// buildRootCmd constructs the command tree. Flags can also be set through
// CRYSTAL_* environment variables, e.g. CRYSTAL_LOG_LEVEL.
func buildRootCmd(cfg *Config, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CRYSTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "crystal",
		Short:         "Bootstrap an application directory: config, hooks and resources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("env", "", "Environment name selecting the config override (CRYSTAL_ENV)")
	pf.String("log-level", "info", "Log level: debug|info|warn|error (CRYSTAL_LOG_LEVEL)")
	pf.String("log-format", "json", "Log format: json|console (CRYSTAL_LOG_FORMAT)")
	pf.Duration("timeout", 30*time.Second, "Maximum time to wait for initialization (CRYSTAL_TIMEOUT)")
	_ = v.BindPFlags(pf)

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = v.BindPFlags(cmd.Flags())
		cfg.Env = v.GetString("env")
		cfg.LogLevel = v.GetString("log-level")
		cfg.LogFormat = v.GetString("log-format")
		cfg.Timeout = v.GetDuration("timeout")
		cfg.Addr = v.GetString("addr")
		cfg.CORSOrigins = splitCSV(v.GetString("cors-origins"))
		cfg.ReadyWait = v.GetDuration("ready-wait")
		return nil
	}

	root.AddCommand(checkCmd(cfg, stdout, stderr), serveCmd(cfg, stderr), pathsCmd(stdout), configCmd(cfg, stdout))
	return root
}

// closeGrace bounds graceful shutdown, including waiting for an in-flight
// initialization so late resources are released too.
var closeGrace = 5 * time.Second

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkCmd(cfg *Config, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:     "check [root]",
		Short:   "Bootstrap once, print the status and release resources",
		Example: "  crystal check ./app --env production",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			app, err := crystal.Bootstrap(ctx, rootArg(args), crystal.WithEnv(cfg.Env), crystal.WithLogger(log))
			if werr := writeJSON(stdout, app.Status()); werr != nil {
				return werr
			}
			closeCtx, cancelClose := context.WithTimeout(context.Background(), closeGrace)
			defer cancelClose()
			if cerr := app.Close(closeCtx); cerr != nil {
				log.Warn().Err(cerr).Msg("close resources")
			}
			if err != nil {
				return exitError{code: 1, err: fmt.Errorf("bootstrap failed: %w", err)}
			}
			return nil
		},
	}
}

func serveCmd(cfg *Config, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve [root]",
		Short:   "Bootstrap and expose /healthz, /readyz, /status and /metrics until interrupted",
		Example: "  CRYSTAL_ADDR=:9090 crystal serve ./app",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, rootArg(args), log)
		},
	}
	cmd.Flags().String("addr", ":8080", "HTTP listen address (CRYSTAL_ADDR)")
	cmd.Flags().String("cors-origins", "", "Comma-separated allowed CORS origins; empty disables CORS (CRYSTAL_CORS_ORIGINS)")
	cmd.Flags().Duration("ready-wait", 30*time.Second, "Cap for /readyz?wait= (CRYSTAL_READY_WAIT)")
	return cmd
}

func pathsCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths [root]",
		Short: "Print the directory layout derived from root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := crystal.DerivePaths(rootArg(args))
			if err != nil {
				return err
			}
			return writeJSON(stdout, p)
		},
	}
}

func configCmd(cfg *Config, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config [root]",
		Short: "Print the merged configuration without running hooks or connecting resources",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := crystal.DerivePaths(rootArg(args))
			if err != nil {
				return err
			}
			loader := config.NewLoader(module.NewResolver(config.Files{}))
			m, err := loader.Load(cmd.Context(), p.Config, cfg.Env)
			if err != nil {
				return err
			}
			return writeJSON(stdout, m)
		},
	}
}

func serve(ctx context.Context, cfg *Config, root string, log zerolog.Logger) error {
	httpapi.SetLogger(log)
	httpapi.SetShutdownContext(ctx)
	httpapi.SetReadyWaitMax(cfg.ReadyWait)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins, []string{http.MethodGet, http.MethodOptions}, []string{"Accept", "Content-Type"})
	}

	app := crystal.New(root, crystal.WithEnv(cfg.Env), crystal.WithLogger(log), crystal.WithContext(ctx))
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(app), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("root", app.Paths().Root).Msg("crystal listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), closeGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := app.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("close resources")
	}
	if serveErr != nil {
		return fmt.Errorf("server error: %w", serveErr)
	}
	return nil
}
