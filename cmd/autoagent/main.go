// Package main provides the AutoAgent CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Barry1701/AutoAgent/internal/cache"
	"github.com/Barry1701/AutoAgent/internal/cameras"
	"github.com/Barry1701/AutoAgent/internal/config"
	"github.com/Barry1701/AutoAgent/internal/doors"
	"github.com/Barry1701/AutoAgent/internal/observability"
	"github.com/Barry1701/AutoAgent/internal/operations"
	"github.com/Barry1701/AutoAgent/internal/source"
	"github.com/Barry1701/AutoAgent/internal/staff"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Configuration and logger. The logger is replaced once the
	// configuration is loaded.
	cfg    *config.Config
	logger = observability.DefaultLogger()
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "autoagent",
	Short: "Natural-language lookup agents for staff, cameras, and doors",
	Long: `AutoAgent answers short factual questions against operational
spreadsheets and CSV exports.

Agents:
- staff_directory_agent: staff records by name (PSA licence, contact details)
- camera_agent:          CCTV cameras by number, name, or site
- doors_agent:           access-controlled doors by id, description, or location
- operations_agent:      routes free text to the right agent automatically`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      cfg.Observability.LogFormat,
			ServiceName: "autoagent",
		})

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(newAgentCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAgentCmd creates the agent subcommand.
func newAgentCmd() *cobra.Command {
	var (
		model     string
		agentFunc string
		query     string
	)

	cmd := &cobra.Command{
		Use:   "agent [key=value ...]",
		Short: "Run one agent against a query",
		Long: `Agent runs a single query through the selected agent function.

Trailing key=value arguments are passed through as options; refresh=true
drops the agent's cached table before answering so the next load rereads
the source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			opts, err := parseOptions(args)
			if err != nil {
				return err
			}

			requestID := uuid.NewString()
			log := logger.WithRequestID(requestID)
			if len(opts) > 0 {
				log.Debug().Msgf("options: %v", opts)
			}
			log.Info().
				Str("agent_func", agentFunc).
				Str("model", model).
				Str("query", query).
				Msg("Running agent")

			client, err := newCacheClient(cfg)
			if err != nil {
				return fmt.Errorf("create cache client: %w", err)
			}
			defer client.Close()

			agent, err := buildAgent(agentFunc, cfg, client, log)
			if err != nil {
				return err
			}

			if truthy(opts["refresh"]) {
				if err := agent.Invalidate(ctx); err != nil {
					log.Warn().Err(err).Msg("Cache invalidation failed")
				}
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
				spinner.WithWriter(os.Stderr))
			sp.Suffix = " looking that up..."
			sp.Start()
			start := time.Now()
			answer, matched, err := agent.Answer(ctx, query)
			sp.Stop()
			if err != nil {
				return fmt.Errorf("%s: %w", agent.Name(), err)
			}
			log.Info().
				Bool("matched", matched).
				Dur("elapsed", time.Since(start)).
				Msg("Agent answered")

			color.New(color.FgCyan, color.Bold).Printf("[%s]\n", agent.Name())
			fmt.Println(answer)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model name to record with the request")
	cmd.Flags().StringVar(&agentFunc, "agent_func", "",
		"agent to run (staff_directory_agent, camera_agent, doors_agent, operations_agent)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "question to answer (required)")

	_ = cmd.MarkFlagRequired("agent_func")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

// newRefreshCmd creates the refresh subcommand.
func newRefreshCmd() *cobra.Command {
	var agentFunc string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Drop cached tables so the next query reloads the sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client, err := newCacheClient(cfg)
			if err != nil {
				return fmt.Errorf("create cache client: %w", err)
			}
			defer client.Close()

			agent, err := buildAgent(agentFunc, cfg, client, logger)
			if err != nil {
				return err
			}

			if err := agent.Invalidate(ctx); err != nil {
				return fmt.Errorf("invalidate %s: %w", agent.Name(), err)
			}

			fmt.Printf("✓ Cache cleared for %s\n", agent.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&agentFunc, "agent_func", "operations_agent",
		"agent whose cache to clear (operations_agent clears all)")

	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("autoagent v0.1.0")
		},
	}
}

// buildAgent constructs the requested agent function over a shared cache
// client. The sheets client is lazy so CSV-only agents never need Google
// credentials.
func buildAgent(agentFunc string, cfg *config.Config, client cache.Client, log *observability.Logger) (operations.Agent, error) {
	reader := source.NewLazySheets(cfg.CredentialsFile)
	ttl := cfg.Cache.TTL

	staffAgent := staff.NewDirectory(cfg.Staff.CSVPath, client, ttl, log)
	cameraAgent := cameras.NewEngine(cfg.Cameras, reader, client, ttl, log)
	doorsAgent := doors.NewEngine(cfg.Doors, reader, client, ttl, log)

	switch agentFunc {
	case "staff_directory_agent":
		return staffAgent, nil
	case "camera_agent":
		return cameraAgent, nil
	case "doors_agent":
		return doorsAgent, nil
	case "operations_agent":
		return operations.NewRouter(staffAgent, cameraAgent, doorsAgent, log), nil
	default:
		return nil, fmt.Errorf("unknown agent_func %q (want staff_directory_agent, camera_agent, doors_agent, or operations_agent)", agentFunc)
	}
}

// newCacheClient picks the cache backend from the configuration.
func newCacheClient(cfg *config.Config) (cache.Client, error) {
	switch cfg.Cache.Driver {
	case "", "memory":
		return cache.NewMemoryClient(), nil
	case "redis":
		return cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
}

// parseOptions turns trailing key=value arguments into a map.
func parseOptions(args []string) (map[string]string, error) {
	opts := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q (want key=value)", arg)
		}
		opts[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return opts, nil
}

// truthy interprets an option value the way shell users type it.
func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
