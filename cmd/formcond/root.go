package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formcond"
	"github.com/goliatone/go-formcond/pkg/jsonschema"
	"github.com/goliatone/go-formcond/pkg/orchestrator"
	"github.com/goliatone/go-formcond/pkg/render"
	"github.com/goliatone/go-formcond/pkg/schema"
)

// cli carries the state shared by every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	logger *zap.Logger

	verbose     bool
	httpTimeout time.Duration

	source   string
	dataPath string
	sets     []string
	formID   string
	format   string
	output   string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "formcond",
		Short: "Render forms from conditional JSON Schema and OpenAPI documents",
		Long: `formcond loads a JSON Schema (JSON or YAML) or an OpenAPI request body,
resolves its if/then/else conditionals against the supplied data and renders
the effective schema as an HTML form or an interactive terminal session.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging of conditional decisions")
	root.PersistentFlags().DurationVar(&c.httpTimeout, "http-timeout", 10*time.Second, "Timeout for http(s) sources")

	root.AddCommand(
		c.renderCmd(),
		c.resolveCmd(),
		c.fillCmd(),
		c.validateCmd(),
	)
	return root
}

// addFormFlags registers the flags every form command shares.
func (c *cli) addFormFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.source, "source", "s", "", "Schema document path or URL")
	cmd.Flags().StringVarP(&c.dataPath, "data", "d", "", "Form data file (JSON or YAML)")
	cmd.Flags().StringArrayVar(&c.sets, "set", nil, "Set a form value, e.g. --set address.country=US (repeatable)")
	cmd.Flags().StringVarP(&c.formID, "form", "f", "", "Form id (required when the document declares several)")
	cmd.Flags().StringVar(&c.format, "format", "", "Schema format: jsonschema or openapi (default: detect)")
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "Write output to file instead of stdout")
	_ = cmd.MarkFlagRequired("source")
}

func (c *cli) parseSource() (schema.Source, error) {
	return schema.ParseSource(c.source)
}

func (c *cli) loader() jsonschema.Loader {
	return formcond.NewLoader(jsonschema.WithHTTPFallback(c.httpTimeout))
}

func (c *cli) orchestrator(extra ...orchestrator.Option) *orchestrator.Orchestrator {
	options := []orchestrator.Option{
		orchestrator.WithLogger(c.logger),
		orchestrator.WithLoader(c.loader()),
	}
	return formcond.NewOrchestrator(append(options, extra...)...)
}

func (c *cli) request(values map[string]any) (orchestrator.Request, error) {
	src, err := c.parseSource()
	if err != nil {
		return orchestrator.Request{}, err
	}
	return orchestrator.Request{
		Source:        src,
		Format:        c.format,
		FormID:        c.formID,
		RenderOptions: render.RenderOptions{Values: values},
	}, nil
}

// write sends payload to --output or stdout.
func (c *cli) write(payload []byte) error {
	if c.output == "" {
		_, err := c.out.Write(payload)
		return err
	}
	if err := os.WriteFile(c.output, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	c.logger.Info("output written", zap.String("path", c.output), zap.Int("bytes", len(payload)))
	return nil
}
