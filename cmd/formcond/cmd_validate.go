package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formcond"
	"github.com/goliatone/go-formcond/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-formcond/pkg/openapi"
	"github.com/goliatone/go-formcond/pkg/validation"
)

var errInvalidSchema = errors.New("schema is invalid")

func (c *cli) validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a document for unsupported keywords and dangling conditionals",
		Long: `Normalizes the document and lints its conditionals. Issues are printed
as JSON. Errors exit non-zero; warnings (if without then/else, then/else
without if, if constraints on undeclared keys) do not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := c.parseSource()
			if err != nil {
				return err
			}
			loader := c.loader()
			doc, err := loader.Load(cmd.Context(), src)
			if err != nil {
				return err
			}

			options := validation.Options{Loader: loader}
			openapi := pkgopenapi.NewAdapter(loader, formcond.NewParser(), jsonschema.ResolveOptions{})
			switch c.format {
			case pkgopenapi.DefaultAdapterName:
				options.Adapter = openapi
			case "", jsonschema.DefaultAdapterName:
				if c.format == "" && openapi.Detect(src, doc.Raw()) {
					options.Adapter = openapi
				}
			default:
				return fmt.Errorf("unknown --format %q", c.format)
			}

			result := validation.ValidateSchema(cmd.Context(), src, doc.Raw(), options)
			c.logger.Debug("schema validated",
				zap.String("source", src.Location()),
				zap.Bool("valid", result.Valid),
				zap.Int("issues", len(result.Issues)))

			payload, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			if err := c.write(append(payload, '\n')); err != nil {
				return err
			}
			if !result.Valid {
				return errInvalidSchema
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&c.source, "source", "s", "", "Schema document path or URL")
	cmd.Flags().StringVar(&c.format, "format", "", "Schema format: jsonschema or openapi (default: detect)")
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "Write output to file instead of stdout")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
