package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcond/pkg/orchestrator"
	"github.com/goliatone/go-formcond/pkg/renderers/tui"
)

func (c *cli) fillCmd() *cobra.Command {
	var outputFormat string
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form interactively in the terminal",
		Long: `Asks for every visible field. After each answer the schema is resolved
again, so fields revealed by the answer are asked next and answers to fields
that disappeared are dropped. Prints the collected data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := tui.ParseOutputFormat(outputFormat)
			if !ok {
				return fmt.Errorf("unknown --output-format %q (use json, form or pretty)", outputFormat)
			}
			renderer, err := tui.New(
				tui.WithOutputFormat(format),
				tui.WithInfoWriter(cmd.ErrOrStderr()),
			)
			if err != nil {
				return err
			}

			values, err := c.loadData()
			if err != nil {
				return err
			}
			req, err := c.request(values)
			if err != nil {
				return err
			}
			req.Renderer = renderer.Name()

			payload, err := c.orchestrator(orchestrator.WithRenderers(renderer)).Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if len(payload) > 0 && payload[len(payload)-1] != '\n' {
				payload = append(payload, '\n')
			}
			return c.write(payload)
		},
	}
	c.addFormFlags(cmd)
	cmd.Flags().StringVar(&outputFormat, "output-format", string(tui.OutputFormatJSON), "Collected data format: json, form or pretty")
	return cmd
}
