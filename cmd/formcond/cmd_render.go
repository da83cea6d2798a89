package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the effective form as HTML",
		Long: `Resolves the form's conditionals against --data and --set values and
prints the vanilla HTML rendering. Only fields of the effective schema are
rendered, prefilled with the supplied values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.loadData()
			if err != nil {
				return err
			}
			req, err := c.request(values)
			if err != nil {
				return err
			}
			html, err := c.orchestrator().Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.write(html)
		},
	}
	c.addFormFlags(cmd)
	return cmd
}
