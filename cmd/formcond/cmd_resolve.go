package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcond/pkg/conditional"
)

// resolveOutput is the JSON document printed by the resolve command.
type resolveOutput struct {
	Form      string                 `json:"form"`
	Method    string                 `json:"method,omitempty"`
	Endpoint  string                 `json:"endpoint,omitempty"`
	Effective map[string]any         `json:"effective"`
	Decisions []conditional.Decision `json:"decisions"`
	Hidden    []string               `json:"hidden"`
	Data      map[string]any         `json:"data"`
}

func (c *cli) resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the effective schema and conditional decisions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.loadData()
			if err != nil {
				return err
			}
			req, err := c.request(values)
			if err != nil {
				return err
			}
			resolution, err := c.orchestrator().Resolve(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := resolveOutput{
				Form:      resolution.Form.ID,
				Method:    resolution.Form.Method,
				Endpoint:  resolution.Form.Endpoint,
				Effective: resolution.Effective.ToJSONSchema(),
				Decisions: resolution.Decisions,
				Hidden:    resolution.Hidden,
				Data:      resolution.Data,
			}
			if out.Decisions == nil {
				out.Decisions = []conditional.Decision{}
			}
			if out.Hidden == nil {
				out.Hidden = []string{}
			}
			payload, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encode resolution: %w", err)
			}
			return c.write(append(payload, '\n'))
		},
	}
	c.addFormFlags(cmd)
	return cmd
}
