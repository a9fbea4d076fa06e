package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"webgif/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var launch bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the browser and directories webgif needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rep := newReport(cmd.OutOrStdout())

			rep.section("Configuration")
			if ctx.configExists {
				rep.check("Config file", checkPass, ctx.configPath)
			} else {
				rep.check("Config file", checkWarn, "not found, using defaults")
			}
			rep.blank()

			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Launch: launch})
			rep.section("Checks")
			for _, res := range results {
				state := checkPass
				if !res.Passed {
					state = checkFail
				}
				rep.check(res.Name, state, res.Detail)
			}
			if !launch {
				rep.check("Browser launch", checkSkip, "use --launch to start the browser once")
			}

			if failed := preflight.Failed(results); failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&launch, "launch", false, "Start the browser once to verify it runs")
	return cmd
}
