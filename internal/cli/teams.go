package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/consultcrew/consultcrew/internal/config"
	"github.com/consultcrew/consultcrew/internal/teams"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Inspect and toggle team and agent enablement",
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all teams, their agents and enablement",
	Run: func(cmd *cobra.Command, args []string) {
		registry, svc := mustConfigService()
		printHeader("Teams")
		for _, team := range registry.All() {
			mark := color.GreenString("enabled")
			if !svc.TeamEnabled(team.ID) {
				mark = color.RedString("disabled")
			}
			fmt.Printf("%d. %s (%s) [%s]\n", team.OrderRank, team.DisplayName, team.ID, mark)
			for _, a := range team.Agents {
				agentMark := "+"
				if !svc.AgentEnabled(team.ID, a.Name) {
					agentMark = "-"
				}
				fmt.Printf("   %s %s (%s)\n", agentMark, a.Role, a.Name)
			}
		}
	},
}

var teamsEnableCmd = &cobra.Command{
	Use:   "enable <team> [agent]",
	Short: "Enable a team, or a single agent of a team",
	Args:  cobra.RangeArgs(1, 2),
	Run:   func(cmd *cobra.Command, args []string) { toggleEnablement(args, true) },
}

var teamsDisableCmd = &cobra.Command{
	Use:   "disable <team> [agent]",
	Short: "Disable a team, or a single agent of a team",
	Args:  cobra.RangeArgs(1, 2),
	Run:   func(cmd *cobra.Command, args []string) { toggleEnablement(args, false) },
}

var teamsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Re-enable every team and agent",
	Run: func(cmd *cobra.Command, args []string) {
		_, svc := mustConfigService()
		if err := svc.ResetToDefaults(); err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		printSuccess("All teams and agents enabled")
	},
}

func toggleEnablement(args []string, enable bool) {
	_, svc := mustConfigService()
	id, err := teams.ParseID(args[0])
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}

	verb := "disabled"
	if enable {
		verb = "enabled"
	}
	if len(args) == 2 {
		if enable {
			err = svc.EnableAgent(id, args[1])
		} else {
			err = svc.DisableAgent(id, args[1])
		}
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		printSuccess("Agent %s/%s %s", id, args[1], verb)
		return
	}

	if enable {
		err = svc.EnableTeam(id)
	} else {
		err = svc.DisableTeam(id)
	}
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}
	printSuccess("Team %s %s", id, verb)
}

func mustConfigService() (*teams.Registry, *config.Service) {
	settings, err := config.LoadSettings()
	if err != nil {
		printError("loading settings: %v", err)
		os.Exit(1)
	}
	registry, err := teams.NewRegistry()
	if err != nil {
		printError("building team registry: %v", err)
		os.Exit(1)
	}
	svc, err := config.NewService(settings.AgentConfigPath, registry)
	if err != nil {
		printError("loading agent configuration: %v", err)
		os.Exit(1)
	}
	return registry, svc
}

func init() {
	teamsCmd.AddCommand(teamsListCmd)
	teamsCmd.AddCommand(teamsEnableCmd)
	teamsCmd.AddCommand(teamsDisableCmd)
	teamsCmd.AddCommand(teamsResetCmd)
}
