package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"shop-insights/internal/analytics"
)

type toolCommand struct {
	use     string
	aliases []string
	tool    string
}

var toolCommands = []toolCommand{
	{use: "revenue", tool: analytics.ToolRevenueByCategory},
	{use: "ltv", aliases: []string{"customers"}, tool: analytics.ToolCustomerLTV},
	{use: "returns", tool: analytics.ToolReturnRates},
	{use: "regions", tool: analytics.ToolCompareRegions},
	{use: "compare", aliases: []string{"periods"}, tool: analytics.ToolComparePeriods},
	{use: "overview", tool: analytics.ToolDataOverview},
	{use: "payments", tool: analytics.ToolPaymentMethods},
	{use: "segments", tool: analytics.ToolSegments},
	{use: "trends", tool: analytics.ToolRevenueTrends},
	{use: "capabilities", tool: analytics.ToolCapabilities},
}

// flagName turns a parameter name into its kebab-case flag.
func flagName(param string) string {
	return strings.ReplaceAll(param, "_", "-")
}

// toolCommand builds a subcommand whose flags mirror the tool's parameters.
func (app *App) toolCommand(c toolCommand) *cobra.Command {
	capability, ok := analytics.Lookup(c.tool)
	if !ok {
		panic(fmt.Sprintf("no capability registered for %s", c.tool))
	}

	cmd := &cobra.Command{
		Use:     c.use,
		Aliases: c.aliases,
		Short:   capability.Description,
		Example: examples(c.use, capability),
		Args:    cobra.NoArgs,
		PreRunE: app.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := make(map[string][]string)
			for _, p := range capability.Parameters {
				f := cmd.Flags().Lookup(flagName(p.Name))
				if f == nil || !f.Changed {
					continue
				}
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					values[p.Name] = sv.GetSlice()
				} else {
					values[p.Name] = []string{f.Value.String()}
				}
			}
			return app.run(cmd, c.tool, app.registry.ParamsFromValues(c.tool, values))
		},
	}

	for _, p := range capability.Parameters {
		usage := p.Description
		if len(p.Enum) > 0 {
			usage += " One of: " + strings.Join(p.Enum, ", ")
		}
		switch p.Type {
		case "int":
			def, _ := p.Default.(int)
			cmd.Flags().Int(flagName(p.Name), def, usage)
		case "[]string":
			cmd.Flags().StringSlice(flagName(p.Name), nil, usage)
		default:
			def, _ := p.Default.(string)
			cmd.Flags().String(flagName(p.Name), def, usage)
		}
	}

	return cmd
}

func examples(use string, c analytics.Capability) string {
	var b strings.Builder
	for _, q := range c.ExampleQuestions {
		fmt.Fprintf(&b, "  # %s\n", q)
	}
	fmt.Fprintf(&b, "  shopq %s", use)
	return b.String()
}

func (app *App) toolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tools",
		Short:   "List every tool with its parameters",
		Args:    cobra.NoArgs,
		PreRunE: app.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.print(cmd.OutOrStdout(), app.registry.Tools())
		},
	}
}

func (app *App) callCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "call <tool> [json]",
		Short:   "Invoke a tool by name with a JSON parameter object",
		Example: `  shopq call get_customer_ltv '{"top_n": 5, "segment": "vip"}'
  shopq call compare_time_periods '{"period_label": "qoq"}'`,
		Args:    cobra.RangeArgs(1, 2),
		PreRunE: app.setup,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			names := make([]string, 0, len(analytics.Catalog()))
			for _, c := range analytics.Catalog() {
				names = append(names, c.ToolName)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var params json.RawMessage
			if len(args) == 2 {
				params = json.RawMessage(args[1])
			}
			return app.run(cmd, args[0], params)
		},
	}
}
