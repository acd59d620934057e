package cli

import (
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "query the committee rpc",
}

func init() {
	queryCmd.AddCommand(committeesCmd)
	queryCmd.AddCommand(committeeCmd)
	queryCmd.AddCommand(requestsCmd)
	queryCmd.AddCommand(requestCmd)
	queryCmd.AddCommand(approversCmd)
	queryCmd.AddCommand(approverCmd)
	queryCmd.AddCommand(approvalCmd)
	queryCmd.AddCommand(balanceCmd)
	queryCmd.AddCommand(accountCmd)
	queryCmd.AddCommand(accountsCmd)
	queryCmd.AddCommand(eventsCmd)
	queryCmd.AddCommand(latestEventsCmd)
	queryCmd.AddCommand(resourceUsageCmd)
}

var (
	committeesCmd = &cobra.Command{
		Use:   "committees",
		Short: "query every committee deployed by the factory",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Committees())
		},
	}

	committeeCmd = &cobra.Command{
		Use:   "committee <committee>",
		Short: "query the summary of a committee",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Committee(argGetAddr(args[0])))
		},
	}

	requestsCmd = &cobra.Command{
		Use:   "requests <committee>",
		Short: "query every spending request of a committee",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Requests(argGetAddr(args[0])))
		},
	}

	requestCmd = &cobra.Command{
		Use:   "request <committee> <index>",
		Short: "query a spending request by index",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Request(argGetAddr(args[0]), argToAmount(args[1])))
		},
	}

	approversCmd = &cobra.Command{
		Use:   "approvers <committee>",
		Short: "query the approvers of a committee",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Approvers(argGetAddr(args[0])))
		},
	}

	approverCmd = &cobra.Command{
		Use:   "approver <committee> <address>",
		Short: "query if an address is an approver of a committee",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.IsApprover(argGetAddr(args[0]), argGetAddr(args[1])))
		},
	}

	approvalCmd = &cobra.Command{
		Use:   "approval <committee> <index> <address>",
		Short: "query if an address approved a spending request",
		Args:  cobra.MinimumNArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.HasApproved(argGetAddr(args[0]), argToAmount(args[1]), argGetAddr(args[2])))
		},
	}

	balanceCmd = &cobra.Command{
		Use:   "balance <committee>",
		Short: "query the undisbursed balance of a committee",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c, err := client.Committee(argGetAddr(args[0]))
			if err != nil {
				writeToConsole(nil, err)
			}
			writeToConsole(c.Balance, nil)
		},
	}

	accountCmd = &cobra.Command{
		Use:   "account <address>",
		Short: "query the value disbursed to an address",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Account(argGetAddr(args[0])))
		},
	}

	accountsCmd = &cobra.Command{
		Use:   "accounts",
		Short: "query every account that received a disbursement",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Accounts())
		},
	}

	eventsCmd = &cobra.Command{
		Use:   "events <committee>",
		Short: "query the event log of a committee",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Events(argGetAddr(args[0])))
		},
	}

	latestEventsCmd = &cobra.Command{
		Use:   "latest-events <committee> <limit>",
		Short: "query the most recent events of a committee, newest first; a limit of 0 returns all",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.LatestEvents(argGetAddr(args[0]), argToAmount(args[1])))
		},
	}

	resourceUsageCmd = &cobra.Command{
		Use:   "resource-usage",
		Short: "query the node's resource usage from the admin rpc",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.ResourceUsage())
		},
	}
)
