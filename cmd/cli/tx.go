package cli

import (
	"strconv"

	"github.com/canopy-network/committee/lib"
	"github.com/canopy-network/committee/lib/crypto"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "sign and submit committee transactions",
}

var from string

func init() {
	txCmd.PersistentFlags().StringVar(&from, "from", "", "address or nickname of the signing key")
	txCmd.AddCommand(txCreateCommitteeCmd)
	txCmd.AddCommand(txContributeCmd)
	txCmd.AddCommand(txCreateRequestCmd)
	txCmd.AddCommand(txApproveCmd)
	txCmd.AddCommand(txFinalizeCmd)
}

var (
	txCreateCommitteeCmd = &cobra.Command{
		Use:     "create-committee <minimum-contribution> --from=alice",
		Short:   "deploy a new committee managed by the signer",
		Example: "create-committee 100 --from=dfd3c8dff19da7682f7fe5fde062c813b55c9eee",
		Args:    cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.TxCreateCommittee(signer(), argToAmount(args[0])))
		},
	}

	txContributeCmd = &cobra.Command{
		Use:     "contribute <committee> <amount> --from=bob",
		Short:   "contribute to a committee and become an approver",
		Example: "contribute eed6c9dff19da7682f7fe5fde062c813b42c7abc 100 --from=bob",
		Args:    cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.TxContribute(signer(), argGetAddr(args[0]), argToAmount(args[1])))
		},
	}

	txCreateRequestCmd = &cobra.Command{
		Use:     "create-request <committee> <description> <value> <recipient> --from=alice",
		Short:   "propose a spending request, manager only",
		Example: "create-request eed6c9dff19da7682f7fe5fde062c813b42c7abc 'buy paint' 50 abc3c8dff19da7682f7fe5fde062c813b55c9abc --from=alice",
		Args:    cobra.MinimumNArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.TxCreateRequest(signer(), argGetAddr(args[0]), args[1], argToAmount(args[2]), argGetAddr(args[3])))
		},
	}

	txApproveCmd = &cobra.Command{
		Use:     "approve <committee> <index> --from=bob",
		Short:   "approve a spending request, approvers only",
		Example: "approve eed6c9dff19da7682f7fe5fde062c813b42c7abc 0 --from=bob",
		Args:    cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.TxApproveRequest(signer(), argGetAddr(args[0]), argToAmount(args[1])))
		},
	}

	txFinalizeCmd = &cobra.Command{
		Use:     "finalize <committee> <index> --from=alice",
		Short:   "disburse a majority approved request, manager only",
		Example: "finalize eed6c9dff19da7682f7fe5fde062c813b42c7abc 0 --from=alice",
		Args:    cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.TxFinalizeRequest(signer(), argGetAddr(args[0]), argToAmount(args[1])))
		},
	}
)

// signer() decrypts the key selected with --from
func signer() crypto.PrivateKeyI {
	if from == "" {
		l.Fatal("a signing key is required, use --from=<address or nickname>")
	}
	pk, err := getKey(loadKeystore(), from, getPassword())
	if err != nil {
		l.Fatal(err.Error())
	}
	return pk
}

func argGetAddr(arg string) crypto.AddressI {
	address, err := argToAddress(arg)
	if err != nil {
		l.Fatal(err.Error())
	}
	return address
}

// argToAddress() parses a 20 byte hex address, with or without the 0x prefix
func argToAddress(arg string) (crypto.AddressI, lib.ErrorI) {
	if !common.IsHexAddress(arg) {
		return nil, lib.ErrInvalidAddress()
	}
	return crypto.NewAddressFromBytes(common.HexToAddress(arg).Bytes()), nil
}

func argToAmount(arg string) uint64 {
	i, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		l.Fatalf("%s is not a valid amount: %s", arg, err.Error())
	}
	return i
}
