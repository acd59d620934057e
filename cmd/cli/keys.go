package cli

import (
	"fmt"
	"os"

	"github.com/canopy-network/committee/lib/crypto"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "manage the local encrypted keystore",
}

var (
	pwd  string
	nick string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&pwd, "password", "", "input a private key password (not recommended)")
	keysCmd.PersistentFlags().StringVar(&nick, "nickname", "", "input nickname for key")
	keysCmd.AddCommand(keysNewCmd)
	keysCmd.AddCommand(keysImportRawCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysAddressCmd)
	keysCmd.AddCommand(keysDeleteCmd)
}

var (
	keysNewCmd = &cobra.Command{
		Use:   "new --nickname=alice",
		Short: "generate a new key and add it to the keystore",
		Run: func(cmd *cobra.Command, args []string) {
			pk, err := crypto.NewPrivateKey()
			if err != nil {
				l.Fatal(err.Error())
			}
			writeToConsole(importKey(pk.Bytes()))
		},
	}

	keysImportRawCmd = &cobra.Command{
		Use:   "import-raw <private-key> --nickname=alice",
		Short: "add a raw hex private key to the keystore",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(importKey(common.FromHex(args[0])))
		},
	}

	keysListCmd = &cobra.Command{
		Use:   "list",
		Short: "list the addresses in the keystore",
		Run: func(cmd *cobra.Command, args []string) {
			ks := loadKeystore()
			list := make([]keyListItem, 0, len(ks.ByAddress))
			for _, address := range ks.Addresses() {
				list = append(list, keyListItem{Address: address, Nickname: ks.ByAddress[address].Nickname})
			}
			writeToConsole(list, nil)
		},
	}

	keysAddressCmd = &cobra.Command{
		Use:   "address <address or nickname>",
		Short: "decrypt a key and print its address and public key",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			pk, err := getKey(loadKeystore(), args[0], getPassword())
			writeToConsole(newKeyInfo(pk), err)
		},
	}

	keysDeleteCmd = &cobra.Command{
		Use:   "delete <address or nickname>",
		Short: "remove a key from the keystore",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ks := loadKeystore()
			address, err := resolveAddress(ks, args[0])
			if err != nil {
				l.Fatal(err.Error())
			}
			ks.DeleteKey(address.Bytes())
			if err = ks.SaveToFile(config.DataDirPath); err != nil {
				l.Fatal(err.Error())
			}
			writeToConsole(address.String(), nil)
		},
	}
)

// keyListItem is one keystore entry as printed by 'keys list'
type keyListItem struct {
	Address  string `json:"address"`
	Nickname string `json:"nickname,omitempty"`
}

// keyInfo is the public identity of a decrypted key
type keyInfo struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
}

func newKeyInfo(pk crypto.PrivateKeyI) *keyInfo {
	if pk == nil {
		return nil
	}
	return &keyInfo{Address: pk.PublicKey().Address().String(), PublicKey: pk.PublicKey().String()}
}

// importKey() encrypts the raw key into the keystore file and returns the new address
func importKey(privateKey []byte) (string, error) {
	ks := loadKeystore()
	address, err := ks.ImportRaw(privateKey, getPassword(), nick)
	if err != nil {
		return "", err
	}
	if err = ks.SaveToFile(config.DataDirPath); err != nil {
		return "", err
	}
	return address, nil
}

func loadKeystore() *crypto.Keystore {
	ks, err := crypto.NewKeystoreFromFile(config.DataDirPath)
	if err != nil {
		l.Fatal(err.Error())
	}
	return ks
}

// resolveAddress() interprets the argument as a hex address, falling back to a keystore nickname
func resolveAddress(ks *crypto.Keystore, arg string) (crypto.AddressI, error) {
	if address, err := argToAddress(arg); err == nil {
		return address, nil
	}
	address, ok := ks.ByNickname[arg]
	if !ok {
		return nil, fmt.Errorf("%s: %w", arg, crypto.ErrKeyNotFound)
	}
	return crypto.NewAddressFromString(address)
}

// getKey() decrypts the key named by address or nickname
func getKey(ks *crypto.Keystore, arg, password string) (crypto.PrivateKeyI, error) {
	address, err := resolveAddress(ks, arg)
	if err != nil {
		return nil, err
	}
	return ks.GetKey(address.Bytes(), password)
}

func getPassword() string {
	if pwd == "" {
		fmt.Println("Enter password:")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			l.Fatal(err.Error())
		}
		if len(password) == 0 {
			fmt.Println("Password cannot be empty")
			return getPassword()
		}
		return string(password)
	}
	return pwd
}
