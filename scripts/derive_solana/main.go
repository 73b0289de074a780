// derive_solana derives the Solana address (m/44'/501'/0'/0') from a BIP39 mnemonic for testing.
//
// Usage:
//
//	go run ./scripts/derive_solana "your seed phrase here"
//
// Or with stdin:
//
//	echo "your seed phrase" | go run ./scripts/derive_solana
//
// The printed address matches what Phantom and Solflare show for the first
// account of the same phrase without a passphrase.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/complex-gh/vanify"
)

func main() {
	var mnemonic string

	if len(os.Args) > 1 {
		mnemonic = strings.Join(os.Args[1:], " ")
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			mnemonic = strings.TrimSpace(scanner.Text())
		}
	}

	if mnemonic == "" {
		fmt.Fprintln(os.Stderr, "Usage: derive_solana \"seed phrase\"")
		fmt.Fprintln(os.Stderr, "   or: echo \"seed phrase\" | derive_solana")
		os.Exit(1)
	}

	addr, err := vanify.DeriveSolanaAddress(mnemonic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(addr)
}
