package core

import "fmt"

// FormatSignMessage builds the challenge text a wallet must sign. It embeds
// the server name so a signature collected here cannot be replayed against
// a different server, and it is human-readable so wallets can display it.
func FormatSignMessage(serverName, nonce string) string {
	return fmt.Sprintf(
		"Sign in to %s\n\nNonce: %s\n\nThis signature will not trigger a blockchain transaction or cost any fees.",
		serverName, nonce,
	)
}
