package main

import (
	"os"

	"github.com/tether-cli/tether/pkg/errors"
)

// Exit codes beyond the usual 0/1
const (
	exitBusy    = 2
	exitSecrets = 3
)

func main() {
	if err := Execute(); err != nil {
		switch errors.GetErrorCode(err) {
		case errors.ErrBusy:
			os.Exit(exitBusy)
		case errors.ErrSecretFound:
			os.Exit(exitSecrets)
		default:
			os.Exit(1)
		}
	}
}
