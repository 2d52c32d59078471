package main

import (
	"fmt"
	"os"

	// Built-in modules register themselves at init time.
	_ "github.com/redelk-project/alarmd/internal/modules/filehash"
	_ "github.com/redelk-project/alarmd/internal/modules/natsconn"
	_ "github.com/redelk-project/alarmd/internal/modules/slack"
	_ "github.com/redelk-project/alarmd/internal/modules/tor"
	_ "github.com/redelk-project/alarmd/internal/modules/useragent"
	_ "github.com/redelk-project/alarmd/internal/modules/webhook"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
