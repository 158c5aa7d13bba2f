// Command crawlsearch runs either the web crawler or the search HTTP
// server against the same PostgreSQL-backed inverted index.
package main

import (
	"fmt"
	"os"

	"github.com/ryzhov/crawlsearch/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
