// Command newsagg serves and maintains a keyword-normalized cache of
// newsapi.org articles.
//
// @title          News Aggregator API
// @version        1.0
// @description    Keyword-normalized article cache in front of newsapi.org.
// @BasePath       /api/v1
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/tbourn/go-news-aggregator/internal/cli"
)

// Set via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("warning: could not read .env: " + err.Error() + "\n")
	}
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
