// imposter CLI - scriptable mock server for REST, Salesforce and OpenAPI APIs
package main

import (
	"os"

	"github.com/getmockd/imposter/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(cli.Main(cli.BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}))
}
