package version

import "fmt"

// overwritten at build time via -ldflags
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var FullVersion = fmt.Sprintf("%s (%s) %s", Version, GitCommit, BuildDate)
