package version

import "fmt"

var GitCommit string
var GitTag string
var UserAgent string

func init() {
	UserAgent = fmt.Sprintf("etf-cli/%s+%s", GitTag, GitCommit)
}
