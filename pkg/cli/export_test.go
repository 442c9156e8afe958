package cli

import "io"

// SetOutputForTest redirects command results and returns a restore function
func SetOutputForTest(w io.Writer) func() {
	prev := output
	output = w
	return func() { output = prev }
}

var GetIndexConfig = getIndexConfig
var DescribeMigration = describeMigration
