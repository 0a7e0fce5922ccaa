// bio-ngs reads NCBI SRA read collections through the NGS libraries. The
// libraries are downloaded from NCBI on first use unless -no-download is set.
package main

import (
	"github.com/grailbio/ngs/cmd/bio-ngs/cmd"
)

func main() {
	cmd.Run()
}
