// Command tabula validates tabular data against declarative schemas.
package main

import "os"

func main() {
	os.Exit(Execute())
}
