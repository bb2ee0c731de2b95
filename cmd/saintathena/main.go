// Command saintathena serves the SaintAthena product search API and runs searches from the shell.
package main

import "os"

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}
