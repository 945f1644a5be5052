// The main package for the fifacrawler executable.
package main

import (
	"github.com/JakeFAU/fifa-crawler/cmd"
)

func main() {
	cmd.Execute()
}
