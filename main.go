package main

import (
	"flag"

	"github.com/teamspeak-go/ts3query/queryd"
)

// main() is the main program entry
//
// this is a wrapper to enable us to put the interesting stuff in a package
func main() {
	flag.Parse()
	queryd.Run(nil)
}
