package main

import (
	"fmt"
	"os"

	"github.com/uphy/postfeed/app"
)

func main() {
	a := app.New()
	if err := a.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
