package main

import (
	"fmt"
	"os"
)

func main() {
	root, a := newRootCmd()
	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+userMessage(err)))
		os.Exit(1)
	}
}
