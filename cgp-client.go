package main

import (
	"log"
	"os"

	"github.com/nhsdigital/cgp-client/cgplog"
	"github.com/nhsdigital/cgp-client/cmd"
)

func main() {
	defer cgplog.Close()
	if err := cmd.RootCmd.Execute(); err != nil {
		log.Println("Error:", err.Error())
		os.Exit(1)
	}
}
