package main

import (
	_ "github.com/worraphat/jarvis/pkg/logger/autoload"

	"github.com/worraphat/jarvis/cmd"
)

func main() {
	cmd.Execute()
}
