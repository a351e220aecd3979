/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/pantry-pal/apiserver/cmd"
	"github.com/pantry-pal/apiserver/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
