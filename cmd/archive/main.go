package main

import (
	"github.com/crypticarchive/archive/internal/cli"
	"github.com/crypticarchive/archive/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}
