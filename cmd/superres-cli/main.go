package main

import (
	"context"
	"os"

	"superres/internal/cli"
	"superres/internal/opencv/dnn"

	"github.com/charmbracelet/fang"
)

const version = "1.0.0"

func main() {
	root := cli.NewRootCmd(dnn.LoadModel)

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
