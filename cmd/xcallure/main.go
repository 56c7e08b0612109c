package main

import (
	"log/slog"
	"os"

	"github.com/xcreports/xcallure"
)

func main() {
	s := xcallure.New()

	if err := s.Run(); err != nil {
		slog.Error(err.Error())
		os.Exit(-1)
	}
}
