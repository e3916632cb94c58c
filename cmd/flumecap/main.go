package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/flume/gfx"
	"github.com/devblok/flume/trace"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: flumecap <capture file>")
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("os.Open(): %s", err.Error())
	}
	defer file.Close()

	reader, err := trace.Open(file)
	if err != nil {
		log.Fatalf("trace.Open(): %s", err.Error())
	}

	header := reader.Header()
	log.WithFields(log.Fields{
		"engine":  header.Engine,
		"created": header.DateCreated,
		"version": header.Version,
	}).Info("capture opened")

	var frames int
	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("trace.Next(): %s", err.Error())
		}
		frames++

		log.WithFields(log.Fields{
			"frame":    record.ID,
			"commands": len(record.Commands),
			"draws":    countOps(record.Commands, gfx.OpDraw),
			"clears":   countOps(record.Commands, gfx.OpClear),
			"errors":   len(record.Errors),
		}).Info("frame")

		for _, msg := range record.Errors {
			log.WithField("frame", record.ID).Warn(msg)
		}
	}

	log.Infof("%d frames total", frames)
}

func countOps(commands []gfx.Command, op gfx.Op) int {
	var n int
	for _, cmd := range commands {
		if cmd.Op == op {
			n++
		}
	}
	return n
}
