package logger

import (
	"io"
	"log"
)

func stdLogSetOutput(w io.Writer) {
	log.SetOutput(w)
	log.SetFlags(0)
}
