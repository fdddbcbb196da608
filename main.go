package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/skattyadz/Caja-HTML-Sanitizer/sax"
)

// Reads HTML from stdin (or takes it as the first argument) and logs the
// lexical events the scanner emits.
func main() {
	htmlText := ""
	if len(os.Args) > 1 {
		htmlText = os.Args[1]
	} else {
		in, err := io.ReadAll(os.Stdin)
		if err != nil {
			logrus.WithError(err).Fatal("read stdin")
		}
		htmlText = string(in)
	}

	log := logrus.New()
	h := &sax.EventHandler{
		StartDoc: func(any) { log.Info("start of document") },
		EndDoc:   func(any) { log.Info("end of document") },
		StartTag: func(name string, attrs []string, _ any, next *sax.Continuation) {
			log.WithField("attrs", attrs).Infof("start tag <%s>", name)
			next.Resume()
		},
		EndTag: func(name string, _ any, next *sax.Continuation) {
			log.Infof("end tag </%s>", name)
			next.Resume()
		},
		PCData: func(text string, _ any, next *sax.Continuation) {
			log.Infof("text %q (decoded %q)", text, sax.Unescape(text))
			next.Resume()
		},
		CData: func(text string, _ any, next *sax.Continuation) {
			log.Infof("raw text %q", text)
			next.Resume()
		},
		RCData: func(text string, _ any, next *sax.Continuation) {
			log.Infof("rcdata %q", text)
			next.Resume()
		},
		Comment: func(text string, _ any, next *sax.Continuation) {
			log.Infof("comment %q", text)
			next.Resume()
		},
	}

	status, err := sax.Parse(htmlText, h, nil)
	if err != nil {
		logrus.WithError(err).Fatal("parse")
	}
	log.WithField("status", status).Debug("parse finished")
}
