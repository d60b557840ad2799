// Package main provides the entry point for the micrograph measurement tool.
package main

import (
	"log"
	"os"

	"fyne.io/fyne/v2/app"

	"micromeasure/internal/measure"
	"micromeasure/internal/session"
	"micromeasure/internal/version"
	"micromeasure/ui/mainwindow"
	"micromeasure/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting micromeasure v%s", version.Version)

	fyneApp := app.NewWithID("io.micromeasure")

	appPrefs := prefs.Load()
	state := session.New(appPrefs.Scale(measure.DefaultScaleUmPerPx))

	win := mainwindow.New(fyneApp, state, appPrefs)

	// An image path on the command line opens directly.
	if len(os.Args) > 1 {
		win.OpenImage(os.Args[1])
	}

	win.ShowAndRun()
}
