// Package main provides the entry point for the Cardsmith application.
package main

import (
	"log"
	"os"

	"cardsmith/internal/config"
	"cardsmith/internal/identify"
	"cardsmith/ui/mainwindow"
	"cardsmith/ui/prefs"

	"fyne.io/fyne/v2/app"
)

const (
	appTitle   = "Cardsmith"
	appVersion = "0.1.0"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, appVersion)

	cfg := config.Load()
	appPrefs := prefs.Load()

	var titler mainwindow.Titler
	if cfg.OCRTitles || appPrefs.Bool(prefs.KeyOCRTitles, false) {
		reader := identify.NewReader()
		defer reader.Close()
		titler = reader
	}

	fyneApp := app.New()
	win := mainwindow.New(fyneApp, cfg, appPrefs, titler)

	// Open an image given on the command line directly.
	if len(os.Args) > 1 {
		win.OpenImage(os.Args[1])
	}

	win.SetOnClosed(win.SavePreferences)
	win.ShowAndRun()
}
