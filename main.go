package main

import (
	"log"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"glacier-annotator/internal/app"
	"glacier-annotator/internal/config"
	"glacier-annotator/internal/version"
	"glacier-annotator/ui/mainwindow"
	"glacier-annotator/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("glacier-annotator %s (%s)", version.Version, version.GitCommit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	state := app.NewState(cfg)
	p := prefs.Load()

	fyneApp := fyneapp.NewWithID("io.glacier.annotator")
	fyneApp.Settings().SetTheme(&app.AnnotatorTheme{})

	win := mainwindow.New(fyneApp, state, p)

	// Development convenience: offer an in-place restart when the
	// binary is rebuilt, and autosave preferences on the same ticker.
	if reloader := app.NewHotReloader(2 * time.Second); reloader != nil {
		reloader.OnTick(func() {
			if err := p.SaveIfChanged(); err != nil {
				log.Printf("prefs: save: %v", err)
			}
		})
		reloader.OnNewBinary(func() {
			dialog.ShowConfirm("New build detected",
				"A newer binary is available. Restart now?",
				func(restart bool) {
					if !restart {
						reloader.ResetBaseline()
						reloader.Start()
						return
					}
					_ = p.Save()
					if err := reloader.Restart(); err != nil {
						log.Printf("restart: %v", err)
					}
				}, win.Window)
		})
		reloader.Start()
		defer reloader.Stop()
	}

	win.ShowAndRun()

	if err := p.Save(); err != nil {
		log.Printf("prefs: save: %v", err)
	}
}
