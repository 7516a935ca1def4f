// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"glacier-annotator/internal/annotate"
	"glacier-annotator/internal/app"
	"glacier-annotator/internal/basemap"
	"glacier-annotator/internal/geo"
	"glacier-annotator/internal/predict"
	"glacier-annotator/internal/version"
	"glacier-annotator/ui/mapview"
	"glacier-annotator/ui/panels"
	"glacier-annotator/ui/prefs"
)

const (
	prefKeyCenterLat    = "map.center_lat"
	prefKeyCenterLng    = "map.center_lng"
	prefKeyZoom         = "map.zoom"
	prefKeyShowPixelMap = "map.show_pixel_map"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	mapView   *mapview.MapView
	sidePanel *panels.SidePanel
	statusBar *widget.Label
}

// New creates the main window over the given application state.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Glacier Annotator")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	cfg := mw.state.Config

	center := geo.LatLng{
		Lat: mw.prefs.Float(prefKeyCenterLat, cfg.Map.CenterLat),
		Lng: mw.prefs.Float(prefKeyCenterLng, cfg.Map.CenterLng),
	}
	zoom := mw.prefs.Int(prefKeyZoom, cfg.Map.Zoom)
	mw.state.SetShowPixelMap(mw.prefs.Bool(prefKeyShowPixelMap, cfg.Map.ShowPixelMap))

	source := basemap.NewSource(cfg.Map.TileURL)
	mw.mapView = mapview.NewMapView(source, center, zoom)
	mw.mapView.SetOverlayStacking(
		overlayMask, overlayPrediction, overlayAnnotations, overlayExtent)
	mw.wireMapEvents()

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	mapArea := container.NewBorder(
		toolbar,    // top
		nil,        // bottom
		nil,        // left
		nil,        // right
		mw.mapView, // center
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		mapArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// wireMapEvents routes map pointer events into the annotation editor.
func (mw *MainWindow) wireMapEvents() {
	ed := mw.state.Editor

	mw.mapView.OnTapped(func(pos geo.LatLng) {
		switch ed.Mode() {
		case annotate.ModeExtent:
			if ext, ok := ed.ConfirmExtent(); ok {
				mw.state.RequestPrediction(ext)
			}
		case annotate.ModeCreate:
			ed.Click(pos)
		default:
			ed.SelectPolygonAt(pos)
		}
	})

	mw.mapView.OnSecondaryTapped(func(pos geo.LatLng) {
		ed.CancelExtentSelection()
	})

	mw.mapView.OnHover(func(pos geo.LatLng) {
		ed.PointerMoved(pos)
	})

	// A drag on a focused polygon's vertex moves the vertex; anywhere
	// else it pans the map. The grab radius is a few pixels wider than
	// the drawn node, converted to degrees at the current zoom.
	mw.mapView.OnDragStart(func(start geo.LatLng) bool {
		tolSq := mw.mapView.GrabToleranceSq(start, nodeGrabRadius)
		return ed.BeginNodeDrag(start, tolSq)
	})
	mw.mapView.OnDrag(func(pos geo.LatLng) {
		ed.PointerMoved(pos)
	})
	mw.mapView.OnDragEnd(func() {
		ed.EndNodeDrag()
	})

	mw.mapView.OnViewChanged(func(center geo.LatLng, zoom int) {
		mw.prefs.SetFloat(prefKeyCenterLat, center.Lat)
		mw.prefs.SetFloat(prefKeyCenterLng, center.Lng)
		mw.prefs.SetInt(prefKeyZoom, zoom)
	})
}

// createToolbar creates the toolbar with the annotation actions and zoom
// controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	newPolyBtn := widget.NewButton("New Polygon", mw.onNewPolygon)
	extentBtn := widget.NewButton("Select Extent", mw.onSelectExtent)
	zoomOutBtn := widget.NewButton("-", mw.mapView.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.mapView.ZoomIn)

	return container.NewHBox(
		newPolyBtn,
		extentBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	annotateMenu := fyne.NewMenu("Annotate",
		fyne.NewMenuItem("New Polygon", mw.onNewPolygon),
		fyne.NewMenuItem("Select Extent", mw.onSelectExtent),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Cancel Selection", mw.onCancel),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.mapView.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.mapView.ZoomOut),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Pixel Map", func() {
			mw.state.SetShowPixelMap(!mw.state.ShowPixelMap())
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, annotateMenu, viewMenu, helpMenu))
}

// setupKeys installs keyboard shortcuts. Escape cancels an in-progress
// extent selection.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			mw.onCancel()
		}
	})
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventAnnotationsChanged, func(data interface{}) {
		mw.refreshAnnotationOverlay()
		mw.refreshExtentOverlay()
		mw.updateStatus(mw.modeStatus())
	})

	mw.state.On(app.EventPredictionStarted, func(data interface{}) {
		mw.updateStatus("Prediction requested...")
	})

	mw.state.On(app.EventPredictionReceived, func(data interface{}) {
		mw.refreshPredictionOverlay()
		mw.refreshMaskOverlay()
		mw.updateStatus("Prediction received")
	})

	mw.state.On(app.EventPredictionFailed, func(data interface{}) {
		if perr, ok := data.(*predict.PredictionError); ok {
			mw.updateStatus("Prediction failed: " + perr.Error())
		} else {
			mw.updateStatus(fmt.Sprintf("Prediction failed: %v", data))
		}
	})

	mw.state.On(app.EventShowPixelMapChanged, func(data interface{}) {
		if show, ok := data.(bool); ok {
			mw.prefs.SetBool(prefKeyShowPixelMap, show)
		}
		mw.refreshMaskOverlay()
	})

	mw.state.On(app.EventModelChanged, func(data interface{}) {
		if model, ok := data.(string); ok {
			mw.updateStatus("Model: " + model)
		}
	})
}

func (mw *MainWindow) onNewPolygon() {
	mw.state.Editor.StartNewPolygon()
	mw.updateStatus("Click to place vertices; click the first vertex to close")
}

func (mw *MainWindow) onSelectExtent() {
	mw.state.Editor.BeginExtentSelection(mw.mapView.Center())
	mw.updateStatus("Move to position the extent, click to confirm, Esc to cancel")
}

func (mw *MainWindow) onCancel() {
	mw.state.Editor.CancelExtentSelection()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("Glacier Annotator %s\nBuilt %s (%s)",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// modeStatus renders the editor mode for the status bar.
func (mw *MainWindow) modeStatus() string {
	ed := mw.state.Editor
	s := "Mode: " + ed.Mode().String()
	if poly := ed.Focused(); poly != nil {
		s += fmt.Sprintf("  (%d vertices)", len(poly.Vertices))
	}
	return s
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}
