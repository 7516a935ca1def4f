// Package panels provides UI panels for the application.
package panels

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"glacier-annotator/internal/app"
	"glacier-annotator/pkg/colorutil"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	predictionPanel *PredictionPanel
	polygonsPanel   *PolygonsPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.predictionPanel = NewPredictionPanel(state)
	sp.polygonsPanel = NewPolygonsPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Prediction", sp.predictionPanel.Container()),
		container.NewTabItem("Polygons", sp.polygonsPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.predictionPanel.window = w
}

// PredictionPanel configures the model request and shows the result.
type PredictionPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	modelSelect   *widget.Select
	pixelMapCheck *widget.Check
	maskStats     *widget.Label
	promoteButton *widget.Button
}

// NewPredictionPanel creates a new prediction panel.
func NewPredictionPanel(state *app.State) *PredictionPanel {
	pp := &PredictionPanel{state: state}

	pp.maskStats = widget.NewLabel("No prediction yet")
	pp.maskStats.Wrapping = fyne.TextWrapWord

	pp.modelSelect = widget.NewSelect([]string{state.Model()}, func(selected string) {
		state.SetModel(selected)
	})
	pp.modelSelect.SetSelected(state.Model())

	pp.pixelMapCheck = widget.NewCheck("Show pixel map", func(checked bool) {
		state.SetShowPixelMap(checked)
	})
	pp.pixelMapCheck.SetChecked(state.ShowPixelMap())

	pp.promoteButton = widget.NewButton("Promote to Polygons", func() {
		pp.onPromote()
	})
	pp.promoteButton.Disable()

	pp.container = container.NewVBox(
		widget.NewCard("Model", "", container.NewVBox(
			pp.modelSelect,
			classLegend(state.Config.Dataset.Classes),
		)),
		widget.NewCard("Result", "", container.NewVBox(
			pp.pixelMapCheck,
			pp.maskStats,
			pp.promoteButton,
		)),
	)

	state.On(app.EventPredictionReceived, func(data interface{}) {
		pp.updateResult()
	})
	state.On(app.EventShowPixelMapChanged, func(data interface{}) {
		if show, ok := data.(bool); ok && show != pp.pixelMapCheck.Checked {
			pp.pixelMapCheck.SetChecked(show)
		}
	})

	// Populate the model list from the backend. Failure keeps the
	// configured default.
	go pp.loadModels()

	return pp
}

// Container returns the panel container.
func (pp *PredictionPanel) Container() fyne.CanvasObject {
	return pp.container
}

// loadModels asks the backend for its model list.
func (pp *PredictionPanel) loadModels() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	models, err := pp.state.Predictor.Models(ctx)
	if err != nil {
		log.Printf("panels: list models: %v", err)
		return
	}
	if len(models) == 0 {
		return
	}

	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	selected := pp.state.Model()
	pp.modelSelect.Options = names
	pp.modelSelect.SetSelected(selected)
	pp.modelSelect.Refresh()
}

// updateResult refreshes the mask statistics after a prediction arrives.
func (pp *PredictionPanel) updateResult() {
	mask := pp.state.SoftMask()
	if mask == nil {
		pp.maskStats.SetText("Prediction received (no pixel map)")
		pp.promoteButton.Disable()
		return
	}
	pp.maskStats.SetText(fmt.Sprintf(
		"Mask %dx%d\nMean prob: %.3f\n90th pct: %.3f",
		mask.Width, mask.Height, mask.Mean(), mask.Quantile(0.9)))
	pp.promoteButton.Enable()
}

// onPromote vectorizes the mask into editable polygons.
func (pp *PredictionPanel) onPromote() {
	n, err := pp.state.PromotePrediction()
	if err != nil {
		pp.maskStats.SetText(fmt.Sprintf("Promote failed: %v", err))
		return
	}
	pp.maskStats.SetText(fmt.Sprintf("Promoted %d polygon(s)", n))
}

// classLegend renders a color swatch per annotation class.
func classLegend(classes []string) fyne.CanvasObject {
	rows := make([]fyne.CanvasObject, 0, len(classes))
	for i, name := range classes {
		swatch := fynecanvas.NewRectangle(colorutil.ClassColor(i))
		swatch.SetMinSize(fyne.NewSize(14, 14))
		swatch.StrokeColor = color.Black
		swatch.StrokeWidth = 1
		rows = append(rows, container.NewHBox(swatch, widget.NewLabel(name)))
	}
	return container.NewVBox(rows...)
}

// PolygonsPanel lists the annotation polygons.
type PolygonsPanel struct {
	state     *app.State
	container fyne.CanvasObject

	list *widget.List
}

// NewPolygonsPanel creates a new polygons panel.
func NewPolygonsPanel(state *app.State) *PolygonsPanel {
	pl := &PolygonsPanel{state: state}

	pl.list = widget.NewList(
		func() int {
			return len(state.Editor.Polygons())
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Polygon")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			polys := state.Editor.Polygons()
			if id < len(polys) {
				label := fmt.Sprintf("Polygon %d (%d vertices)", id+1, len(polys[id].Vertices))
				if id == state.Editor.Focus() {
					label += " *"
				}
				obj.(*widget.Label).SetText(label)
			}
		},
	)

	state.On(app.EventAnnotationsChanged, func(data interface{}) {
		pl.list.Refresh()
	})

	pl.container = container.NewBorder(
		widget.NewLabel("Annotations"),
		nil, nil, nil,
		pl.list,
	)

	return pl
}

// Container returns the panel container.
func (pl *PolygonsPanel) Container() fyne.CanvasObject {
	return pl.container
}
