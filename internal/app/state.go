// Package app provides application state, events, and lifecycle helpers.
package app

import (
	"context"
	"log"
	"sync"

	"glacier-annotator/internal/annotate"
	"glacier-annotator/internal/config"
	"glacier-annotator/internal/geo"
	"glacier-annotator/internal/predict"
	"glacier-annotator/internal/raster"
)

// EventType identifies different application events.
type EventType int

const (
	EventAnnotationsChanged EventType = iota
	EventExtentConfirmed
	EventPredictionStarted
	EventPredictionReceived
	EventPredictionFailed
	EventShowPixelMapChanged
	EventModelChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application state: the annotation editor, the last
// prediction, and display flags.
type State struct {
	mu sync.RWMutex

	Config    *config.Config
	Editor    *annotate.Editor
	Predictor *predict.Client

	model        string // model identifier sent with requests
	showPixelMap bool

	lastExtent *geo.Extent
	prediction *predict.Response
	softMask   *raster.Mask

	listeners map[EventType][]EventListener
}

// NewState creates the application state from loaded configuration.
func NewState(cfg *config.Config) *State {
	s := &State{
		Config:       cfg,
		Editor:       annotate.NewEditor(cfg.Map.ExtentSide),
		Predictor:    predict.NewClient(cfg.Backend.URL, cfg.Backend.Timeout()),
		model:        cfg.Dataset.Model,
		showPixelMap: cfg.Map.ShowPixelMap,
		listeners:    make(map[EventType][]EventListener),
	}
	s.Editor.OnChange(func() {
		s.Emit(EventAnnotationsChanged, nil)
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Model returns the model identifier used for prediction requests.
func (s *State) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// SetModel changes the model identifier.
func (s *State) SetModel(model string) {
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	s.Emit(EventModelChanged, model)
}

// ShowPixelMap reports whether the soft-output raster should be drawn.
func (s *State) ShowPixelMap() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showPixelMap
}

// SetShowPixelMap toggles drawing of the soft-output raster.
func (s *State) SetShowPixelMap(show bool) {
	s.mu.Lock()
	s.showPixelMap = show
	s.mu.Unlock()
	s.Emit(EventShowPixelMapChanged, show)
}

// Prediction returns the last prediction response and its extent, or
// nils if none has arrived.
func (s *State) Prediction() (*predict.Response, *geo.Extent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prediction, s.lastExtent
}

// SoftMask returns the decoded soft-output mask, or nil.
func (s *State) SoftMask() *raster.Mask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.softMask
}

// RequestPrediction submits the extent to the backend in the
// background. Results and failures are announced through events;
// issuing a new request while one is in flight cancels the older one.
func (s *State) RequestPrediction(ext geo.Extent) {
	s.mu.RLock()
	req := predict.Request{
		Extent:  ext,
		Classes: s.Config.Dataset.Classes,
		Models:  s.model,
	}
	s.mu.RUnlock()

	s.Emit(EventPredictionStarted, ext)
	log.Printf("prediction: requesting extent x[%.0f, %.0f] y[%.0f, %.0f]",
		ext.XMin, ext.XMax, ext.YMin, ext.YMax)

	go func() {
		resp, err := s.Predictor.Predict(context.Background(), req)
		if err != nil {
			log.Printf("prediction: %v", err)
			s.Emit(EventPredictionFailed, err)
			return
		}

		var mask *raster.Mask
		if resp.OutputSoft != "" {
			mask, err = raster.DecodeSoftMask(resp.OutputSoft)
			if err != nil {
				perr := &predict.PredictionError{Kind: predict.ErrDecode, Err: err}
				log.Printf("prediction: %v", perr)
				s.Emit(EventPredictionFailed, perr)
				return
			}
		}

		s.mu.Lock()
		s.lastExtent = &ext
		s.prediction = resp
		s.softMask = mask
		s.mu.Unlock()

		s.Emit(EventPredictionReceived, resp)
	}()
}

// PromotePrediction vectorizes the last soft mask into polygons,
// georeferences them against the prediction extent, and appends them to
// the editor as regular annotations. Returns the number of polygons
// added.
func (s *State) PromotePrediction() (int, error) {
	s.mu.RLock()
	mask := s.softMask
	ext := s.lastExtent
	thresh := s.Config.Dataset.MaskThreshold
	s.mu.RUnlock()

	if mask == nil || ext == nil {
		return 0, nil
	}

	pixelPolys, err := raster.Vectorize(mask, thresh)
	if err != nil {
		return 0, err
	}

	for _, pp := range pixelPolys {
		verts := make([]geo.LatLng, len(pp))
		for i, p := range pp {
			proj := geo.Projected{
				X: ext.XMin + p.X/float64(mask.Width)*(ext.XMax-ext.XMin),
				Y: ext.YMax - p.Y/float64(mask.Height)*(ext.YMax-ext.YMin),
			}
			verts[i] = geo.Unproject(proj)
		}
		s.Editor.AppendPolygon(&annotate.Polygon{Vertices: verts})
	}
	return len(pixelPolys), nil
}
