// Package mainwindow provides the main application window.
package mainwindow

import (
	"bytes"
	"fmt"
	"image"
	"log"
	"path/filepath"

	"cardsmith/internal/card"
	"cardsmith/internal/config"
	"cardsmith/internal/detect"
	"cardsmith/internal/export"
	"cardsmith/internal/refine"
	"cardsmith/pkg/geometry"
	"cardsmith/ui/editor"
	"cardsmith/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	cfg   *config.Config
	prefs *prefs.Prefs

	session  *refine.Session
	detector *detect.Detector
	renderer *export.Renderer
	titler   Titler

	surface      *editor.CardSurface
	cornerEditor *editor.CornerEditor
	regionCanvas *editor.RegionCanvas

	tabs      *container.AppTabs
	resultBox *fyne.Container
	statusBar *widget.Label

	enhancements card.Enhancements
	sourceID     string
	results      []export.ExtractResult

	// baseline is the editor state captured right after load and
	// auto-fit; extraction uses the plain region path until the user
	// changes something.
	baseline card.TransformModel
}

// Titler fills in titles on extracted cards. Nil disables recognition.
type Titler interface {
	Annotate(cards []*card.ExtractedCard)
}

// New creates a new main window.
func New(fyneApp fyne.App, cfg *config.Config, p *prefs.Prefs, titler Titler) *MainWindow {
	win := fyneApp.NewWindow("Cardsmith")

	mw := &MainWindow{
		Window:       win,
		app:          fyneApp,
		cfg:          cfg,
		prefs:        p,
		session:      refine.NewSession(),
		detector:     detect.NewDetector(detect.DefaultOptions()),
		renderer:     export.NewRenderer(cfg.OutputWidth, cfg.OutputHeight),
		titler:       titler,
		enhancements: card.NeutralEnhancements(),
	}
	mw.renderer.MaxEnhancement = cfg.MaxEnhancement

	mw.setupUI()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1100, 750))
	return mw
}

// setupUI creates the main layout: toolbar on top, stage tabs in the
// center, adjustment panel on the right, status bar at the bottom.
func (mw *MainWindow) setupUI() {
	mw.surface = editor.NewCardSurface(mw.cfg.TargetAspect, mw.cfg.AutoFitBias)
	mw.surface.SetShowThirds(mw.prefs.Bool(prefs.KeyShowThirds, true))
	mw.cornerEditor = editor.NewCornerEditor()
	mw.regionCanvas = editor.NewRegionCanvas(mw.session)
	mw.resultBox = container.NewGridWrap(fyne.NewSize(150, 210))
	mw.statusBar = widget.NewLabel("Open an image to begin")

	mw.tabs = container.NewAppTabs(
		container.NewTabItem("Regions", mw.regionCanvas),
		container.NewTabItem("Fit", mw.surface),
		container.NewTabItem("Perspective", mw.cornerEditor),
		container.NewTabItem("Results", container.NewScroll(mw.resultBox)),
	)

	content := container.NewBorder(
		mw.createToolbar(),
		container.NewPadded(mw.statusBar),
		nil,
		mw.createAdjustPanel(),
		mw.tabs,
	)
	mw.SetContent(content)
}

// createToolbar creates the stage controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	drawCheck := widget.NewCheck("Draw regions", func(on bool) {
		if on {
			mw.regionCanvas.SetMode(editor.ModeDraw)
		} else {
			mw.regionCanvas.SetMode(editor.ModeSelect)
		}
	})

	thirdsCheck := widget.NewCheck("Thirds grid", func(on bool) {
		mw.surface.SetShowThirds(on)
		mw.prefs.SetBool(prefs.KeyShowThirds, on)
	})
	thirdsCheck.Checked = mw.prefs.Bool(prefs.KeyShowThirds, true)

	return container.NewHBox(
		widget.NewButton("Open...", mw.onOpenImage),
		widget.NewSeparator(),
		drawCheck,
		thirdsCheck,
		widget.NewButton("Delete", mw.regionCanvas.DeleteSelected),
		widget.NewButton("Select All", func() {
			mw.session.SelectAll()
		}),
		widget.NewSeparator(),
		widget.NewButton("Auto-fit", mw.surface.AutoFit),
		widget.NewButton("Reset Corners", mw.cornerEditor.Reset),
		widget.NewSeparator(),
		widget.NewButton("Back", mw.onBack),
		widget.NewButton("Extract", mw.onExtract),
		widget.NewButton("Export...", mw.onExport),
	)
}

// createAdjustPanel builds the rotation and enhancement sliders. The
// enhancement sliders run 0..max percent with 100 as the neutral point.
func (mw *MainWindow) createAdjustPanel() fyne.CanvasObject {
	rotation := widget.NewSlider(-45, 45)
	rotation.Step = 0.5
	rotation.OnChanged = mw.surface.SetRotation

	// Slider positions persist across sessions as editing defaults.
	enhSlider := func(key string, target *float64) *widget.Slider {
		s := widget.NewSlider(0, mw.cfg.MaxEnhancement)
		s.Step = 1
		s.Value = mw.prefs.Float(key, card.NeutralPercent)
		*target = s.Value
		s.OnChanged = func(v float64) {
			*target = v
			mw.prefs.SetFloat(key, v)
		}
		return s
	}

	return container.NewVBox(
		widget.NewLabel("Rotation"),
		rotation,
		widget.NewLabel("Brightness"),
		enhSlider(prefs.KeyEnhBrightness, &mw.enhancements.Brightness),
		widget.NewLabel("Contrast"),
		enhSlider(prefs.KeyEnhContrast, &mw.enhancements.Contrast),
		widget.NewLabel("Saturation"),
		enhSlider(prefs.KeyEnhSaturation, &mw.enhancements.Saturation),
		widget.NewLabel("Sharpness"),
		enhSlider(prefs.KeyEnhSharpness, &mw.enhancements.Sharpness),
	)
}

// setupEventHandlers wires session events to the widgets.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(refine.EventStageChanged, func(data interface{}) {
		stage, _ := data.(refine.Stage)
		mw.updateStatus(fmt.Sprintf("Stage: %s", stage))
		mw.regionCanvas.Refresh()
	})
	mw.session.On(refine.EventRegionsChanged, func(interface{}) {
		mw.regionCanvas.Refresh()
	})
	mw.session.On(refine.EventSelectionChanged, func(interface{}) {
		mw.updateStatus(fmt.Sprintf("%d region(s) selected", len(mw.session.SelectedIDs())))
		mw.regionCanvas.Refresh()
	})
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// onOpenImage prompts for a source image and starts a new session.
func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()
		mw.loadImage(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}))
	if dir := mw.prefs.String(prefs.KeyLastOpenDir, ""); dir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

// OpenImage loads an image by path, as given on the command line.
func (mw *MainWindow) OpenImage(path string) {
	mw.loadImage(path)
}

func (mw *MainWindow) loadImage(path string) {
	img, err := imaging.Open(path)
	if err != nil {
		dialog.ShowError(fmt.Errorf("open %s: %w", filepath.Base(path), err), mw.Window)
		return
	}
	gen, err := mw.session.LoadImage(img)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.sourceID = filepath.Base(path)
	mw.prefs.SetString(prefs.KeyLastOpenDir, filepath.Dir(path))
	mw.surface.SetImage(img)
	mw.cornerEditor.SetImage(img)
	mw.baseline = mw.currentTransform()
	mw.results = nil
	mw.resultBox.RemoveAll()
	mw.updateStatus("Detecting cards...")

	// Detection runs off the UI goroutine; the session drops the result
	// if a newer image supersedes this generation.
	go func() {
		regions, err := mw.detector.Detect(img)
		if err != nil {
			log.Printf("detect %s: %v", mw.sourceID, err)
		}
		if mw.session.SeedRegions(gen, regions) {
			mw.updateStatus(fmt.Sprintf("Detected %d region(s)", len(regions)))
			mw.tabs.SelectIndex(0)
		}
	}()
}

// onBack steps the session one stage backward.
func (mw *MainWindow) onBack() {
	if mw.session.Back() {
		mw.results = nil
		mw.resultBox.RemoveAll()
		mw.regionCanvas.Refresh()
	}
}

// onExtract renders every selected region at the configured output size.
// A single-region selection with active edits goes through the full
// transform pipeline; a plain batch uses the region crop.
func (mw *MainWindow) onExtract() {
	regions, gen, err := mw.session.BeginExtract()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	src := mw.session.Source()
	mw.updateStatus(fmt.Sprintf("Extracting %d card(s)...", len(regions)))

	if len(regions) == 1 && mw.hasEdits() {
		go mw.extractEdited(src, regions[0], gen)
		return
	}
	mw.renderer.ExtractAllAsync(src, mw.sourceID, regions, gen, func(gen uint64, results []export.ExtractResult) {
		if gen != mw.session.Generation() {
			return
		}
		mw.annotate(results)
		mw.showResults(results)
	})
}

// currentTransform assembles the model shown by the editing widgets.
func (mw *MainWindow) currentTransform() card.TransformModel {
	t := mw.surface.Transform()
	t.Perspective = mw.cornerEditor.Quad()
	t.Enhancements = mw.enhancements
	return t
}

func (mw *MainWindow) hasEdits() bool {
	return editedSince(mw.baseline, mw.currentTransform())
}

// editedSince reports whether the editor state moved away from the state
// captured when the image was loaded. Auto-fit alone is not an edit: an
// untouched editor extracts through the same crop+resize path as a batch.
func editedSince(baseline, current card.TransformModel) bool {
	return current != baseline
}

// extractEdited renders one region through the transform pipeline: the
// region becomes the crop, then perspective or fill geometry and the
// enhancement chain apply on top.
func (mw *MainWindow) extractEdited(src image.Image, region card.DetectedRegion, gen uint64) {
	b := src.Bounds()
	t := mw.currentTransform()
	t.Crop = geometry.Rect{
		X:      float64(region.Bounds.X) / float64(b.Dx()),
		Y:      float64(region.Bounds.Y) / float64(b.Dy()),
		Width:  float64(region.Bounds.Width) / float64(b.Dx()),
		Height: float64(region.Bounds.Height) / float64(b.Dy()),
	}

	png, err := mw.renderer.RenderPNG(src, t)
	result := export.ExtractResult{Region: region, Err: err}
	if err == nil {
		result.Card = card.ExtractedCard{
			PNG:        png,
			Confidence: region.Confidence,
			Bounds:     region.Bounds,
			SourceID:   mw.sourceID,
		}
	}
	results := []export.ExtractResult{result}
	if gen != mw.session.Generation() {
		return
	}
	mw.annotate(results)
	mw.showResults(results)
}

// annotate runs title recognition over successful extractions.
func (mw *MainWindow) annotate(results []export.ExtractResult) {
	if mw.titler == nil {
		return
	}
	cards := make([]*card.ExtractedCard, 0, len(results))
	for i := range results {
		if results[i].Err == nil {
			cards = append(cards, &results[i].Card)
		}
	}
	mw.titler.Annotate(cards)
}

// showResults populates the results tab with thumbnails.
func (mw *MainWindow) showResults(results []export.ExtractResult) {
	mw.results = results
	mw.resultBox.RemoveAll()

	ok := 0
	for _, res := range results {
		if res.Err != nil {
			log.Printf("extract region %s: %v", res.Region.ID, res.Err)
			continue
		}
		img, err := imaging.Decode(bytes.NewReader(res.Card.PNG))
		if err != nil {
			continue
		}
		thumb := fynecanvas.NewImageFromImage(img)
		thumb.FillMode = fynecanvas.ImageFillContain
		thumb.SetMinSize(fyne.NewSize(150, 210))
		label := res.Region.ID
		if res.Card.Title != "" {
			label = res.Card.Title
		}
		mw.resultBox.Add(container.NewBorder(nil, widget.NewLabel(label), nil, nil, thumb))
		ok++
	}
	mw.updateStatus(fmt.Sprintf("Extracted %d of %d card(s)", ok, len(results)))
	mw.tabs.SelectIndex(3)
	mw.resultBox.Refresh()
}

// onExport writes the extracted cards to a chosen directory as PNG files.
func (mw *MainWindow) onExport() {
	if len(mw.results) == 0 {
		dialog.ShowInformation("Export", "Nothing extracted yet", mw.Window)
		return
	}
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		dir := uri.Path()
		mw.prefs.SetString(prefs.KeyLastExportDir, dir)
		if err := export.WriteCards(dir, mw.sourceID, mw.results); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus(fmt.Sprintf("Exported to %s", dir))
	}, mw.Window)
	if dir := mw.prefs.String(prefs.KeyLastExportDir, ""); dir != "" {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(uri)
		}
	}
	fd.Show()
}

// SavePreferences flushes preference changes to disk.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}
