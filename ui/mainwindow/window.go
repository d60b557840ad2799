// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"gocv.io/x/gocv"
	xdraw "golang.org/x/image/draw"

	"micromeasure/internal/export"
	"micromeasure/internal/measure"
	"micromeasure/internal/micrograph"
	"micromeasure/internal/object"
	"micromeasure/internal/scalebar"
	"micromeasure/internal/session"
	"micromeasure/internal/version"
	"micromeasure/ui/canvas"
	"micromeasure/ui/prefs"
)

const prefKeyLastDir = "lastDirectory"

var tableHeaders = []string{"#", "Tool", "Metric", "Pixels", "µm"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *session.Session
	prefs *prefs.Prefs

	canvas *canvas.MeasureCanvas
	mg     *micrograph.Micrograph

	toolRadio   *widget.RadioGroup
	scaleEntry  *widget.Entry
	knownEntry  *widget.Entry
	calibStatus *widget.Label
	summary     *widget.Label
	table       *widget.Table
	statusBar   *widget.Label
}

// New creates the main window.
func New(fyneApp fyne.App, state *session.Session, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Micrograph Measurement Tool " + version.Version)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  appPrefs,
	}

	mw.setupUI()
	mw.setupEventHandlers()
	win.Resize(fyne.NewSize(1280, 800))

	return mw
}

// OpenImage loads a micrograph and starts a fresh editing session over it.
func (mw *MainWindow) OpenImage(path string) {
	mg, err := micrograph.Load(path)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.mg = mg

	canvasW, canvasH := mg.DisplaySize(micrograph.MaxDisplayWidth)
	mw.state.SetImage(path, mg.Width(), mg.Height(), canvasW, canvasH)

	// Canvas labels use the export font size brought down to canvas scale, so
	// the on-screen preview matches the annotated output.
	mw.state.FontSize = export.FontSizeFor(mg.Width()) / mw.state.ScaleX
	face, err := export.NewFace(mw.state.FontSize)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.state.Face = face

	display := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	xdraw.CatmullRom.Scale(display, display.Bounds(), mg.Image, mg.Image.Bounds(), xdraw.Src, nil)
	mw.canvas.SetBackground(display, canvasW, canvasH)
	mw.canvas.SetMode(mw.state.DrawingMode())

	mw.prefs.SetString(prefKeyLastDir, filepath.Dir(path))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}

	mw.table.Refresh()
	mw.refreshSummary()
	mw.setStatus(fmt.Sprintf("Loaded %s (%dx%d px, canvas %dx%d)",
		mg.Name(), mg.Width(), mg.Height(), canvasW, canvasH))
}

// setupUI builds the window layout: canvas in the center, controls and the
// measurement table on the right, status bar at the bottom.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMeasureCanvas()
	mw.canvas.OnChange(mw.onCanvasChange)

	mw.toolRadio = widget.NewRadioGroup([]string{"Line", "Circle", "Reposition"}, mw.onToolSelected)
	mw.toolRadio.SetSelected("Line")
	mw.toolRadio.Horizontal = true

	mw.scaleEntry = widget.NewEntry()
	mw.scaleEntry.SetText(formatScale(mw.state.Scale()))
	mw.scaleEntry.OnSubmitted = mw.onScaleEntered

	mw.knownEntry = widget.NewEntry()
	mw.knownEntry.SetText("400.0")
	mw.calibStatus = widget.NewLabel("")
	mw.calibStatus.Wrapping = fyne.TextWrapWord

	mw.summary = widget.NewLabel("No measurements yet")
	mw.statusBar = widget.NewLabel("Open an image to start measuring")

	mw.table = widget.NewTable(
		func() (int, int) {
			return len(mw.state.Measurements()) + 1, len(tableHeaders)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("000.00")
		},
		mw.updateTableCell,
	)

	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("Drawing mode", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		mw.toolRadio,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Scale (µm per pixel)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		mw.scaleEntry,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Calibrate scale", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Known length (µm)"),
		mw.knownEntry,
		widget.NewButton("Enter calibration mode", mw.onEnterCalibration),
		widget.NewButton("Save scale", mw.onSaveCalibration),
		widget.NewButton("Detect scale bar", mw.onDetectScaleBar),
		mw.calibStatus,
		widget.NewSeparator(),
		mw.summary,
	)

	toolbar := container.NewHBox(
		widget.NewButton("Open image", mw.onOpenImage),
		widget.NewButton("Export annotated PNG", mw.onExportPNG),
		widget.NewButton("Export CSV", mw.onExportCSV),
	)

	right := container.NewBorder(sidebar, nil, nil, nil, mw.table)

	content := container.NewBorder(
		toolbar,
		mw.statusBar,
		nil,
		right,
		container.NewScroll(mw.canvas),
	)
	mw.SetContent(content)
}

// setupEventHandlers wires session events back into the UI.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(session.EventScaleChanged, func() {
		mw.scaleEntry.SetText(formatScale(mw.state.Scale()))
	})
	mw.state.On(session.EventReconciled, func() {
		mw.table.Refresh()
		mw.refreshSummary()
	})
}

// onCanvasChange runs one reconciliation pass over the canvas snapshot and
// hands the reconciled object set back for rendering.
func (mw *MainWindow) onCanvasChange(snapshot []object.Object) {
	mw.state.Reconcile(snapshot)
	mw.canvas.SetObjects(mw.state.Objects())
	mw.refreshCalibStatus()
}

func (mw *MainWindow) onToolSelected(selected string) {
	switch selected {
	case "Circle":
		mw.state.Tool = measure.ToolCircle
		mw.state.SetMode(session.ModeDraw)
	case "Reposition":
		mw.state.SetMode(session.ModeReposition)
	default:
		mw.state.Tool = measure.ToolLine
		mw.state.SetMode(session.ModeDraw)
	}
	mw.canvas.SetMode(mw.state.DrawingMode())
}

func (mw *MainWindow) onScaleEntered(text string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || !mw.state.SetScale(v) {
		mw.setStatus("Scale must be a positive number")
		mw.scaleEntry.SetText(formatScale(mw.state.Scale()))
		return
	}

	mw.prefs.SetScale(v)
	if err := mw.prefs.Save(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}

	// Re-measure everything against the new scale.
	mw.state.Reconcile(mw.state.Objects())
	mw.canvas.SetObjects(mw.state.Objects())
	mw.setStatus(fmt.Sprintf("Scale set to %s µm/px", formatScale(v)))
}

func (mw *MainWindow) onEnterCalibration() {
	v, err := strconv.ParseFloat(strings.TrimSpace(mw.knownEntry.Text), 64)
	if err != nil {
		dialog.ShowError(fmt.Errorf("invalid known length %q", mw.knownEntry.Text), mw.Window)
		return
	}
	if err := mw.state.Calibrator.SetKnownLength(v); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}

	mw.state.Calibrator.Begin()
	mw.canvas.SetMode(mw.state.DrawingMode())
	mw.refreshCalibStatus()
	mw.setStatus("Calibrating: draw a line along the known-length feature")
}

func (mw *MainWindow) onSaveCalibration() {
	if err := mw.state.CommitCalibration(mw.prefs); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}

	mw.canvas.SetObjects(mw.state.Objects())
	mw.canvas.SetMode(mw.state.DrawingMode())
	mw.refreshCalibStatus()
	mw.setStatus(fmt.Sprintf("Calibration saved: %s µm/px", formatScale(mw.state.Scale())))
}

// onDetectScaleBar locates a printed scale bar in the source image, reads its
// annotation and pre-fills the calibration workflow with the result.
func (mw *MainWindow) onDetectScaleBar() {
	if mw.mg == nil {
		mw.setStatus("Open an image first")
		return
	}

	mat := gocv.IMRead(mw.mg.Path, gocv.IMReadColor)
	if mat.Empty() {
		dialog.ShowError(fmt.Errorf("failed to read %s for detection", mw.mg.Name()), mw.Window)
		return
	}
	defer mat.Close()

	reader, err := scalebar.NewReader()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	defer reader.Close()

	sug, err := scalebar.Suggest(mat, reader)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}

	if sug.KnownUm > 0 {
		mw.knownEntry.SetText(strconv.FormatFloat(sug.KnownUm, 'f', -1, 64))
		dialog.ShowInformation("Scale bar detected",
			fmt.Sprintf("Bar: %.0f px wide, annotation %q (%g µm).\nEnter calibration mode and trace the bar to apply.",
				sug.Bar.LengthPx, sug.Text, sug.KnownUm),
			mw.Window)
		return
	}

	dialog.ShowInformation("Scale bar detected",
		fmt.Sprintf("Bar: %.0f px wide, but the annotation %q could not be parsed.\nEnter the known length manually.",
			sug.Bar.LengthPx, sug.Text),
		mw.Window)
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()

		if !micrograph.IsSupportedFormat(path) {
			dialog.ShowError(fmt.Errorf("unsupported image format: %s", filepath.Ext(path)), mw.Window)
			return
		}
		mw.OpenImage(path)
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(micrograph.SupportedFormats()))
	if dir := mw.prefs.String(prefKeyLastDir); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lister)
		}
	}
	fd.Show()
}

func (mw *MainWindow) onExportPNG() {
	if mw.mg == nil {
		mw.setStatus("Open an image first")
		return
	}

	annotated, err := export.Annotate(mw.mg.Image, mw.state.Measurements(), mw.state.Labels(),
		mw.state.ScaleX, mw.state.ScaleY)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	data, err := export.EncodePNG(annotated)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}

	mw.saveFile("annotated_"+strings.TrimSuffix(mw.mg.Name(), filepath.Ext(mw.mg.Name()))+".png", data)
}

func (mw *MainWindow) onExportCSV() {
	if mw.mg == nil {
		mw.setStatus("Open an image first")
		return
	}

	csv := export.CSV(mw.mg.Name(), mw.state.Measurements(), mw.state.Scale(), time.Now())
	mw.saveFile("measurements.csv", []byte(csv))
}

// saveFile prompts for a destination and writes the data there.
func (mw *MainWindow) saveFile(suggested string, data []byte) {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if wc == nil {
			return
		}
		defer wc.Close()

		if _, err := wc.Write(data); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.setStatus("Saved " + wc.URI().Name())
	}, mw.Window)

	fd.SetFileName(suggested)
	fd.Show()
}

func (mw *MainWindow) updateTableCell(id widget.TableCellID, obj fyne.CanvasObject) {
	lbl := obj.(*widget.Label)
	if id.Row == 0 {
		lbl.TextStyle = fyne.TextStyle{Bold: true}
		lbl.SetText(tableHeaders[id.Col])
		return
	}
	ms := mw.state.Measurements()
	if id.Row-1 >= len(ms) {
		lbl.SetText("")
		return
	}
	m := ms[id.Row-1]
	lbl.TextStyle = fyne.TextStyle{}
	switch id.Col {
	case 0:
		lbl.SetText(strconv.Itoa(m.Index))
	case 1:
		lbl.SetText(m.Tool.String())
	case 2:
		lbl.SetText(m.Tool.Metric())
	case 3:
		lbl.SetText(fmt.Sprintf("%.2f", m.Px))
	case 4:
		lbl.SetText(fmt.Sprintf("%.2f", m.Um))
	}
}

func (mw *MainWindow) refreshCalibStatus() {
	cand := mw.state.Calibrator.Candidate(mw.state.Measurements())
	switch cand.Status {
	case measure.CalibrationIdle:
		mw.calibStatus.SetText("")
	case measure.CalibrationReady:
		mw.calibStatus.SetText(fmt.Sprintf("Reference line %.2f px, candidate scale %s µm/px",
			cand.LinePx, formatScale(cand.ScaleUmPerPx)))
	default:
		mw.calibStatus.SetText("Calibrating: " + cand.Status.String())
	}
}

func (mw *MainWindow) refreshSummary() {
	s := measure.Summarize(mw.state.Measurements())
	if s.Count == 0 {
		mw.summary.SetText("No measurements yet")
		return
	}
	mw.summary.SetText(fmt.Sprintf(
		"n=%d  mean=%.2f µm  sd=%.2f µm\nmin=%.2f µm  max=%.2f µm",
		s.Count, s.MeanUm, s.StdDevUm, s.MinUm, s.MaxUm))
}

func (mw *MainWindow) setStatus(msg string) {
	mw.statusBar.SetText(msg)
}

func formatScale(v float64) string {
	return strconv.FormatFloat(v, 'f', 9, 64)
}
