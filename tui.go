package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	"doodle/editor"
	"doodle/geometry"
	"doodle/render"
	"doodle/scene"
	"doodle/shape"
)

// cellSize maps document units onto terminal cells. A terminal cell is
// roughly twice as tall as wide, so the vertical scale doubles.
const (
	cellSize      = 8.0
	defaultShapeW = 96.0
	defaultShapeH = 48.0
)

type uiMode int

const (
	modeCanvas uiMode = iota
	modeText
	modeField
	modeDrag
)

type app struct {
	screen tcell.Screen
	sc     *scene.Scene
	meta   scene.Metadata
	cfg    *Config
	hist   *scene.History
	path   string

	mode      uiMode
	fieldEdit *editor.FieldEdit
	textEdit  *editor.TextEdit
	cursor    geometry.Point
	status    string
	dirty     bool
	quit      bool
}

func newApp(sc *scene.Scene, meta scene.Metadata, cfg *Config, path string) (*app, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	hist := scene.NewHistory(cfg.HistoryLimit)
	hist.Save(sc)
	return &app{
		screen: screen,
		sc:     sc,
		meta:   meta,
		cfg:    cfg,
		hist:   hist,
		path:   path,
		cursor: geometry.Point{X: 80, Y: 80},
		status: "r/o/y/p/z place shape, Enter select, t label, ? keys",
	}, nil
}

func (a *app) run() error {
	if err := a.screen.Init(); err != nil {
		return err
	}
	defer a.screen.Fini()

	for !a.quit {
		a.draw()
		ev := a.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			a.handleKey(ev)
		}
	}
	return nil
}

// checkpoint records an undo state after a committed operation.
func (a *app) checkpoint() {
	a.hist.Save(a.sc)
	a.dirty = true
}

func (a *app) handleKey(ev *tcell.EventKey) {
	// Global shortcuts work in every mode except while a drag gesture
	// is open, where only the gesture keys apply.
	if a.mode != modeDrag {
		switch ev.Key() {
		case tcell.KeyCtrlS:
			a.save()
			return
		case tcell.KeyCtrlZ:
			if prev := a.hist.Undo(); prev != nil {
				a.sc = prev
				a.status = "undo"
			}
			return
		case tcell.KeyCtrlY:
			if next := a.hist.Redo(); next != nil {
				a.sc = next
				a.status = "redo"
			}
			return
		}
	}

	switch a.mode {
	case modeCanvas:
		a.handleCanvasKey(ev)
	case modeText:
		a.handleTextKey(ev)
	case modeField:
		a.handleFieldKey(ev)
	case modeDrag:
		a.handleDragKey(ev)
	}
}

func (a *app) handleCanvasKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.sc.ClearSelection()
		a.status = "selection cleared"
		return
	case tcell.KeyEnter:
		if id, ok := a.sc.HitTest(a.cursor, cellSize/2); ok {
			a.sc.ClearSelection()
			a.sc.Select(id)
			a.status = fmt.Sprintf("selected #%d", id)
		}
		return
	case tcell.KeyTab:
		a.cycleSelection()
		return
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		dx, dy := arrowDelta(ev.Key())
		if ev.Modifiers()&tcell.ModShift != 0 && len(a.sc.Selection()) > 0 {
			a.sc.MoveSelection(dx, dy)
			a.checkpoint()
		} else {
			a.cursor = a.cursor.Add(dx, dy)
		}
		return
	case tcell.KeyCtrlC:
		if err := copyToClipboard(a.sc); err != nil {
			a.status = fmt.Sprintf("copy failed: %v", err)
		} else {
			a.status = "copied"
		}
		return
	case tcell.KeyCtrlV:
		if ids, err := pasteFromClipboard(a.sc); err != nil {
			a.status = fmt.Sprintf("paste failed: %v", err)
		} else {
			a.status = fmt.Sprintf("pasted %d entities", len(ids))
			a.checkpoint()
		}
		return
	case tcell.KeyCtrlQ:
		a.quit = true
		return
	}

	switch ev.Rune() {
	case 'q':
		a.quit = true
	case 'r':
		a.placeShape(shape.KindRect)
	case 'o':
		a.placeShape(shape.KindEllipse)
	case 'y':
		a.placeShape(shape.KindTriangle)
	case 'p':
		a.placeShape(shape.KindParallelogram)
	case 'z':
		a.placeShape(shape.KindTrapezoid)
	case ' ':
		if id, ok := a.sc.HitTest(a.cursor, cellSize/2); ok {
			a.sc.ToggleSelect(id)
		}
	case 'c':
		a.connectSelection(shape.KindArrow)
	case 'C':
		a.connectSelection(shape.KindLine)
	case 'g':
		if gid, err := a.sc.GroupSelection(); err != nil {
			a.status = err.Error()
		} else {
			a.status = fmt.Sprintf("grouped into #%d", gid)
			a.checkpoint()
		}
	case 'u':
		if err := a.sc.UngroupSelection(); err != nil {
			a.status = err.Error()
		} else {
			a.status = "ungrouped"
			a.checkpoint()
		}
	case 'd':
		if n := len(a.sc.Selection()); n > 0 {
			a.sc.DeleteSelection()
			a.status = fmt.Sprintf("deleted %d entities", n)
			a.checkpoint()
		}
	case 'D':
		if ids := a.sc.DuplicateSelection(); len(ids) > 0 {
			a.status = "duplicated"
			a.checkpoint()
		}
	case 'm':
		if len(a.sc.Selection()) > 0 {
			if err := a.sc.BeginDrag(); err == nil {
				a.mode = modeDrag
				a.status = "drag: arrows move, Enter commits, Esc cancels"
			}
		}
	case 'f':
		if len(a.sc.Selection()) > 0 {
			a.sc.BringToFront()
			a.checkpoint()
		}
	case 'b':
		if len(a.sc.Selection()) > 0 {
			a.sc.SendToBack()
			a.checkpoint()
		}
	case 't':
		if sh := a.singleShape(); sh != nil {
			a.textEdit = editor.NewTextEdit(sh)
			a.mode = modeText
			a.status = "label: Enter commits, Esc cancels"
		}
	case 'X', 'Y', 'W', 'H', 'R':
		if sh := a.singleShape(); sh != nil {
			a.fieldEdit = editor.NewFieldEdit(sh, fieldForKey(ev.Rune()))
			a.fieldEdit.Clear()
			a.mode = modeField
			a.status = fmt.Sprintf("%s: type a number, Enter commits", a.fieldEdit.Field)
		}
	case '1', '2', '3', '4', '5', '6':
		a.alignForKey(ev.Rune())
	case '7':
		a.distributeForKey(scene.Horizontal)
	case '8':
		a.distributeForKey(scene.Vertical)
	case '9':
		a.abutForKey(scene.Horizontal)
	case '0':
		a.abutForKey(scene.Vertical)
	case 's':
		if len(a.sc.Selection()) > 0 {
			a.sc.SnapSelectionToGrid()
			a.checkpoint()
		}
	case 'S':
		a.sc.ToggleSnapForSelection()
		a.status = "snap flag toggled"
	}
}

func (a *app) handleDragKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		dx, dy := arrowDelta(ev.Key())
		a.sc.MoveSelection(dx, dy)
	case tcell.KeyEnter:
		a.sc.CommitDrag()
		a.mode = modeCanvas
		a.status = "moved"
		a.checkpoint()
	case tcell.KeyEscape:
		if err := a.sc.RollbackDrag(); err == nil {
			a.mode = modeCanvas
			a.status = "drag cancelled"
		}
	}
}

func (a *app) handleTextKey(ev *tcell.EventKey) {
	e := a.textEdit
	switch ev.Key() {
	case tcell.KeyEnter:
		sh := a.singleShape()
		if sh == nil {
			a.mode = modeCanvas
			return
		}
		if err := e.Commit(sh); err != nil {
			a.status = err.Error()
			return
		}
		a.mode = modeCanvas
		a.status = "label set"
		a.checkpoint()
	case tcell.KeyEscape:
		a.mode = modeCanvas
		a.status = "label unchanged"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.Backspace()
	case tcell.KeyDelete:
		e.Delete()
	case tcell.KeyLeft:
		e.MoveLeft()
	case tcell.KeyRight:
		e.MoveRight()
	case tcell.KeyHome:
		e.MoveHome()
	case tcell.KeyEnd:
		e.MoveEnd()
	case tcell.KeyCtrlW:
		e.DeleteWordBackward()
	case tcell.KeyCtrlK:
		e.DeleteToEndOfLine()
	case tcell.KeyCtrlJ:
		e.Insert('\n')
	default:
		if r := ev.Rune(); r != 0 {
			e.Insert(r)
		}
	}
}

func (a *app) handleFieldKey(ev *tcell.EventKey) {
	e := a.fieldEdit
	switch ev.Key() {
	case tcell.KeyEnter:
		sh := a.singleShape()
		if sh != nil && e.Commit(sh) {
			a.status = fmt.Sprintf("%s set", e.Field)
			a.checkpoint()
		} else {
			a.status = fmt.Sprintf("%s unchanged", e.Field)
		}
		a.mode = modeCanvas
	case tcell.KeyEscape:
		a.mode = modeCanvas
		a.status = fmt.Sprintf("%s unchanged (%g)", e.Field, e.Cancel())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.Backspace()
	default:
		if r := ev.Rune(); r != 0 {
			e.Insert(r)
		}
	}
}

func arrowDelta(k tcell.Key) (float64, float64) {
	switch k {
	case tcell.KeyUp:
		return 0, -cellSize
	case tcell.KeyDown:
		return 0, cellSize
	case tcell.KeyLeft:
		return -cellSize, 0
	}
	return cellSize, 0
}

func fieldForKey(r rune) editor.Field {
	switch r {
	case 'X':
		return editor.FieldX
	case 'Y':
		return editor.FieldY
	case 'W':
		return editor.FieldWidth
	case 'H':
		return editor.FieldHeight
	}
	return editor.FieldRotation
}

func (a *app) alignForKey(r rune) {
	if len(a.sc.Selection()) < 2 {
		a.status = "select at least two entities to align"
		return
	}
	switch r {
	case '1':
		a.sc.AlignSelection(scene.Horizontal, scene.AlignStart)
	case '2':
		a.sc.AlignSelection(scene.Horizontal, scene.AlignCenter)
	case '3':
		a.sc.AlignSelection(scene.Horizontal, scene.AlignEnd)
	case '4':
		a.sc.AlignSelection(scene.Vertical, scene.AlignStart)
	case '5':
		a.sc.AlignSelection(scene.Vertical, scene.AlignCenter)
	case '6':
		a.sc.AlignSelection(scene.Vertical, scene.AlignEnd)
	default:
		return
	}
	a.checkpoint()
}

// distributeForKey and abutForKey checkpoint only when the operation
// can actually move something, keeping the undo history free of no-op
// states.
func (a *app) distributeForKey(axis scene.Axis) {
	if len(a.sc.Selection()) < 3 {
		a.status = "select at least three entities to distribute"
		return
	}
	a.sc.DistributeSelection(axis)
	a.checkpoint()
}

func (a *app) abutForKey(axis scene.Axis) {
	if len(a.sc.Selection()) < 2 {
		a.status = "select at least two entities to abut"
		return
	}
	a.sc.AbutSelection(axis)
	a.checkpoint()
}

func (a *app) placeShape(kind shape.Kind) {
	sh, err := shape.New(kind, a.cursor.X, a.cursor.Y, defaultShapeW, defaultShapeH, shape.DefaultStyle())
	if err != nil {
		a.status = err.Error()
		return
	}
	id := a.sc.AddShape(sh)
	a.sc.ClearSelection()
	a.sc.Select(id)
	a.status = fmt.Sprintf("placed %s #%d", kind, id)
	a.checkpoint()
}

// connectSelection joins exactly two selected box shapes with a bound
// connector.
func (a *app) connectSelection(kind shape.Kind) {
	sel := a.sc.Selection()
	if len(sel) != 2 {
		a.status = "select exactly two shapes to connect"
		return
	}
	id, err := a.sc.AutoConnect(sel[0], sel[1], kind)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.status = fmt.Sprintf("connected via #%d", id)
	a.checkpoint()
}

// singleShape returns the sole selected shape, or nil.
func (a *app) singleShape() *shape.Shape {
	sel := a.sc.Selection()
	if len(sel) != 1 {
		a.status = "select exactly one shape"
		return nil
	}
	sh, ok := a.sc.Shape(sel[0])
	if !ok {
		a.status = "groups have no editable fields"
		return nil
	}
	return sh
}

func (a *app) cycleSelection() {
	top := a.sc.TopLevel()
	if len(top) == 0 {
		return
	}
	sel := a.sc.Selection()
	next := top[0]
	if len(sel) == 1 {
		for i, id := range top {
			if id == a.sc.Root(sel[0]) {
				next = top[(i+1)%len(top)]
				break
			}
		}
	}
	a.sc.ClearSelection()
	a.sc.Select(next)
	a.status = fmt.Sprintf("selected #%d", next)
}

func (a *app) save() {
	path := a.path
	if path == "" {
		path = a.cfg.savePath("untitled.json")
		a.path = path
	}
	if err := saveDocument(a.sc, a.meta, path); err != nil {
		a.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	a.dirty = false
	a.status = fmt.Sprintf("saved %s", filepath.Base(path))
}

// cell maps a document point to a terminal cell. Vertical units double
// up because cells are taller than wide.
func (a *app) cell(p geometry.Point) (int, int) {
	return int(math.Round(p.X / cellSize)), int(math.Round(p.Y / (cellSize * 2)))
}

func (a *app) draw() {
	s := a.screen
	s.Clear()
	w, h := s.Size()

	f := render.Build(a.sc)
	for _, it := range f.Items {
		st := tcell.StyleDefault
		if it.Selected {
			st = st.Bold(true).Foreground(tcell.ColorYellow)
		}
		if it.Kind.IsLinear() {
			a.drawSegment(it, st, w, h)
		} else {
			a.drawOutline(it, st, w, h)
		}
		if it.Text != nil {
			a.drawLabel(it, st, w, h)
		}
	}

	if sel := a.sc.Selection(); len(sel) == 1 {
		if sh, ok := a.sc.Shape(sel[0]); ok {
			a.drawHandles(sh, w, h)
		}
	}

	// Cursor cell
	cx, cy := a.cell(a.cursor)
	if cx >= 0 && cx < w && cy >= 0 && cy < h-1 {
		s.SetContent(cx, cy, '+', nil, tcell.StyleDefault.Reverse(true))
	}

	a.drawStatus(w, h)
	s.Show()
}

// drawOutline plots the shape's resolved outline by sampling each
// edge, so rotation and skew survive the character projection.
func (a *app) drawOutline(it render.Item, st tcell.Style, w, h int) {
	pts := it.Outline
	for i := range pts {
		a.plotSegment(pts[i], pts[(i+1)%len(pts)], '·', st, w, h)
	}
}

// drawHandles overlays the manipulation handles of the sole selected
// shape. Linear kinds report none; their endpoints are the handles.
func (a *app) drawHandles(sh *shape.Shape, w, h int) {
	st := tcell.StyleDefault.Foreground(tcell.ColorAqua)
	for handle, p := range sh.HandlePositions() {
		r := '□'
		switch handle {
		case shape.HandleRotate:
			r = '↻'
		case shape.HandleSkew:
			r = '◇'
		}
		a.plotRune(p, r, st, w, h)
	}
}

func (a *app) drawSegment(it render.Item, st tcell.Style, w, h int) {
	a.plotSegment(it.A, it.B, '·', st, w, h)
	if it.Kind == shape.KindArrow || it.Kind == shape.KindBidiArrow {
		a.plotRune(it.B, arrowGlyph(it.A, it.B), st, w, h)
	}
	if it.Kind == shape.KindBidiArrow {
		a.plotRune(it.A, arrowGlyph(it.B, it.A), st, w, h)
	}
}

func (a *app) plotSegment(p, q geometry.Point, r rune, st tcell.Style, w, h int) {
	steps := int(p.Dist(q)/(cellSize/2)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pt := geometry.Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
		a.plotRune(pt, r, st, w, h)
	}
}

func (a *app) plotRune(p geometry.Point, r rune, st tcell.Style, w, h int) {
	x, y := a.cell(p)
	if x >= 0 && x < w && y >= 0 && y < h-1 {
		a.screen.SetContent(x, y, r, nil, st)
	}
}

func arrowGlyph(from, to geometry.Point) rune {
	dx, dy := to.X-from.X, to.Y-from.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return '▶'
		}
		return '◀'
	}
	if dy >= 0 {
		return '▼'
	}
	return '▲'
}

func (a *app) drawLabel(it render.Item, st tcell.Style, w, h int) {
	var b strings.Builder
	for _, run := range it.Text.Layout.Runs {
		b.WriteString(run.Text)
	}
	text := []rune(b.String())
	x, y := a.cell(it.Text.Center)
	x -= len(text) / 2
	for _, r := range text {
		if x >= 0 && x < w && y >= 0 && y < h-1 {
			a.screen.SetContent(x, y, r, nil, st)
		}
		x++
	}
}

func (a *app) drawStatus(w, h int) {
	line := a.statusLine()
	st := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len([]rune(line)) {
			r = []rune(line)[x]
		}
		a.screen.SetContent(x, h-1, r, nil, st)
	}
}

func (a *app) statusLine() string {
	name := a.path
	if name == "" {
		name = "[untitled]"
	}
	mark := ""
	if a.dirty {
		mark = "*"
	}
	switch a.mode {
	case modeText:
		return fmt.Sprintf(" label> %s", a.textEdit.Buffer())
	case modeField:
		return fmt.Sprintf(" %s> %s", a.fieldEdit.Field, a.fieldEdit.Buffer())
	case modeDrag:
		return " drag: arrows move, Enter commits, Esc cancels"
	}
	return fmt.Sprintf(" %s%s  sel:%d  %s", filepath.Base(name), mark, len(a.sc.Selection()), a.status)
}
