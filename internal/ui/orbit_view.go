package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/ephem"
	"github.com/litescript/ls-starmap/internal/state"
)

// orbitRefresh is how far simulated time may drift before heliocentric
// positions are recomputed. Mercury moves about 0.2° an hour.
const orbitRefresh = time.Hour

// orbitStarMag is the faintest star drawn behind the orbits.
const orbitStarMag = 3.5

// orbitZoomLevels are the discrete zoom steps.
var orbitZoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0}

// orbitZoomDefault is the index of 1x in orbitZoomLevels.
const orbitZoomDefault = 3

// orbitBody is a planet placed on the ecliptic plane.
type orbitBody struct {
	name  string
	pos   astro.Vec3 // heliocentric ecliptic, AU
	earth bool
}

func (b orbitBody) giant() bool {
	return b.pos.Norm() > 4
}

// orbitStar is a catalog star reduced to its ecliptic direction.
type orbitStar struct {
	lonDeg, latDeg float64
	mag            float64
}

// OrbitViewModel renders a top-down view of the planets around the Sun.
type OrbitViewModel struct {
	width  int
	height int

	at     time.Time
	bodies []orbitBody
	earth  astro.Vec3
	err    error

	catalogStars []catalog.Star
	stars        []orbitStar

	focusIdx   int // index into bodies, -1 for the Sun
	zoomLevel  int
	panX       float64 // display units
	panY       float64
	scaleMode  astro.ScaleMode
	labelMode  LabelMode
	userPanned bool // disables auto-centering on zoom
	showStars  bool
}

// NewOrbitViewModel creates an orbit view centred on the Sun.
func NewOrbitViewModel(cat *catalog.Catalog) OrbitViewModel {
	m := OrbitViewModel{
		focusIdx:  -1,
		zoomLevel: orbitZoomDefault,
		scaleMode: astro.ScaleLog,
		labelMode: LabelAll,
		showStars: true,
	}
	if cat != nil {
		m.catalogStars = cat.Brighter(orbitStarMag)
	}
	return m
}

func (m OrbitViewModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(orbitZoomLevels) {
		return 1
	}
	return orbitZoomLevels[m.zoomLevel]
}

func (m OrbitViewModel) projection() astro.ProjectionConfig {
	return astro.ProjectionConfig{Scale: m.scale(), Mode: m.scaleMode}
}

// SetSize updates the viewport size.
func (m OrbitViewModel) SetSize(width, height int) OrbitViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData recomputes heliocentric positions when simulated time has moved
// by orbitRefresh or more.
func (m OrbitViewModel) UpdateData(snapshot state.Snapshot) OrbitViewModel {
	if !m.at.IsZero() {
		d := snapshot.Time.Sub(m.at)
		if d < orbitRefresh && d > -orbitRefresh {
			return m
		}
	}
	m.at = snapshot.Time

	bodies, earth, err := heliocentricBodies(snapshot.Time)
	if err != nil {
		m.err = err
		m.bodies = nil
		m.focusIdx = -1
		return m
	}
	m.err = nil
	m.bodies = bodies
	m.earth = earth
	m.stars = eclipticStars(m.catalogStars, snapshot.Time)
	if m.focusIdx >= len(m.bodies) {
		m.focusIdx = -1
	}
	if !m.userPanned {
		m.centerOnFocused()
	}
	return m
}

// heliocentricBodies returns the planets in order from the Sun with Earth
// between Venus and Mars.
func heliocentricBodies(t time.Time) ([]orbitBody, astro.Vec3, error) {
	earth, err := ephem.EarthHeliocentric(t)
	if err != nil {
		return nil, astro.Vec3{}, err
	}

	var bodies []orbitBody
	for _, name := range ephem.PlanetNames() {
		pos, err := ephem.HeliocentricPosition(name, t)
		if err != nil {
			return nil, astro.Vec3{}, err
		}
		bodies = append(bodies, orbitBody{name: name, pos: pos})
		if name == "Venus" {
			bodies = append(bodies, orbitBody{name: "Earth", pos: earth, earth: true})
		}
	}
	return bodies, earth, nil
}

func eclipticStars(stars []catalog.Star, t time.Time) []orbitStar {
	eps := astro.MeanObliquity(t)
	out := make([]orbitStar, 0, len(stars))
	for _, s := range stars {
		v := astro.EquatorialToEcliptic(astro.VectorFromRADec(s.Equatorial(), 1), eps)
		out = append(out, orbitStar{
			lonDeg: astro.EclipticLongitude(v),
			latDeg: astro.EclipticLatitude(v),
			mag:    s.Magnitude,
		})
	}
	return out
}

// Update handles input messages. Zoom uses i/o since +/- drive the clock.
func (m OrbitViewModel) Update(msg tea.Msg) (OrbitViewModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	step := 0.1 / m.scale()
	switch key.String() {
	case "j", "[":
		m.focusStep(-1)
	case "k", "]":
		m.focusStep(1)

	case "up":
		m.panY -= step
		m.userPanned = true
	case "down":
		m.panY += step
		m.userPanned = true
	case "left":
		m.panX += step
		m.userPanned = true
	case "right":
		m.panX -= step
		m.userPanned = true
	case "c":
		m.panX, m.panY = 0, 0
		m.userPanned = false
	case "f":
		m.centerOnFocused()
		m.userPanned = false

	case "i":
		if m.zoomLevel < len(orbitZoomLevels)-1 {
			m.zoomLevel++
			m.recenter()
		}
	case "o":
		if m.zoomLevel > 0 {
			m.zoomLevel--
			m.recenter()
		}
	case "0":
		m.zoomLevel = orbitZoomDefault
		m.recenter()

	case "z":
		m.scaleMode = m.scaleMode.Next()
		m.recenter()
	case "l":
		m.labelMode = (m.labelMode + 1) % 3
	case "t":
		m.showStars = !m.showStars
	}
	return m, nil
}

// focusStep moves focus through Sun, Mercury ... Neptune, wrapping.
func (m *OrbitViewModel) focusStep(dir int) {
	if len(m.bodies) == 0 {
		return
	}
	n := len(m.bodies) + 1 // plus the Sun at -1
	m.focusIdx = (m.focusIdx+1+dir+n)%n - 1
	m.centerOnFocused()
	m.userPanned = false
}

func (m *OrbitViewModel) recenter() {
	if !m.userPanned {
		m.centerOnFocused()
	}
}

// centerOnFocused pans so the focused body sits at the screen centre.
func (m *OrbitViewModel) centerOnFocused() {
	if m.focusIdx < 0 || m.focusIdx >= len(m.bodies) {
		m.panX, m.panY = 0, 0
		return
	}
	proj := astro.ProjectEclipticTopDown(m.bodies[m.focusIdx].pos, m.projection())
	m.panX = -proj.X
	m.panY = -proj.Y
}

// FocusedName returns the focused body's name.
func (m OrbitViewModel) FocusedName() string {
	if m.focusIdx >= 0 && m.focusIdx < len(m.bodies) {
		return m.bodies[m.focusIdx].name
	}
	return "Sun"
}

// View renders the orbit view.
func (m OrbitViewModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Orbit view requires larger terminal"
	}
	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
		return errorStyle.Render("ERROR: " + m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderCanvas(), m.renderHUD())
}

// orbitMark is a drawn body, kept for label placement.
type orbitMark struct {
	x, y      int
	name      string
	isFocused bool
}

// canvasGeometry maps display units to cells. Rows are twice as tall as
// columns are wide, so y is halved.
type canvasGeometry struct {
	width, height    int
	originX, originY int
	cellsPerUnit     float64
}

func (g canvasGeometry) cell(p astro.ProjectedPoint) (x, y int, ok bool) {
	x = g.originX + int(math.Round(p.X*g.cellsPerUnit))
	y = g.originY - int(math.Round(p.Y*g.cellsPerUnit*0.5))
	return x, y, x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (m OrbitViewModel) geometry() canvasGeometry {
	w := m.width
	h := max(5, m.height-3)
	cx, cy := w/2, h/2

	// Neptune's orbit fills 90% of the smaller half-extent at 1x
	maxR := float64(min(cx, cy*2)) * 0.9
	cellsPerUnit := maxR / astro.ScaleRadius(30.5, m.scaleMode)

	return canvasGeometry{
		width:        w,
		height:       h,
		originX:      cx + int(math.Round(m.panX*cellsPerUnit)),
		originY:      cy - int(math.Round(m.panY*cellsPerUnit*0.5)),
		cellsPerUnit: cellsPerUnit,
	}
}

func (m OrbitViewModel) renderCanvas() string {
	g := m.geometry()
	grid := make([][]rune, g.height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", g.width))
	}

	if m.showStars {
		m.drawStarfield(grid, g)
	}

	cfg := m.projection()
	for _, b := range m.bodies {
		r := astro.ScaleRadius(math.Hypot(b.pos.X, b.pos.Y), cfg.Mode) * cfg.Scale * g.cellsPerUnit
		drawOrbitRing(grid, g.originX, g.originY, r)
	}

	var marks []orbitMark
	for i, b := range m.bodies {
		x, y, ok := g.cell(astro.ProjectEclipticTopDown(b.pos, cfg))
		if !ok {
			continue
		}
		focused := i == m.focusIdx
		grid[y][x] = orbitGlyph(b, focused)
		marks = append(marks, orbitMark{x: x, y: y, name: b.name, isFocused: focused})
	}

	// Sun last so it is never hidden
	if x, y, ok := g.cell(astro.ProjectedPoint{}); ok {
		grid[y][x] = glyphSun
		marks = append(marks, orbitMark{x: x, y: y, name: "Sun", isFocused: m.focusIdx == -1})
	}

	m.drawLabels(grid, marks)
	return renderOrbitGrid(grid)
}

// drawOrbitRing traces a circle of radius r cells around (cx, cy).
func drawOrbitRing(grid [][]rune, cx, cy int, r float64) {
	if r < 1 {
		return
	}
	h, w := len(grid), len(grid[0])
	steps := min(720, max(16, int(2*math.Pi*r)))
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(r*math.Cos(theta)))
		y := cy - int(math.Round(r*math.Sin(theta)*0.5))
		if x >= 0 && x < w && y >= 0 && y < h && grid[y][x] == ' ' {
			grid[y][x] = '·'
		}
	}
}

// drawStarfield places stars on a shell at the viewport edge, pulled inward
// by the cosine of their ecliptic latitude so polar stars sit near the centre.
func (m OrbitViewModel) drawStarfield(grid [][]rune, g canvasGeometry) {
	shell := float64(min(g.width/2, g.height)) * 0.98
	cx, cy := g.width/2, g.height/2
	for _, s := range m.stars {
		r := shell * math.Cos(s.latDeg*math.Pi/180)
		lon := s.lonDeg * math.Pi / 180
		x := cx + int(math.Round(r*math.Cos(lon)))
		y := cy - int(math.Round(r*math.Sin(lon)*0.5))
		if x < 0 || x >= g.width || y < 0 || y >= g.height || grid[y][x] != ' ' {
			continue
		}
		if glyph := orbitStarGlyph(s.mag); glyph != ' ' {
			grid[y][x] = glyph
		}
	}
}

// orbitStarGlyph is deliberately fainter than the sky view's star glyphs.
func orbitStarGlyph(mag float64) rune {
	switch {
	case mag <= 1.0:
		return '∗'
	case mag <= 2.5:
		return '˙'
	case mag <= orbitStarMag:
		return '.'
	default:
		return ' '
	}
}

func orbitGlyph(b orbitBody, focused bool) rune {
	switch {
	case b.earth && focused:
		return '◉'
	case b.earth:
		return '⊕'
	case b.giant() && focused:
		return '◉'
	case b.giant():
		return '○'
	case focused:
		return '●'
	default:
		return '•'
	}
}

func (m OrbitViewModel) drawLabels(grid [][]rune, marks []orbitMark) {
	if m.labelMode == LabelNone {
		return
	}
	for _, mark := range marks {
		if m.labelMode == LabelFocused && !mark.isFocused {
			continue
		}
		text := mark.name
		if mark.isFocused {
			text = "◄ " + text
		}
		row := grid[mark.y]
		x := mark.x + 2
		for _, r := range text {
			if x >= len(row) {
				break
			}
			if row[x] == ' ' || row[x] == '·' || row[x] == '.' || row[x] == '˙' {
				row[x] = r
			}
			x++
		}
	}
}

func renderOrbitGrid(grid [][]rune) string {
	ringStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	starStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	sunStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	planetStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	giantStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	earthStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorBodyFocused)).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))

	var b strings.Builder
	for _, row := range grid {
		for _, ch := range row {
			var style lipgloss.Style
			switch ch {
			case ' ':
				b.WriteRune(ch)
				continue
			case '·':
				style = ringStyle
			case '∗', '˙', '.':
				style = starStyle
			case glyphSun:
				style = sunStyle
			case '•':
				style = planetStyle
			case '○':
				style = giantStyle
			case '⊕':
				style = earthStyle
			case '●', '◉', '◄':
				style = focusStyle
			default:
				style = labelStyle
			}
			b.WriteString(style.Render(string(ch)))
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (m OrbitViewModel) renderHUD() string {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	var b strings.Builder
	if m.focusIdx >= 0 && m.focusIdx < len(m.bodies) {
		body := m.bodies[m.focusIdx]
		b.WriteString(headerStyle.Render("◆ " + body.name))
		b.WriteString(dimStyle.Render("  r "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.3f AU", body.pos.Norm())))
		if !body.earth {
			d := body.pos.Sub(m.earth).Norm()
			b.WriteString(dimStyle.Render("  from Earth "))
			b.WriteString(valueStyle.Render(fmt.Sprintf("%.3f AU (%s)", d, astro.FormatLightTime(astro.LightTimeFromAU(d)))))
		}
		b.WriteString(dimStyle.Render("  ecl "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f° %+.1f°", astro.EclipticLongitude(body.pos), astro.EclipticLatitude(body.pos))))
	} else {
		b.WriteString(headerStyle.Render("☉ Sun"))
		b.WriteString(dimStyle.Render("  heliocentric ecliptic, J2000"))
	}
	b.WriteString("\n")

	labels := [...]string{"off", "focus", "all"}
	stars := "off"
	if m.showStars {
		stars = "on"
	}
	b.WriteString(dimStyle.Render("Mode:") + valueStyle.Render(m.scaleMode.String()) + "  ")
	b.WriteString(dimStyle.Render("Zoom:") + valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())) + "  ")
	b.WriteString(dimStyle.Render("Labels:") + valueStyle.Render(labels[m.labelMode]) + "  ")
	b.WriteString(dimStyle.Render("Stars:") + valueStyle.Render(stars))
	if !m.at.IsZero() {
		b.WriteString(dimStyle.Render("  " + m.at.UTC().Format("2006-01-02 15:04 UTC")))
	}
	return b.String()
}
