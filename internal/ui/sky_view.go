package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/almanac"
	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/ephem"
	"github.com/litescript/ls-starmap/internal/state"
)

const (
	// Field of view in degrees
	fovAz = 120.0 // horizontal FOV
	fovEl = 60.0  // vertical FOV

	// Camera pan steps
	panAz = 10.0
	panEl = 5.0

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Ecliptic sampling step in degrees of longitude
	eclipticStep = 2.0

	// Body glyphs
	glyphPlanet  = '●'
	glyphSun     = '☉'
	glyphMoon    = '☾'
	glyphFocused = '◆'
	glyphEcl     = '·'

	colorBodyLabel   = "#d0c8ff"
	colorBodyFocused = "229" // bright gold
	colorEcliptic    = "94"  // dim amber

	// Star glyphs by magnitude
	glyphStarBright  = '✶' // mag < 1.5
	glyphStarMedium  = '✸' // mag 1.5-3.0
	glyphStarDim     = '·' // mag 3.0-4.0
	glyphStarVeryDim = '·' // mag > 4.0

	// Star colors (grayscale to not compete with the bodies)
	colorStarBright  = "255" // bright white
	colorStarMedium  = "250" // medium gray
	colorStarDim     = "244" // dim gray
	colorStarVeryDim = "240" // very dim gray
)

// bodyColors tints each solar-system body.
var bodyColors = map[string]lipgloss.Color{
	"Sun":     "220",
	"Moon":    "255",
	"Mercury": "245",
	"Venus":   "230",
	"Mars":    "203",
	"Jupiter": "223",
	"Saturn":  "180",
	"Uranus":  "117",
	"Neptune": "69",
}

// LabelMode controls how body labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused body
	LabelAll                      // All bodies
)

// SkyViewModel renders the sky dome with stars, the ecliptic and the
// solar-system bodies.
type SkyViewModel struct {
	width  int
	height int

	// Camera position (center of view)
	camAz float64
	camEl float64

	// Animation state
	animating   bool
	animStartAz float64
	animStartEl float64
	animTargAz  float64
	animTargEl  float64
	animStart   time.Time

	// Focus is kept by name so it survives bodies rising and setting.
	focusName string
	tracking  bool // camera follows the focused body

	// Latest frame
	at       time.Time
	observer astro.Observer
	bodies   []state.BodyState
	ecliptic []astro.Equatorial

	labelMode LabelMode

	// Stars bright enough to draw, filtered once
	stars []catalog.Star
}

// NewSkyViewModel creates a sky view drawing stars down to magLimit.
func NewSkyViewModel(cat *catalog.Catalog, magLimit float64, labels bool) SkyViewModel {
	m := SkyViewModel{
		camAz:     180,
		camEl:     fovEl / 2,
		labelMode: LabelFocused,
	}
	if labels {
		m.labelMode = LabelAll
	}
	if cat != nil {
		m.stars = cat.Brighter(magLimit)
	}
	return m
}

// SetSize updates the viewport size.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with a new frame.
func (m SkyViewModel) UpdateData(snapshot state.Snapshot) SkyViewModel {
	// The obliquity drifts by arcseconds per century, so the curve only
	// needs resampling when the date changes.
	if len(m.ecliptic) == 0 || snapshot.Time.YearDay() != m.at.YearDay() || snapshot.Time.Year() != m.at.Year() {
		m.ecliptic = ephem.EclipticPath(snapshot.Time, eclipticStep)
	}

	m.at = snapshot.Time
	m.observer = snapshot.Observer
	m.bodies = snapshot.Bodies

	// Drop focus when the body has set
	if m.focusName != "" {
		if b, ok := m.body(m.focusName); !ok || !b.Horizontal.Visible() {
			m.focusName = ""
			m.tracking = false
		}
	}

	// If not animating, keep the camera on the tracked body
	if m.tracking && !m.animating {
		if b, ok := m.body(m.focusName); ok {
			m.camAz = b.Horizontal.AzDeg
			m.camEl = clampCamEl(b.Horizontal.AltDeg)
		}
	}

	return m
}

// body returns the named body from the latest frame.
func (m SkyViewModel) body(name string) (state.BodyState, bool) {
	for _, b := range m.bodies {
		if b.Name == name {
			return b, true
		}
	}
	return state.BodyState{}, false
}

// visibleBodies returns the bodies currently above the horizon, in frame order.
func (m SkyViewModel) visibleBodies() []state.BodyState {
	var out []state.BodyState
	for _, b := range m.bodies {
		if b.Horizontal.Visible() {
			out = append(out, b)
		}
	}
	return out
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left":
			m = m.pan(-panAz, 0)
		case "right":
			m = m.pan(panAz, 0)
		case "up":
			m = m.pan(0, panEl)
		case "down":
			m = m.pan(0, -panEl)
		case "j":
			return m.focusNext()
		case "k":
			return m.focusPrev()
		case "l":
			m = m.cycleLabelMode()
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

// pan moves the camera by hand and stops tracking.
func (m SkyViewModel) pan(dAz, dEl float64) SkyViewModel {
	m.animating = false
	m.tracking = false
	m.camAz = astro.NormalizeDegrees(m.camAz + dAz)
	m.camEl = clampCamEl(m.camEl + dEl)
	return m
}

// clampCamEl keeps the horizon at or below the bottom of the view.
func clampCamEl(el float64) float64 {
	return math.Max(fovEl/2, math.Min(90, el))
}

func (m SkyViewModel) cycleLabelMode() SkyViewModel {
	m.labelMode = (m.labelMode + 1) % 3
	return m
}

func (m SkyViewModel) focusNext() (SkyViewModel, tea.Cmd) {
	return m.focusStep(1)
}

func (m SkyViewModel) focusPrev() (SkyViewModel, tea.Cmd) {
	return m.focusStep(-1)
}

func (m SkyViewModel) focusStep(dir int) (SkyViewModel, tea.Cmd) {
	visible := m.visibleBodies()
	if len(visible) == 0 {
		return m, nil
	}

	idx := -1
	for i, b := range visible {
		if b.Name == m.focusName {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && dir < 0:
		idx = len(visible) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + dir + len(visible)) % len(visible)
	}

	m.focusName = visible[idx].Name
	return m.startAnimation()
}

func (m SkyViewModel) startAnimation() (SkyViewModel, tea.Cmd) {
	b, ok := m.body(m.focusName)
	if !ok {
		return m, nil
	}

	m.tracking = true
	m.animating = true
	m.animStartAz = m.camAz
	m.animStartEl = m.camEl
	m.animTargAz = b.Horizontal.AzDeg
	m.animTargEl = clampCamEl(b.Horizontal.AltDeg)
	m.animStart = time.Now()

	return m, animTick()
}

func (m SkyViewModel) updateAnimation() (SkyViewModel, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		// Animation complete
		m.animating = false
		m.camAz = astro.NormalizeDegrees(m.animTargAz)
		m.camEl = m.animTargEl
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	// Interpolate azimuth with wrap-around handling
	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)
	m.camEl = lerp(m.animStartEl, m.animTargEl, t)

	return m, animTick()
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Sky view requires larger terminal"
	}

	// Reserve lines for header and status
	viewHeight := m.height - 4
	viewWidth := m.width

	canvas := m.renderSkyCanvas(viewWidth, viewHeight)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(canvas)
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m SkyViewModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")) // violet
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))               // muted purple
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorBodyLabel))  // soft purple

	title := titleStyle.Render("Sky View")

	site := m.observer.Name
	if site == "" {
		site = fmt.Sprintf("%.2f, %.2f", m.observer.LatDeg, m.observer.LonDeg)
	}

	var labelStr string
	switch m.labelMode {
	case LabelNone:
		labelStr = dimStyle.Render("Labels: off")
	case LabelFocused:
		labelStr = accentStyle.Render("Labels: focus")
	case LabelAll:
		labelStr = accentStyle.Render("Labels: all")
	}

	compass := dimStyle.Render(fmt.Sprintf("Az:%.0f° El:%.0f°", m.camAz, m.camEl))
	if m.tracking {
		compass += accentStyle.Render(" tracking")
	}

	return fmt.Sprintf("%s | %s | %s | %s", title, accentStyle.Render(site), labelStr, compass)
}

func (m SkyViewModel) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	if m.focusName == "" {
		n := len(m.visibleBodies())
		if n == 0 {
			return dimStyle.Render("No solar-system bodies above the horizon")
		}
		return dimStyle.Render(fmt.Sprintf("%d bodies above the horizon | j/k to focus", n))
	}

	b, ok := m.body(m.focusName)
	if !ok {
		return ""
	}
	pos := b.Position

	line1 := fmt.Sprintf(">>> %s | Az:%.0f° %s El:%.0f° | mag %.1f | %.3f AU",
		b.Name,
		b.Horizontal.AzDeg,
		astro.FormatAzimuth(b.Horizontal.AzDeg),
		b.Horizontal.AltDeg,
		pos.Magnitude,
		pos.Position.DistanceAU,
	)

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorBodyFocused))
	status := accentStyle.Render(line1)

	line2 := fmt.Sprintf("    RA %s  Dec %s", astro.FormatRA(pos.Position.RAHours), astro.FormatDec(pos.Position.DecDeg))
	if b.Kind != almanac.KindSun {
		line2 += fmt.Sprintf("  %.0f%% lit  elong %.0f°", pos.Phase*100, pos.Elongation)
	}
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorBodyLabel))
	status += "\n" + labelStyle.Render(line2)

	return status
}

// bodyPos tracks a body's screen position for label rendering
type bodyPos struct {
	x, y       int
	name       string
	isFocused  bool
	labelStart int // calculated label start position
	labelEnd   int // calculated label end position
}

func (m SkyViewModel) renderSkyCanvas(width, height int) string {
	// Initialize canvas with empty space (very dark background)
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = "236" // very dark background
		}
	}

	horizonY := m.horizonRow(width, height)

	// Ecliptic first so stars and bodies draw over it
	for _, eq := range m.ecliptic {
		m.plot(canvas, colors, width, horizonY, eq, glyphEcl, colorEcliptic)
	}

	for _, star := range m.stars {
		glyph, color := m.starGlyph(star.Magnitude)
		m.plot(canvas, colors, width, horizonY, star.Equatorial(), glyph, color)
	}

	// Draw horizon line (purple tint)
	for x := 0; x < width; x++ {
		canvas[horizonY][x] = '─'
		colors[horizonY][x] = "60" // muted purple
	}

	// Draw cardinal directions on horizon
	m.drawCardinal(canvas, colors, width, horizonY, "N", 0)
	m.drawCardinal(canvas, colors, width, horizonY, "E", 90)
	m.drawCardinal(canvas, colors, width, horizonY, "S", 180)
	m.drawCardinal(canvas, colors, width, horizonY, "W", 270)

	// Collect body positions for label rendering
	var positions []bodyPos

	for _, b := range m.bodies {
		if !b.Horizontal.Visible() {
			continue
		}
		x, y, visible := m.projectToScreen(b.Horizontal.AzDeg, b.Horizontal.AltDeg, width, height)
		if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
			continue
		}

		isFocused := b.Name == m.focusName
		sym, color := bodyGlyph(b)
		if isFocused {
			sym = glyphFocused
			color = colorBodyFocused
		}

		canvas[y][x] = sym
		colors[y][x] = color

		positions = append(positions, bodyPos{
			x:         x,
			y:         y,
			name:      b.Name,
			isFocused: isFocused,
		})
	}

	m.renderLabels(canvas, colors, width, horizonY, positions)

	// Observer marker at bottom center
	stationX := width / 2
	stationY := height - 1
	if stationY > horizonY && stationX >= 0 && stationX < width {
		canvas[stationY][stationX] = '▲'
		colors[stationY][stationX] = "46"
	}

	// Render canvas to string
	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// horizonRow returns the canvas row for altitude zero, pinned to the
// bottom of the sky area when the camera looks higher.
func (m SkyViewModel) horizonRow(width, height int) int {
	bottom := height - 2
	y := int((fovEl/2 + m.camEl) / fovEl * float64(bottom))
	return max(0, min(bottom, y))
}

// plot converts eq to the current frame and draws glyph when it lands in
// the sky area.
func (m SkyViewModel) plot(canvas [][]rune, colors [][]lipgloss.Color, width, horizonY int, eq astro.Equatorial, glyph rune, color lipgloss.Color) {
	hz, err := astro.EquatorialToHorizontal(eq, m.observer, m.at)
	if err != nil || hz.AltDeg <= 0 {
		return
	}
	x, y, visible := m.projectToScreen(hz.AzDeg, hz.AltDeg, width, len(canvas))
	if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
		return
	}
	canvas[y][x] = glyph
	colors[y][x] = color
}

// bodyGlyph returns the glyph and color for a solar-system body.
func bodyGlyph(b state.BodyState) (rune, lipgloss.Color) {
	color, ok := bodyColors[b.Name]
	if !ok {
		color = colorBodyLabel
	}
	switch b.Kind {
	case almanac.KindSun:
		return glyphSun, color
	case almanac.KindMoon:
		return glyphMoon, color
	default:
		return glyphPlanet, color
	}
}

// renderLabels draws body labels on the canvas based on label mode.
// Focused body labels take priority in overlapping regions.
func (m SkyViewModel) renderLabels(canvas [][]rune, colors [][]lipgloss.Color, width, horizonY int, positions []bodyPos) {
	if m.labelMode == LabelNone || len(positions) == 0 {
		return
	}

	// Label starts 2 chars after the glyph; focused labels carry a "◄ " prefix
	for i := range positions {
		pos := &positions[i]
		pos.labelStart = pos.x + 2
		labelLen := len([]rune(pos.name))
		if pos.isFocused {
			labelLen += 2
		}
		pos.labelEnd = pos.labelStart + labelLen
	}

	// x positions on each row claimed by the focused label
	focusedClaims := make(map[int]map[int]bool) // y -> x -> claimed

	for _, pos := range positions {
		if !pos.isFocused {
			continue
		}
		if focusedClaims[pos.y] == nil {
			focusedClaims[pos.y] = make(map[int]bool)
		}
		for x := pos.labelStart; x < pos.labelEnd; x++ {
			focusedClaims[pos.y][x] = true
		}
	}

	for _, pos := range positions {
		showLabel := false
		switch m.labelMode {
		case LabelFocused:
			showLabel = pos.isFocused
		case LabelAll:
			showLabel = true
		}

		if !showLabel {
			continue
		}

		labelColor := lipgloss.Color(colorBodyLabel)
		labelText := pos.name
		if pos.isFocused {
			labelColor = colorBodyFocused
			labelText = "◄ " + pos.name
		}

		for i, r := range []rune(labelText) {
			x := pos.labelStart + i

			if x < 0 || x >= width || pos.y < 0 || pos.y >= horizonY {
				continue
			}
			if !pos.isFocused && focusedClaims[pos.y][x] {
				continue
			}

			canvas[pos.y][x] = r
			colors[pos.y][x] = labelColor
		}
	}
}

// starGlyph returns the appropriate glyph and color for a star based on its magnitude.
// Brighter stars (lower magnitude) get more prominent symbols.
func (m SkyViewModel) starGlyph(mag float64) (rune, lipgloss.Color) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	case mag < 3.0:
		return glyphStarMedium, colorStarMedium
	case mag < 4.0:
		return glyphStarDim, colorStarDim
	default:
		return glyphStarVeryDim, colorStarVeryDim
	}
}

func (m SkyViewModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, y int, label string, az float64) {
	x, _, visible := m.projectToScreen(az, m.camEl, width, len(canvas))
	if !visible {
		return
	}

	if x >= 0 && x < width && y >= 0 && y < len(canvas) {
		canvas[y][x] = rune(label[0])
		colors[y][x] = "252"
	}
}

// projectToScreen converts az/el to screen coordinates relative to camera
func (m SkyViewModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	// Calculate angular offset from camera center
	dAz := normalizeAngle(az - m.camAz)
	dEl := el - m.camEl

	// Check if within FOV
	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if dEl < -fovEl/2 || dEl > fovEl/2 {
		return 0, 0, false
	}

	// X: -fovAz/2..+fovAz/2 -> 0..width
	// Y: +fovEl/2..-fovEl/2 -> 0..height-2 (higher el = higher on screen)
	bottom := height - 2

	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl/2 - dEl) / fovEl * float64(bottom))

	return x, y, true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Init returns nil cmd
func (m SkyViewModel) Init() tea.Cmd {
	return nil
}
