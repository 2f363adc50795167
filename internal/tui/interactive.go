package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var presetInfo = map[string]string{
	"drop":         "one box in free fall",
	"verlet-drop":  "free fall, position verlet",
	"spin":         "torque-free spin, no gravity",
	"cloud":        "fifty bodies thrown upwards",
	"orbit-kick":   "two bodies and timed impulses",
	"hover":        "pid holds a box against gravity",
	"station-keep": "lqr pulls a drifting box home",
}

type state int

const (
	stateMenu state = iota
	stateSim
)

type model struct {
	state   state
	cursor  int
	presets []string

	selected string
	cfg      *config.Config
	runner   *sim.Runner
	err      error

	paused   bool
	done     bool
	speed    float64
	plane    Plane
	cam      Camera
	interval time.Duration
	history  []float64

	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func newModel(fps int) model {
	if fps <= 0 {
		fps = 60
	}
	return model{
		state:    stateMenu,
		presets:  config.ListPresets(),
		speed:    1.0,
		cam:      NewCamera(),
		interval: time.Second / time.Duration(fps),
		history:  make([]float64, 0, 120),
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	if m.state == stateSim {
		return m.tick()
	}
	return nil
}

type tickMsg time.Time

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if !m.paused && !m.done && m.runner != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance steps the runner by one frame worth of simulated time, scaled by
// speed.
func (m *model) advance() {
	frame := m.interval.Seconds() * m.speed
	steps := max(int(math.Round(frame/m.cfg.Dt)), 1)
	for i := 0; i < steps; i++ {
		if m.runner.Time() >= m.cfg.Duration-m.cfg.Dt/2 {
			m.done = true
			break
		}
		if err := m.runner.Step(m.cfg.Dt); err != nil {
			m.err = err
		}
	}

	ke := metrics.KineticEnergyOf(m.runner.World().Data())
	m.history = append(m.history, ke)
	if len(m.history) > 120 {
		m.history = m.history[1:]
	}
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.start()
		if m.err != nil {
			return m, nil
		}
		return m, tea.Batch(tea.ClearScreen, m.tick())
	}
	return m, nil
}

const orbitStep = math.Pi / 24

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
		m.runner = nil
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.start()
		return m, tea.ClearScreen
	case "v":
		m.plane = m.plane.Next()
	case "left", "h":
		m.cam.Orbit(0, -orbitStep)
	case "right", "l":
		m.cam.Orbit(0, orbitStep)
	case "up", "k":
		m.cam.Orbit(orbitStep, 0)
	case "down", "j":
		m.cam.Orbit(-orbitStep, 0)
	case "]":
		m.cam.ZoomIn()
	case "[":
		m.cam.ZoomOut()
	case "+", "=":
		m.speed = math.Min(m.speed*2, 16)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) start() {
	m.err = nil
	cfg := config.GetPreset(m.selected)
	if cfg == nil {
		m.err = fmt.Errorf("unknown preset: %s", m.selected)
		return
	}
	r, err := cfg.NewRunner()
	if err != nil {
		m.err = err
		return
	}
	r.SetGravity(cfg.Gravity.Vec3())

	m.cfg = cfg
	m.runner = r
	m.state = stateSim
	m.paused = false
	m.done = false
	m.history = m.history[:0]
	m.lastFrame = time.Time{}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("r i g i d s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-14s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-14s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m model) viewSim() string {
	cw := max(m.width-6, 50)
	ch := max(m.height-12, 12)

	st := m.runner.World().Data()
	pos := st.Positions().Slice()

	c := newCanvas(cw, ch)
	proj := Projector{Plane: m.plane, W: cw, H: ch, Camera: &m.cam}
	proj.Fit(pos)
	drawBodies(c, &proj, pos, st.Orientations().Slice(), st.ActiveFlags().Slice())

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case m.done:
		statusIcon = dim.Render("■")
		statusText = dim.Render("done")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.selected), statusText, dim.Render(fmt.Sprintf("%s  x%.2g", m.plane, m.speed))))

	t := m.runner.Time()
	progress := math.Min(t/m.cfg.Duration, 1)
	barWidth := 36
	filled := int(progress * float64(barWidth))
	timeStr := fmt.Sprintf("%.1fs/%.0fs", t, m.cfg.Duration)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(timeStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	for _, row := range c.rows() {
		b.WriteString("   " + row + "\n")
	}

	ke := metrics.KineticEnergyOf(st)
	pe := metrics.PotentialEnergyOf(st, m.cfg.Gravity.Vec3())
	b.WriteString(energyBar(ke, pe))

	com := centroid(pos)
	b.WriteString(fmt.Sprintf("   %s%s  %s%s\n",
		dim.Render("bodies="), white.Render(fmt.Sprintf("%d", len(pos))),
		dim.Render("centroid="), white.Render(fmt.Sprintf("(%.2f %.2f %.2f)", com.X, com.Y, com.Z))))

	if len(m.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("KE"), magenta.Render(sparkline(m.history, 24))))
	}
	if m.err != nil {
		b.WriteString("   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  v view  ←↑↓→ orbit  [] zoom  r reset  q menu") + "\n")

	return b.String()
}

func energyBar(ke, pe float64) string {
	total := ke + math.Abs(pe)
	if total <= 0 {
		return ""
	}
	energyWidth := 20
	keBar := int(ke / total * float64(energyWidth))
	peBar := energyWidth - keBar
	return fmt.Sprintf("\n   energy %s%s  %s %.1f  %s %.1f\n",
		green.Render(strings.Repeat("█", keBar)),
		yellow.Render(strings.Repeat("█", peBar)),
		green.Render("KE"), ke,
		yellow.Render("PE"), pe)
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := max(len(data)/width, 1)
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := min(max(int((v-minVal)/rang*7), 0), 7)
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// RunInteractive opens the full-screen view. With a preset name it starts
// that scenario directly instead of showing the menu.
func RunInteractive(preset string, fps int) error {
	m := newModel(fps)
	if preset != "" {
		m.selected = preset
		m.start()
		if m.err != nil {
			return m.err
		}
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
