package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kapitza/internal/analysis"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
	energyWindow = 300
)

type TickMsg time.Time

// Player is a bubbletea model stepping through the frames of an
// animation. Playback loops back to frame 0 at the end.
type Player struct {
	anim     *analysis.Animation
	method   string
	scene    *Scene
	index    int
	running  bool
	fps      int
	theme    Theme
	showHelp bool
}

// NewPlayer prepares playback of anim at fps frames per second. length
// sizes the view and history bounds the bob trail.
func NewPlayer(anim *analysis.Animation, method string, length float64, history, fps int) Player {
	if fps <= 0 {
		fps = 50
	}
	p := Player{
		anim:    anim,
		method:  method,
		scene:   NewScene(canvasWidth, canvasHeight, length, history),
		running: true,
		fps:     fps,
		theme:   Themes[0],
	}
	p.render()
	return p
}

func (p Player) WithTheme(name string) Player {
	p.theme = GetTheme(name)
	return p
}

// Index is the frame currently on screen.
func (p Player) Index() int { return p.index }

func (p Player) Running() bool { return p.running }

func (p Player) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(p.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p Player) Init() tea.Cmd {
	return p.tick()
}

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case " ":
			p.running = !p.running
		case "r":
			p.seek(0)
		case "[":
			p.running = false
			p.seek(p.index - 1)
		case "]":
			p.running = false
			p.seek(p.index + 1)
		case "t":
			p.theme = NextTheme(p.theme)
		case "?":
			p.showHelp = !p.showHelp
		}
	case TickMsg:
		if p.running {
			p.seek(p.index + 1)
		}
		return p, p.tick()
	}
	return p, nil
}

// seek moves to frame i, wrapping at both ends.
func (p *Player) seek(i int) {
	n := p.anim.Len()
	p.index = ((i % n) + n) % n
	p.render()
}

func (p *Player) render() {
	f, err := p.anim.Frame(p.index)
	if err != nil {
		return
	}
	p.scene.Render(f)
}

func (p Player) View() string {
	st := newStyles(p.theme)
	f, _ := p.anim.Frame(p.index)

	var s strings.Builder
	s.WriteString(st.header.Render("KAPITZA PENDULUM") + "\n")
	if p.running {
		s.WriteString(st.running.Render("PLAYING") + "\n\n")
	} else {
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	s.WriteString(st.row("Method", p.method))
	s.WriteString(st.row("Time", fmt.Sprintf("time = %.1fs", f.Time)))
	s.WriteString(st.row("Frame", fmt.Sprintf("%d/%d", p.index+1, p.anim.Len())))
	s.WriteString(st.row("Phase", fmt.Sprintf("%+.3f π", f.Phase)))
	s.WriteString(st.row("Bob", fmt.Sprintf("(%.3f, %.3f)", f.Bob.X, f.Bob.Y)))
	s.WriteString(st.row("Pivot", fmt.Sprintf("%.4f", f.Pivot.Y)))
	s.WriteString(st.row("Trail", fmt.Sprintf("%d/%d", p.scene.Trail.Len(), p.scene.Trail.Cap())))
	s.WriteString(ProgressBar(float64(p.index+1)/float64(p.anim.Len()), 30) + "\n")

	if window := p.energyWindow(); len(window) > 1 {
		chart := asciigraph.Plot(window, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Potential Energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	if p.showHelp {
		s.WriteString(st.help.Render("Space  pause/resume\nR      restart\n[ ]    step back/forward\nT      cycle theme\n?      toggle help\nQ      quit"))
	} else {
		s.WriteString(st.help.Render("SP:Pause R:Restart Q:Quit\n[ ]:Step T:Theme ?:Help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		st.canvas.Render(p.scene.Canvas.String()),
		st.panel.Render(s.String()),
	)
}

// energyWindow is the potential energy over the frames leading up to the
// current one.
func (p Player) energyWindow() []float64 {
	pot := p.anim.Series().Potential
	from := p.index + 1 - energyWindow
	if from < 0 {
		from = 0
	}
	return pot[from : p.index+1]
}

// Play runs the player full-screen until the user quits.
func Play(p Player) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
