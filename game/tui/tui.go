// Package tui is the manual-play driver: a bubbletea program that maps keys
// to moves and bypasses the agent.
package tui

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/render"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
)

const help = "arrows or w/a/s/d to move, r to restart, q to quit"

// Model is the bubbletea model of one manual game.
type Model struct {
	cfg      engine.GameConfig
	rng      *rand.Rand
	sess     *session.Session
	renderer *render.Renderer
	message  string
}

// New starts a fresh game.
func New(cfg engine.GameConfig, rng *rand.Rand, renderer *render.Renderer) (Model, error) {
	sess, err := session.New(cfg, nil, rng)
	if err != nil {
		return Model{}, err
	}
	return newModel(cfg, rng, sess, renderer), nil
}

func newModel(cfg engine.GameConfig, rng *rand.Rand, sess *session.Session, renderer *render.Renderer) Model {
	if renderer == nil {
		renderer = render.New(false)
	}
	return Model{
		cfg:      cfg,
		rng:      rng,
		sess:     sess,
		renderer: renderer,
	}
}

// Result returns the state of the game shown by the model
func (m Model) Result() session.Result {
	return m.sess.Result()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		sess, err := session.New(m.cfg, nil, m.rng)
		if err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.sess = sess
		m.message = "new game"
		return m, nil
	}

	dir, err := engine.ParseDirection(key.String())
	if err != nil {
		m.message = fmt.Sprintf("unknown key %q", key.String())
		return m, nil
	}
	if m.sess.Finished() {
		m.message = "game is over, press r to restart"
		return m, nil
	}

	moved, err := m.sess.Step(dir)
	switch {
	case err != nil:
		m.message = err.Error()
	case !moved:
		m.message = fmt.Sprintf("%s does not change the board", dir)
	default:
		m.message = ""
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.renderer.State(m.sess.State()))
	sb.WriteString(fmt.Sprintf("turn %d, goal %d\n", m.sess.Turns(), m.cfg.Goal))

	if m.sess.Finished() {
		res := m.sess.Result()
		if res.Won {
			sb.WriteString(fmt.Sprintf("You won! (%s)\n", res.Reason))
		} else {
			sb.WriteString(fmt.Sprintf("Game over (%s)\n", res.Reason))
		}
	} else if m.sess.Status() == session.StatusWon {
		sb.WriteString("Goal reached, keep going!\n")
	}
	if m.message != "" {
		sb.WriteString(m.message + "\n")
	}
	sb.WriteString("\n" + help + "\n")
	return sb.String()
}

// Run plays a manual game in the terminal until the player quits.
func Run(ctx context.Context, cfg engine.GameConfig, rng *rand.Rand, renderer *render.Renderer) (session.Result, error) {
	m, err := New(cfg, rng, renderer)
	if err != nil {
		return session.Result{}, err
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return m.Result(), fmt.Errorf("run terminal ui: %w", err)
	}
	return final.(Model).Result(), nil
}
