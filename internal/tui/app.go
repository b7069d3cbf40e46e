package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jfmyers9/speedrun/internal/client"
	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"
)

// maxNameWidth bounds artist names on the path line
const maxNameWidth = 24

const helpText = "[gray]s:start  enter:pick  1-9:back to guess  r:reset  q:quit[-]"

// Player is the game API the TUI drives
type Player interface {
	Start(ctx context.Context) (*game.Response, error)
	Guess(ctx context.Context, req game.GuessRequest) (*game.Response, error)
}

// Config holds TUI configuration options
type Config struct {
	RefreshRate    time.Duration // How often the timer is redrawn
	RequestTimeout time.Duration // Bound on each request to the server
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate:    100 * time.Millisecond,
		RequestTimeout: 30 * time.Second,
	}
}

// App is the terminal game UI
type App struct {
	app     *tview.Application
	timer   *tview.TextView
	header  *tview.TextView
	related *tview.List
	path    *tview.TextView
	status  *tview.TextView

	config  Config
	player  Player
	session *client.Session

	// busy is set while a request is in flight; input is ignored meanwhile
	mu      sync.Mutex
	busy    bool
	message string

	// Last-rendered content for change detection
	lastTimer string

	cancelFunc context.CancelFunc
}

// New creates a new TUI application driving player
func New(player Player, cfg Config) *App {
	a := &App{
		app:     tview.NewApplication(),
		config:  cfg,
		player:  player,
		session: client.NewSession(),
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	a.timer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.timer.SetBorder(true)

	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	a.related = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	a.related.SetBorder(true).
		SetTitle(" Related Artists ").
		SetTitleAlign(tview.AlignLeft)

	a.path = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetTextAlign(tview.AlignCenter)
	a.path.SetBorder(true).
		SetTitle(" Path ").
		SetTitleAlign(tview.AlignLeft)

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	// Top: timer, header
	// Middle: related artists to pick from
	// Bottom: path so far, status bar
	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.timer, 3, 1, false).
		AddItem(a.header, 2, 1, false).
		AddItem(a.related, 0, 3, true).
		AddItem(a.path, 5, 1, false).
		AddItem(a.status, 1, 1, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(flex, true)

	a.render()
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	r := event.Rune()
	switch {
	case r == 'q' || r == 'Q':
		a.Stop()
		return nil
	case r == 's' || r == 'S':
		a.start()
		return nil
	case r == 'r' || r == 'R':
		a.session.Reset()
		a.setMessage("")
		a.render()
		return nil
	case r >= '1' && r <= '9':
		if a.isBusy() {
			return nil
		}
		if err := a.session.Back(int(r - '1')); err != nil {
			a.setMessage(err.Error())
		}
		a.render()
		return nil
	}
	return event
}

// Run starts the TUI
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	go a.tick(ctx)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// tick redraws the timer; it is the only periodic source of redraws
func (a *App) tick(ctx context.Context) {
	refreshRate := a.config.RefreshRate
	if refreshRate <= 0 {
		refreshRate = 100 * time.Millisecond
	}
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			elapsed := a.session.Snapshot().Elapsed
			if elapsed == a.lastTimer {
				continue
			}
			a.lastTimer = elapsed
			a.app.QueueUpdateDraw(func() {
				a.timer.SetText(fmt.Sprintf("[white::b]%s[-:-:-]", elapsed))
			})
		}
	}
}

func (a *App) start() {
	snap := a.session.Snapshot()
	if snap.Status == client.StatusPlay {
		return
	}

	a.request(func(ctx context.Context) error {
		resp, err := a.player.Start(ctx)
		if err != nil {
			return err
		}
		return a.session.Begin(resp)
	})
}

func (a *App) pick(artist store.Artist) {
	req, err := a.session.Request(artist)
	if err != nil {
		a.setMessage(err.Error())
		a.render()
		return
	}

	a.request(func(ctx context.Context) error {
		resp, err := a.player.Guess(ctx, req)
		if err != nil {
			return err
		}
		return a.session.Advance(artist, resp)
	})
}

// request runs fn off the UI goroutine with the timer paused
func (a *App) request(fn func(ctx context.Context) error) {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return
	}
	a.busy = true
	a.message = "[yellow]Loading...[-]"
	a.mu.Unlock()
	a.render()

	done := a.session.Pending()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.RequestTimeout)
		defer cancel()

		err := fn(ctx)
		done()

		a.mu.Lock()
		a.busy = false
		a.message = ""
		if err != nil {
			a.message = "[red]" + tview.Escape(err.Error()) + "[-]"
		}
		a.mu.Unlock()

		a.app.QueueUpdateDraw(a.render)
	}()
}

func (a *App) isBusy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

func (a *App) setMessage(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if msg != "" {
		msg = "[red]" + tview.Escape(msg) + "[-]"
	}
	a.message = msg
}

// render redraws everything except the timer from the session state.
// Must be called on the UI goroutine.
func (a *App) render() {
	snap := a.session.Snapshot()

	a.timer.SetText(fmt.Sprintf("[white::b]%s[-:-:-]", snap.Elapsed))
	a.header.SetText(renderHeader(snap))
	a.path.SetText(renderPath(snap))

	a.related.Clear()
	if current, ok := snap.Current(); ok && snap.Status == client.StatusPlay {
		for _, artist := range current.Related {
			artist := artist
			a.related.AddItem(tview.Escape(artist.Name), "", 0, func() {
				if !a.isBusy() {
					a.pick(artist)
				}
			})
		}
	}

	a.mu.Lock()
	msg := a.message
	a.mu.Unlock()
	if msg == "" {
		msg = helpText
	}
	a.status.SetText(msg)
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// renderHeader describes the current objective
func renderHeader(snap client.Snapshot) string {
	switch snap.Status {
	case client.StatusPlay:
		current, _ := snap.Current()
		return fmt.Sprintf("[white::b]Related artists for %s[-:-:-]\n[gray]Find a path to %s[-]",
			tview.Escape(current.Artist.Name), tview.Escape(snap.EndArtist.Name))
	case client.StatusWin:
		return fmt.Sprintf("[green::b]You found %s in %d steps![-:-:-]\n[gray]Press s to play again[-]",
			tview.Escape(snap.EndArtist.Name), len(snap.Guesses)-1)
	default:
		return "[white::b]Related Artists Speedrun[-:-:-]\n[gray]Press s to start[-]"
	}
}

// renderPath lists the guesses so far, numbered for jumping back, followed
// by the end artist while the game is running
func renderPath(snap client.Snapshot) string {
	if len(snap.Guesses) == 0 {
		return ""
	}

	parts := make([]string, 0, len(snap.Guesses)+1)
	for i, g := range snap.Guesses {
		name := tview.Escape(truncateName(g.Artist.Name))
		switch {
		case g.Artist.ID == snap.EndArtist.ID:
			parts = append(parts, fmt.Sprintf("[green::b]%s[-:-:-]", name))
		case i < 9 && i < len(snap.Guesses)-1:
			parts = append(parts, fmt.Sprintf("[yellow]%d[-] %s", i+1, name))
		default:
			parts = append(parts, name)
		}
	}

	if snap.Status == client.StatusPlay {
		parts = append(parts, "...", fmt.Sprintf("[gray]%s[-]", tview.Escape(truncateName(snap.EndArtist.Name))))
	}

	return strings.Join(parts, " → ")
}

// truncateName shortens name to maxNameWidth display columns
func truncateName(name string) string {
	return runewidth.Truncate(name, maxNameWidth, "...")
}
