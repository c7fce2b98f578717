package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/grand-tour/pkg/content"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

const answerPlaceholder = "Type your answer here..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config *ConsoleConfig
	client *http.Client

	playerState *state.PlayerState
	latest      *state.MoveOutcome
	riddle      string
	event       *content.RandomEvent

	logViewport viewport.Model
	input       textinput.Model
	inputMode   bool // typing a riddle answer instead of moving

	log      []string
	ready    bool
	width    int
	height   int
	loading  bool
	gameOver bool
	err      error
}

type moveMsg struct {
	out *state.MoveOutcome
	err error
}

type solveMsg struct {
	out *state.SolveOutcome
	err error
}

type eventMsg struct {
	out *state.EventOutcome
	err error
}

type completeMsg struct {
	out *CompleteView
	err error
}

type leaderboardMsg struct {
	text string
	err  error
}

// CompleteView is the completion payload shown in the log.
type CompleteView struct {
	Score int
	Moves int
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	riddleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(1)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, ps *state.PlayerState, startCity content.City) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = answerPlaceholder
	ti.CharLimit = 100
	ti.Width = 40

	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	ui := ConsoleUI{
		config:      cfg,
		client:      client,
		playerState: ps,
		riddle:      ps.ActiveRiddle,
		logViewport: vp,
		input:       ti,
	}
	ui.appendLog(titleStyle.Render("GRAND TOUR"))
	ui.appendLog(fmt.Sprintf("Welcome to %s. %s", startCity.Name, startCity.Description))
	if ps.ActiveRiddle != "" {
		ui.appendLog(riddleStyle.Render("Riddle: " + ps.ActiveRiddle))
	}
	return ui
}

func (ui *ConsoleUI) appendLog(line string) {
	ui.log = append(ui.log, line)
}

func (ui ConsoleUI) Init() tea.Cmd {
	return nil
}

func (ui ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		ui.logViewport.Width = ui.logWidth()
		ui.logViewport.Height = msg.Height - 6
		ui.ready = true
		ui.refreshLog()
		return ui, nil

	case tea.KeyMsg:
		return ui.handleKey(msg)

	case moveMsg:
		ui.loading = false
		if msg.err != nil {
			ui.appendLog(errorStyle.Render(msg.err.Error()))
		} else {
			ui.applyMove(msg.out)
		}
		ui.refreshLog()
		return ui, nil

	case solveMsg:
		ui.loading = false
		if msg.err != nil {
			ui.appendLog(errorStyle.Render(msg.err.Error()))
		} else {
			ui.applySolve(msg.out)
		}
		ui.refreshLog()
		return ui, nil

	case eventMsg:
		ui.loading = false
		if msg.err != nil {
			ui.appendLog(errorStyle.Render(msg.err.Error()))
		} else {
			ui.event = nil
			if msg.out.ForcedRest {
				ui.appendLog("Exhausted, you are forced to rest before continuing.")
			}
			if msg.out.RiddleHint {
				ui.appendLog("You feel wiser. The next riddle may come easier.")
			}
			ui.appendLog(statusStyle.Render(
				fmt.Sprintf("Moves %d · Stamina %.0f · Score %d", msg.out.Moves, msg.out.Stamina, msg.out.Score)))
			for _, a := range msg.out.NewAchievements {
				ui.appendLog(eventStyle.Render(fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Name)))
			}
		}
		ui.refreshLog()
		return ui, nil

	case completeMsg:
		ui.loading = false
		if msg.err != nil {
			ui.appendLog(errorStyle.Render(msg.err.Error()))
		} else {
			ui.gameOver = true
			ui.appendLog(eventStyle.Render(
				fmt.Sprintf("Journey complete! Final score %d in %d moves.", msg.out.Score, msg.out.Moves)))
		}
		ui.refreshLog()
		return ui, nil

	case leaderboardMsg:
		ui.loading = false
		if msg.err != nil {
			ui.appendLog(errorStyle.Render(msg.err.Error()))
		} else {
			ui.appendLog(msg.text)
		}
		ui.refreshLog()
		return ui, nil
	}

	var cmd tea.Cmd
	ui.logViewport, cmd = ui.logViewport.Update(msg)
	return ui, cmd
}

func (ui ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return ui, tea.Quit
	}

	// Pending event: pick a numbered choice.
	if ui.event != nil {
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(ui.event.Choices) {
			choice := ui.event.Choices[n-1].Text
			ui.loading = true
			return ui, ui.eventCmd(choice)
		}
		return ui, nil
	}

	if ui.inputMode {
		switch key {
		case "esc":
			ui.inputMode = false
			ui.input.Blur()
			return ui, nil
		case "enter":
			answer := strings.TrimSpace(ui.input.Value())
			ui.input.SetValue("")
			ui.inputMode = false
			ui.input.Blur()
			if answer == "" {
				return ui, nil
			}
			ui.loading = true
			return ui, ui.solveCmd(answer)
		}
		var cmd tea.Cmd
		ui.input, cmd = ui.input.Update(msg)
		return ui, cmd
	}

	switch key {
	case "q":
		return ui, tea.Quit
	case "w", "up":
		return ui.startMove("north")
	case "s", "down":
		return ui.startMove("south")
	case "a", "left":
		return ui.startMove("west")
	case "d", "right":
		return ui.startMove("east")
	case "enter", "r":
		if ui.riddle != "" && !ui.gameOver {
			ui.inputMode = true
			return ui, ui.input.Focus()
		}
	case "c":
		if !ui.gameOver {
			ui.loading = true
			return ui, ui.completeCmd()
		}
	case "l":
		ui.loading = true
		return ui, ui.leaderboardCmd()
	case "y":
		if err := clipboard.WriteAll(ui.playerState.ID.String()); err == nil {
			ui.appendLog(hintStyle.Render("Session ID copied to clipboard."))
			ui.refreshLog()
		}
	}

	var cmd tea.Cmd
	ui.logViewport, cmd = ui.logViewport.Update(msg)
	return ui, cmd
}

func (ui ConsoleUI) startMove(direction string) (tea.Model, tea.Cmd) {
	if ui.gameOver || ui.loading {
		return ui, nil
	}
	ui.loading = true
	return ui, ui.moveCmd(direction)
}

func (ui *ConsoleUI) applyMove(out *state.MoveOutcome) {
	ui.latest = out
	ui.riddle = out.CurrentRiddle

	if out.GameOver {
		ui.gameOver = true
		ui.appendLog(errorStyle.Render(out.Message))
		return
	}

	if out.EnteredCity {
		ui.appendLog(statusStyle.Render("You have arrived in " + out.CurrentCity + "."))
		if out.CurrentRiddle != "" {
			ui.appendLog(riddleStyle.Render("Riddle: " + out.CurrentRiddle))
			ui.appendLog(hintStyle.Render("Press enter to answer."))
		}
	}
	if out.Event != nil {
		ui.event = out.Event
		ui.appendLog(eventStyle.Render(out.Event.Title))
		ui.appendLog(out.Event.Description)
		for i, c := range out.Event.Choices {
			ui.appendLog(fmt.Sprintf("  %d) %s", i+1, c.Text))
		}
	}
	if out.AtSecretSite {
		ui.appendLog(eventStyle.Render("You've discovered the hidden Château!"))
	}
}

func (ui *ConsoleUI) applySolve(out *state.SolveOutcome) {
	if out.Correct {
		ui.riddle = ""
	}
	ui.appendLog(riddleStyle.Render(out.Message))
	for _, a := range out.NewAchievements {
		ui.appendLog(eventStyle.Render(fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Name)))
	}
}

func (ui ConsoleUI) moveCmd(direction string) tea.Cmd {
	return func() tea.Msg {
		out, err := move(ui.client, ui.config.APIBaseURL, ui.playerState.ID, direction)
		return moveMsg{out: out, err: err}
	}
}

func (ui ConsoleUI) solveCmd(answer string) tea.Cmd {
	return func() tea.Msg {
		out, err := solveRiddle(ui.client, ui.config.APIBaseURL, ui.playerState.ID, answer)
		return solveMsg{out: out, err: err}
	}
}

func (ui ConsoleUI) eventCmd(choice string) tea.Cmd {
	return func() tea.Msg {
		out, err := resolveEvent(ui.client, ui.config.APIBaseURL, ui.playerState.ID, choice)
		return eventMsg{out: out, err: err}
	}
}

func (ui ConsoleUI) completeCmd() tea.Cmd {
	return func() tea.Msg {
		resp, err := completeGame(ui.client, ui.config.APIBaseURL, ui.playerState.ID)
		if err != nil {
			return completeMsg{err: err}
		}
		return completeMsg{out: &CompleteView{
			Score: resp.State.Score.Total(),
			Moves: resp.State.MoveCount,
		}}
	}
}

func (ui ConsoleUI) leaderboardCmd() tea.Cmd {
	return func() tea.Msg {
		resp, err := getLeaderboard(ui.client, ui.config.APIBaseURL, 10)
		if err != nil {
			return leaderboardMsg{err: err}
		}
		var b strings.Builder
		b.WriteString(titleStyle.Render("LEADERBOARD") + "\n")
		for i, e := range resp.Entries {
			b.WriteString(fmt.Sprintf("%2d. %-16s %6d pts, %d moves\n", i+1, e.PlayerName, e.Score, e.Moves))
		}
		if len(resp.Entries) == 0 {
			b.WriteString("No finished runs yet.\n")
		}
		return leaderboardMsg{text: b.String()}
	}
}

func (ui *ConsoleUI) refreshLog() {
	wrapped := wordwrap.String(strings.Join(ui.log, "\n"), ui.logWidth()-4)
	ui.logViewport.SetContent(wrapped)
	ui.logViewport.GotoBottom()
}

func (ui ConsoleUI) logWidth() int {
	w := ui.width - 30
	if w < 30 {
		w = 30
	}
	return w
}

func (ui ConsoleUI) statusPanel() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("STATUS") + "\n\n")
	b.WriteString("Session:\n" + ui.playerState.ID.String()[:8] + "...\n\n")

	if ui.latest != nil {
		b.WriteString(fmt.Sprintf("Position:\n%.3f, %.3f\n\n", ui.latest.Position.Lat, ui.latest.Position.Lon))
		b.WriteString(fmt.Sprintf("Stamina: %.0f\n", ui.latest.Stamina))
		b.WriteString(fmt.Sprintf("Score: %d\n", ui.latest.Score))
		b.WriteString(fmt.Sprintf("Moves: %d\n", ui.latest.Moves))
		b.WriteString(fmt.Sprintf("Cities: %d/%d\n", ui.latest.CitiesVisited, ui.latest.TotalCities))
		if ui.latest.NearestCity != "" {
			b.WriteString(fmt.Sprintf("Nearest: %s (%.0f km)\n", ui.latest.NearestCity, ui.latest.DistanceToCityKm))
		}
		if len(ui.latest.Companions) > 0 {
			b.WriteString("\nCompanions:\n")
			for _, c := range ui.latest.Companions {
				b.WriteString("  " + c + "\n")
			}
		}
		if ui.latest.HiddenLocationRevealed {
			b.WriteString("\nA mysterious location\nhas been revealed...\n")
		}
	} else {
		b.WriteString("Stamina: 100\nScore: 0\nMoves: 0\n")
	}
	return b.String()
}

func (ui ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	logPanel := logPanelStyle.Render(ui.logViewport.View())
	meta := metaPanelStyle.Render(ui.statusPanel())
	body := lipgloss.JoinHorizontal(lipgloss.Top, logPanel, meta)

	var footer string
	switch {
	case ui.loading:
		footer = loadingStyle.Render("...")
	case ui.event != nil:
		footer = hintStyle.Render("Choose an option (1-" + strconv.Itoa(len(ui.event.Choices)) + ")")
	case ui.inputMode:
		footer = ui.input.View() + "\n" + hintStyle.Render("enter: submit · esc: cancel")
	case ui.gameOver:
		footer = hintStyle.Render("Game over. l: leaderboard · q: quit")
	default:
		footer = hintStyle.Render("wasd/arrows: move · enter: answer riddle · c: complete · l: leaderboard · y: copy session · q: quit")
	}

	return body + "\n" + footer
}
