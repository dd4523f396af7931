package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"scout/internal/models"
	"scout/internal/shared"
	"scout/internal/workflow"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	StreamView
	ProductConfirmView
	VariantConfirmView
	ExtractionConfirmView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	controller *workflow.Controller
	events     <-chan models.ProgressEvent

	input     textinput.Model
	inputType models.InputType

	candidateList list.Model
	resultList    list.Model

	width  int
	height int
	err    error
	help   help.Model
	keys   keyMap
}

type progressEventMsg models.ProgressEvent

type streamClosedMsg struct{}

// NewModel creates a new TUI model driving the given controller.
func NewModel(ctx context.Context, controller *workflow.Controller) *Model {
	input := textinput.New()
	input.Placeholder = "wireless mouse"
	input.Focus()
	input.CharLimit = 512

	return &Model{
		ctx:        ctx,
		view:       InputView,
		controller: controller,
		input:      input,
		inputType:  models.InputKeyword,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.candidateList.Width() > 0 {
			m.candidateList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.resultList.Width() > 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case StreamView:
			return m.handleStreamKeys(msg)
		case ProductConfirmView, VariantConfirmView:
			return m.handleCandidateKeys(msg)
		case ExtractionConfirmView:
			return m.handleExtractionKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressEventMsg:
		if err := m.controller.HandleEvent(m.ctx, models.ProgressEvent(msg)); err != nil {
			m.err = err
		}
		m.syncView()
		return m, m.waitForEvent()

	case streamClosedMsg:
		m.events = nil
		m.controller.StreamClosed()
		m.syncView()
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case StreamView:
		return m.renderStream()
	case ProductConfirmView, VariantConfirmView:
		return m.renderCandidates()
	case ExtractionConfirmView:
		return m.renderExtraction()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// syncView maps the controller's phase onto a view and rebuilds the
// affected lists from the latest snapshot.
func (m *Model) syncView() {
	snap := m.controller.Snapshot()

	switch snap.Phase {
	case workflow.Streaming:
		m.view = StreamView

	case workflow.AwaitingProduct:
		if m.view != ProductConfirmView {
			items := make([]list.Item, len(snap.Products))
			for i, candidate := range snap.Products {
				items[i] = candidateItem{index: i, candidate: candidate}
			}
			m.candidateList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
			m.candidateList.Title = "Which product did you mean?"
			m.view = ProductConfirmView
		}

	case workflow.AwaitingVariant:
		if m.view != VariantConfirmView {
			items := make([]list.Item, len(snap.Variants))
			for i, variant := range snap.Variants {
				items[i] = variantItem{index: i, variant: variant}
			}
			m.candidateList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
			m.candidateList.Title = "Which variant?"
			m.view = VariantConfirmView
		}

	case workflow.AwaitingExtraction:
		m.view = ExtractionConfirmView

	case workflow.Completed:
		items := make([]list.Item, len(snap.Results))
		for i, result := range snap.Results {
			items[i] = resultItem{rank: i + 1, result: result}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.resultList.Title = fmt.Sprintf("Results (%d)", len(snap.Results))
		m.view = ResultView

	case workflow.Failed, workflow.ExtractionRejected:
		m.view = ResultView
	}
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		if m.inputType == models.InputKeyword {
			m.inputType = models.InputURL
			m.input.Placeholder = "https://www.amazon.in/dp/..."
		} else {
			m.inputType = models.InputKeyword
			m.input.Placeholder = "wireless mouse"
		}
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.err = nil
		events, err := m.controller.Start(m.ctx, m.inputType, query)
		if err != nil {
			m.err = err
			m.view = ResultView
			return m, nil
		}
		m.events = events
		m.view = StreamView
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleStreamKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleCandidateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.candidateList.FilterState() == list.Filtering {
			break
		}
		return m, tea.Quit
	case "enter":
		// While a filter is being typed, enter applies the filter.
		if m.candidateList.FilterState() == list.Filtering {
			break
		}

		kind := workflow.KindProduct
		if m.view == VariantConfirmView {
			kind = workflow.KindVariant
		}

		// Filtering shifts the visible position; the wire index is the
		// item's position in the original candidate slice.
		var index int
		switch item := m.candidateList.SelectedItem().(type) {
		case candidateItem:
			index = item.index
		case variantItem:
			index = item.index
		default:
			return m, nil
		}

		if err := m.controller.Select(kind, index); err != nil {
			m.err = err
			return m, nil
		}
		if err := m.controller.Confirm(m.ctx, kind); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.syncView()
		return m, nil
	}

	var cmd tea.Cmd
	m.candidateList, cmd = m.candidateList.Update(msg)
	return m, cmd
}

func (m *Model) handleExtractionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "y":
		return m.applyExtraction(true)
	case "n":
		return m.applyExtraction(false)
	}
	return m, nil
}

func (m *Model) applyExtraction(confirmed bool) (tea.Model, tea.Cmd) {
	if err := m.controller.ConfirmExtraction(m.ctx, confirmed); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.syncView()
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "o":
		if item, ok := m.resultList.SelectedItem().(resultItem); ok && item.result.URL != "" {
			if err := shared.OpenBrowser(item.result.URL); err != nil {
				m.err = err
			}
		}
		return m, nil
	case "r":
		m.controller.Reset(m.ctx)
		m.events = nil
		m.err = nil
		m.input.SetValue("")
		m.input.Focus()
		m.view = InputView
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case InputView:
		m.input, cmd = m.input.Update(msg)
	case ProductConfirmView, VariantConfirmView:
		m.candidateList, cmd = m.candidateList.Update(msg)
	case ResultView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

// waitForEvent is the only command touching session machinery, and it only
// receives from the event channel. Controller methods run exclusively on the
// update goroutine.
func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		if events == nil {
			return streamClosedMsg{}
		}
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return progressEventMsg(ev)
	}
}

func (m *Model) renderInput() string {
	title := styles.title.Render("Product Discovery")
	mode := styles.dim.Render(fmt.Sprintf("Search by: %s", m.inputType))

	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.toggle, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s", title, mode, m.input.View(), errLine, helpView)
}

func (m *Model) renderStream() string {
	snap := m.controller.Snapshot()

	title := styles.title.Render("Searching...")

	var lines []string
	logs := snap.Logs
	if len(logs) > 12 {
		logs = logs[len(logs)-12:]
	}
	for _, entry := range logs {
		line := entry.Message
		if entry.Stage != "" {
			line = fmt.Sprintf("[%s] %s", entry.Stage, entry.Message)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, styles.dim.Render("waiting for progress..."))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, strings.Join(lines, "\n"), helpView)
}

func (m *Model) renderCandidates() string {
	var errLine string
	if m.err != nil {
		errLine = "\n" + styles.err.Render(m.err.Error())
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", m.candidateList.View(), errLine, helpView)
}

func (m *Model) renderExtraction() string {
	snap := m.controller.Snapshot()

	title := styles.title.Render("Is this the product you meant?")

	var details string
	if snap.Extracted != nil {
		details = fmt.Sprintf("Brand:   %s\nProduct: %s\nVariant: %s\n",
			snap.Extracted.Brand, snap.Extracted.Product, snap.Extracted.Variant)
	}

	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(m.err.Error()) + "\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s%s", title, details, errLine, helpView)
}

func (m *Model) renderResult() string {
	snap := m.controller.Snapshot()

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	if snap.Phase == workflow.Completed {
		helpKeys = []key.Binding{m.keys.open, m.keys.restart, m.keys.quit}
	}
	helpView := m.help.ShortHelpView(helpKeys)

	switch snap.Phase {
	case workflow.Failed:
		msg := snap.ErrorMessage
		if msg == "" && m.err != nil {
			msg = m.err.Error()
		}
		body := styles.err.Render(fmt.Sprintf("Search failed: %s", msg))
		return fmt.Sprintf("%s\n\n%s", body, helpView)

	case workflow.ExtractionRejected:
		body := styles.warn.Render("Extraction rejected. Start over with a different URL or keyword.")
		return fmt.Sprintf("%s\n\n%s", body, helpView)

	case workflow.Completed:
		title := styles.ok.Render("✓ Search Complete")
		return fmt.Sprintf("%s\n%s\n\n%s", title, m.resultList.View(), helpView)
	}

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}
	return helpView
}
