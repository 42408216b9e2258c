package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

const PlaceHolderText = "buy <item> [qty] | unlock <code> | help"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	market       *MarketView
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Event stream state
	events    chan SSEEvent
	sseCtx    context.Context
	sseCancel context.CancelFunc

	// Feed of order/drop activity
	entries  []string
	lastCode int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type orderResultMsg struct {
	receipt  *market.Receipt
	rejected *OrderRejected
	err      error
}

type unlockResultMsg struct {
	items  []string
	reason string
	err    error
}

type positionResultMsg struct {
	err error
}

type sseEventMsg SSEEvent

type sseClosedMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	feedPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	vendorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	youStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, mkt *MarketView) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	feedVp := viewport.New(50, 20)
	feedVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	sseCtx, sseCancel := context.WithCancel(context.Background())

	return ConsoleUI{
		config:       cfg,
		client:       client,
		market:       mkt,
		textarea:     ta,
		logViewport:  feedVp,
		metaViewport: metaVp,
		events:       make(chan SSEEvent, 16),
		sseCtx:       sseCtx,
		sseCancel:    sseCancel,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.startSSE(), waitForEvent(m.events))
}

// startSSE opens the actor's event stream in the background. The
// stream outlives individual commands; events arrive via the channel.
func (m ConsoleUI) startSSE() tea.Cmd {
	ctx := m.sseCtx
	baseURL := m.config.APIBaseURL
	actor := m.config.Actor
	ch := m.events
	return func() tea.Msg {
		err := listenToSSE(ctx, baseURL, actor, ch)
		return sseClosedMsg{err}
	}
}

// waitForEvent blocks on the event channel and re-arms itself after
// each delivery.
func waitForEvent(ch chan SSEEvent) tea.Cmd {
	return func() tea.Msg {
		return sseEventMsg(<-ch)
	}
}

func (m *ConsoleUI) appendEntry(entry string) {
	timestamp := promptStyle.Render(time.Now().Format("15:04:05") + " ")
	m.entries = append(m.entries, timestamp+entry)
	m.writeFeedContent()
}

// writeFeedContent rebuilds the feed for the current viewport width.
func (m *ConsoleUI) writeFeedContent() {
	feedWidth := m.logViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("DEADDROP") + "\n\n")
	content.WriteString(fmt.Sprintf("Talking to %s as %s.\n\n", vendorStyle.Render(m.market.Vendor.Name), youStyle.Render(m.config.Actor)))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(feedWidth-6, 1))) + "\n\n")

	for _, entry := range m.entries {
		content.WriteString(wordwrap.String(entry, max(feedWidth, 10)) + "\n")
	}

	if m.loading {
		content.WriteString("\n" + m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("MARKET") + "\n\n")

	content.WriteString("Vendor:\n")
	content.WriteString(m.market.Vendor.Name + "\n\n")

	for _, section := range m.market.Sections {
		content.WriteString(section.Label + ":\n")
		items := make([]string, 0, len(section.Items))
		for item := range section.Items {
			items = append(items, item)
		}
		sort.Strings(items)
		for _, item := range items {
			content.WriteString(fmt.Sprintf("• %s $%d\n", item, section.Items[item]))
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• buy <item> [qty]\n")
	content.WriteString("• cart <item:qty,...>\n")
	content.WriteString("• unlock <code>\n")
	content.WriteString("• goto <x> <y> <z>\n")
	content.WriteString("• copy (lock code)\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		feedWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - feedWidth - 6

		m.logViewport.Width = feedWidth - 2
		m.logViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(feedWidth - 4)

		m.ready = true
		m.writeFeedContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleCommand(input)
		}

	case orderResultMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.appendEntry(errorStyle.Render("Error: " + msg.err.Error()))
		case msg.rejected != nil:
			line := errorStyle.Render("Order rejected: "+msg.rejected.Reason) + formatRejectionDetail(msg.rejected)
			m.appendEntry(line)
		default:
			m.appendEntry(vendorStyle.Render(m.market.Vendor.Name+": ") +
				fmt.Sprintf("Pleasure doing business. $%d, %s. Watch your phone.", msg.receipt.Total, msg.receipt.Method))
			m.appendEntry(promptStyle.Render("Receipt: " + strings.Join(msg.receipt.Items, ", ")))
		}
		m.writeFeedContent()

	case unlockResultMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.appendEntry(errorStyle.Render("Error: " + msg.err.Error()))
		case msg.reason != "":
			m.appendEntry(errorStyle.Render("Unlock failed: " + msg.reason))
		default:
			m.appendEntry(codeStyle.Render("Stash opened!") + " Received: " + strings.Join(msg.items, ", "))
		}
		m.writeFeedContent()

	case positionResultMsg:
		m.loading = false
		if msg.err != nil {
			m.appendEntry(errorStyle.Render("Error: " + msg.err.Error()))
		} else {
			m.appendEntry(promptStyle.Render("Position reported."))
		}
		m.writeFeedContent()

	case sseEventMsg:
		m.handleEvent(SSEEvent(msg))
		return m, waitForEvent(m.events)

	case sseClosedMsg:
		if msg.err != nil && msg.err != context.Canceled {
			m.appendEntry(errorStyle.Render("Event stream closed: " + msg.err.Error()))
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeFeedContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func formatRejectionDetail(rejected *OrderRejected) string {
	switch {
	case rejected.Failure != "":
		return promptStyle.Render(" (" + rejected.Failure + ")")
	case rejected.RetrySeconds > 0:
		return promptStyle.Render(fmt.Sprintf(" (retry in %ds)", rejected.RetrySeconds))
	}
	return ""
}

// handleEvent renders one event from the SSE stream into the feed.
func (m *ConsoleUI) handleEvent(event SSEEvent) {
	switch event.Type {
	case "connected":
		m.appendEntry(promptStyle.Render("Connected to event stream."))

	case "lockcode.issued":
		if code, ok := event.Data["code"].(float64); ok {
			m.lastCode = int(code)
			entry := vendorStyle.Render(m.market.Vendor.Name+": ") +
				"Your package is on the move. Code: " + codeStyle.Render(strconv.Itoa(m.lastCode))
			if mins, ok := event.Data["expiry_minutes"].(float64); ok {
				entry += promptStyle.Render(fmt.Sprintf(" (window: %d min)", int(mins)))
			}
			m.appendEntry(entry)
		}

	case "drop.revealed":
		entry := codeStyle.Render("Drop revealed.")
		if zone, ok := event.Data["zone"].(map[string]interface{}); ok {
			if name, ok := zone["name"].(string); ok && name != "" {
				entry += " Location: " + name
			}
			if pos, ok := zone["position"].(map[string]interface{}); ok {
				entry += fmt.Sprintf(" (%.1f, %.1f, %.1f)", pos["x"], pos["y"], pos["z"])
			}
		}
		m.appendEntry(entry)

	case "drop.expired":
		m.appendEntry(errorStyle.Render("Your drop expired. The stash is gone."))

	case "delivery.complete":
		m.appendEntry(promptStyle.Render("Delivery confirmed."))

	case "payment.failed":
		if failure, ok := event.Data["failure"].(string); ok {
			m.appendEntry(errorStyle.Render("Payment failed: " + failure))
		}

	case "order.rejected":
		if reason, ok := event.Data["reason"].(string); ok {
			m.appendEntry(errorStyle.Render("Order rejected: " + reason))
		}
	}
	m.writeFeedContent()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(strings.TrimPrefix(fields[0], "/"))

	switch cmd {
	case "help":
		m.appendEntry(titleStyle.Render("Commands:") + `
• buy <item> [qty] - order one item
• cart <item:qty,item:qty> - order several
• unlock <code> - open your drop
• goto <x> <y> <z> - report position
• copy - copy last lock code to clipboard`)
		return m, nil

	case "buy":
		if len(fields) < 2 {
			m.appendEntry(errorStyle.Render("Usage: buy <item> [qty]"))
			return m, nil
		}
		item := fields[1]
		qty := 1
		if len(fields) > 2 {
			if n, err := strconv.Atoi(fields[2]); err == nil && n > 0 {
				qty = n
			}
		}
		m.appendEntry(youStyle.Render("You: ") + fmt.Sprintf("buy %s x%d", item, qty))
		m.loading = true
		m.progressTick = 0
		if qty == 1 {
			return m, tea.Batch(m.placeOrderCmd(item, nil), progressTick())
		}
		return m, tea.Batch(m.placeOrderCmd("", []market.OrderLine{{Item: item, Quantity: qty}}), progressTick())

	case "cart":
		if len(fields) < 2 {
			m.appendEntry(errorStyle.Render("Usage: cart <item:qty,item:qty>"))
			return m, nil
		}
		lines := parseCart(strings.Join(fields[1:], ""))
		if len(lines) == 0 {
			m.appendEntry(errorStyle.Render("Usage: cart <item:qty,item:qty>"))
			return m, nil
		}
		m.appendEntry(youStyle.Render("You: ") + "cart " + strings.Join(fields[1:], " "))
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.placeOrderCmd("", lines), progressTick())

	case "unlock":
		if len(fields) < 2 {
			m.appendEntry(errorStyle.Render("Usage: unlock <code>"))
			return m, nil
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			m.appendEntry(errorStyle.Render("Lock codes are numeric."))
			return m, nil
		}
		m.appendEntry(youStyle.Render("You: ") + "unlock " + fields[1])
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.unlockCmd(code), progressTick())

	case "goto":
		if len(fields) != 4 {
			m.appendEntry(errorStyle.Render("Usage: goto <x> <y> <z>"))
			return m, nil
		}
		coords := make([]float64, 3)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				m.appendEntry(errorStyle.Render("Coordinates must be numeric."))
				return m, nil
			}
			coords[i] = v
		}
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.reportPositionCmd(coords[0], coords[1], coords[2]), progressTick())

	case "copy":
		if m.lastCode == 0 {
			m.appendEntry(errorStyle.Render("No lock code received yet."))
			return m, nil
		}
		if err := clipboard.WriteAll(strconv.Itoa(m.lastCode)); err != nil {
			m.appendEntry(errorStyle.Render("Clipboard error: " + err.Error()))
		} else {
			m.appendEntry(promptStyle.Render("Lock code copied to clipboard."))
		}
		return m, nil

	default:
		m.appendEntry(errorStyle.Render("Unknown command. Try 'help'."))
		return m, nil
	}
}

// parseCart turns "pistol:2,lockpick:1" into order lines.
func parseCart(s string) []market.OrderLine {
	var lines []market.OrderLine
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		item := part
		qty := 1
		if idx := strings.Index(part, ":"); idx > 0 {
			item = part[:idx]
			if n, err := strconv.Atoi(part[idx+1:]); err == nil && n > 0 {
				qty = n
			}
		}
		lines = append(lines, market.OrderLine{Item: item, Quantity: qty})
	}
	return lines
}

func (m ConsoleUI) placeOrderCmd(item string, lines []market.OrderLine) tea.Cmd {
	return func() tea.Msg {
		receipt, rejected, err := placeOrder(m.client, m.config.APIBaseURL, m.config.Actor, item, lines)
		return orderResultMsg{receipt, rejected, err}
	}
}

func (m ConsoleUI) unlockCmd(code int) tea.Cmd {
	return func() tea.Msg {
		items, reason, err := attemptUnlock(m.client, m.config.APIBaseURL, m.config.Actor, code)
		return unlockResultMsg{items, reason, err}
	}
}

func (m ConsoleUI) reportPositionCmd(x, y, z float64) tea.Cmd {
	return func() tea.Msg {
		err := reportPosition(m.client, m.config.APIBaseURL, m.config.Actor, x, y, z)
		return positionResultMsg{err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			if m.sseCancel != nil {
				m.sseCancel()
			}
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				if m.sseCancel != nil {
					m.sseCancel()
				}
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Market?"))
	content.WriteString("\n\n")
	content.WriteString("Pending drops keep their schedule while you're gone.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to stay, or Ctrl+C to force quit"))

	modal := modalStyle.Width(56).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	feedWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - feedWidth - 6

	feedPanel := feedPanelStyle.Width(feedWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(feedWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, feedPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
