// Package dashboard provides the Bubble Tea currency dashboard.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fxdash/internal/app"
	"github.com/verte-zerg/fxdash/internal/model"
	"github.com/verte-zerg/fxdash/internal/stats"
)

const (
	tabFavorites = iota
	tabHistory
	tabTrend
)

const (
	plotHeight     = 10
	noticeLifetime = 5 * time.Second

	DefaultRefresh = 60 * time.Second
	DefaultDays    = 30
)

var trendDayPresets = []int{7, 30, 90, 180, 365}

// Service is the application surface the dashboard drives.
type Service interface {
	FavoriteQuotes(ctx context.Context) []model.FavoriteQuote
	RemoveFavorite(ctx context.Context, from, to string) error
	History() []model.HistoryEntry
	ClearHistory(ctx context.Context) error
	Trend(ctx context.Context, req app.TrendRequest) (model.Trend, error)
	LastDays(days int) (time.Time, time.Time)
	CurrencyName(code string) string
	DarkMode() bool
	ToggleDarkMode(ctx context.Context) (bool, error)
}

// Options configures the dashboard.
type Options struct {
	Context context.Context
	From    string
	To      string
	Days    int
	Refresh time.Duration
}

type favoritesMsg struct {
	seq    int
	quotes []model.FavoriteQuote
	at     time.Time
}

type trendMsg struct {
	seq   int
	trend model.Trend
	err   error
}

type refreshTickMsg time.Time

type noticeExpiredMsg struct {
	id int
}

type actionMsg struct {
	notice        string
	err           error
	removed       *model.FavoritePair
	historyChange bool
	themeChange   bool
	dark          bool
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	svc   Service
	ctx   context.Context
	opts  Options
	theme theme
	now   func() time.Time

	tabs      []string
	activeTab int
	favTable  table.Model
	histTable table.Model
	trendView viewport.Model

	favorites   []model.FavoriteQuote
	favLoaded   bool
	history     []model.HistoryEntry
	trend       *model.Trend
	trendErr    string
	updatedAt   time.Time
	favSeq      int
	trendSeq    int
	confirmMode bool

	notice    string
	noticeErr bool
	noticeID  int

	width  int
	height int
}

// NewModel constructs a dashboard model.
func NewModel(svc Service, opts Options) *Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	m := &Model{
		svc:   svc,
		ctx:   opts.Context,
		opts:  opts,
		theme: newTheme(svc.DarkMode()),
		now:   time.Now,
		tabs:  []string{"Favorites", "History", "Trend"},
	}
	m.favTable = m.newTable(favoriteColumns(80), nil)
	m.favTable.Focus()
	m.histTable = m.newTable(historyColumns(), nil)
	m.trendView = viewport.New(0, 0)
	m.history = svc.History()
	m.applyHistory()
	m.renderTrend()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshFavorites(), m.loadTrend(), m.scheduleRefresh())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTrend()
		return m, nil
	case favoritesMsg:
		if msg.seq != m.favSeq {
			return m, nil
		}
		m.favorites = msg.quotes
		m.favLoaded = true
		m.updatedAt = msg.at
		m.applyFavorites()
		failed := 0
		for _, q := range msg.quotes {
			if q.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return m, m.notify(fmt.Sprintf("Failed to fetch %d of %d favorite rates", failed, len(msg.quotes)), true)
		}
		return m, nil
	case trendMsg:
		if msg.seq != m.trendSeq {
			return m, nil
		}
		if msg.err != nil {
			m.trend = nil
			m.trendErr = msg.err.Error()
			m.renderTrend()
			return m, m.notify("Failed to fetch historical data: "+msg.err.Error(), true)
		}
		trend := msg.trend
		m.trend = &trend
		m.trendErr = ""
		m.renderTrend()
		return m, nil
	case refreshTickMsg:
		return m, tea.Batch(m.refreshFavorites(), m.scheduleRefresh())
	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
			m.noticeErr = false
		}
		return m, nil
	case actionMsg:
		return m.applyAction(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.confirmMode {
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.confirmMode {
		return fitLines(m.renderConfirmModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l", "tab":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "r":
		return m, tea.Batch(m.refreshFavorites(), m.loadTrend())
	case "t":
		return m, m.toggleTheme()
	case "=", "+":
		m.opts.Days = nextPreset(m.opts.Days)
		return m, m.loadTrend()
	case "-":
		m.opts.Days = prevPreset(m.opts.Days)
		return m, m.loadTrend()
	case "d", "x", "delete":
		if m.activeTab == tabFavorites {
			return m, m.removeSelected()
		}
		return m, nil
	case "c":
		if m.activeTab == tabHistory {
			m.confirmMode = true
		}
		return m, nil
	}
	var cmd tea.Cmd
	switch m.activeTab {
	case tabFavorites:
		m.favTable, cmd = m.favTable.Update(msg)
	case tabHistory:
		m.histTable, cmd = m.histTable.Update(msg)
	default:
		m.trendView, cmd = m.trendView.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmMode = false
	switch msg.String() {
	case "y", "Y":
		return m, m.clearHistory()
	default:
		return m, m.notify("History was not cleared", false)
	}
}

func (m *Model) applyAction(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.notify(msg.err.Error(), true)
	}
	if msg.themeChange {
		m.theme = newTheme(msg.dark)
		m.favTable.SetStyles(m.theme.tableStyles())
		m.histTable.SetStyles(m.theme.tableStyles())
		m.renderTrend()
	}
	if msg.historyChange {
		m.history = m.svc.History()
		m.applyHistory()
	}
	if msg.removed != nil {
		// Drop any in-flight refresh that still carries the removed pair.
		m.favSeq++
		kept := make([]model.FavoriteQuote, 0, len(m.favorites))
		for _, q := range m.favorites {
			if q.Pair == *msg.removed {
				continue
			}
			kept = append(kept, q)
		}
		m.favorites = kept
		m.applyFavorites()
	}
	if msg.notice == "" {
		return m, nil
	}
	return m, m.notify(msg.notice, false)
}

func (m *Model) refreshFavorites() tea.Cmd {
	m.favSeq++
	seq := m.favSeq
	ctx, svc, now := m.ctx, m.svc, m.now
	return func() tea.Msg {
		quotes := svc.FavoriteQuotes(ctx)
		return favoritesMsg{seq: seq, quotes: quotes, at: now()}
	}
}

func (m *Model) loadTrend() tea.Cmd {
	m.trendSeq++
	seq := m.trendSeq
	start, end := m.svc.LastDays(m.opts.Days)
	req := app.TrendRequest{From: m.opts.From, To: m.opts.To, Start: start, End: end}
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		trend, err := svc.Trend(ctx, req)
		return trendMsg{seq: seq, trend: trend, err: err}
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m *Model) removeSelected() tea.Cmd {
	idx := m.favTable.Cursor()
	if idx < 0 || idx >= len(m.favorites) {
		return nil
	}
	pair := m.favorites[idx].Pair
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		if err := svc.RemoveFavorite(ctx, pair.From, pair.To); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: "Currency pair removed from favorites", removed: &pair}
	}
}

func (m *Model) clearHistory() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		if err := svc.ClearHistory(ctx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{notice: "Conversion history cleared", historyChange: true}
	}
}

func (m *Model) toggleTheme() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		dark, err := svc.ToggleDarkMode(ctx)
		if err != nil {
			return actionMsg{err: err}
		}
		notice := "Light mode on"
		if dark {
			notice = "Dark mode on"
		}
		return actionMsg{notice: notice, themeChange: true, dark: dark}
	}
}

func (m *Model) notify(text string, isErr bool) tea.Cmd {
	m.noticeID++
	id := m.noticeID
	m.notice = text
	m.noticeErr = isErr
	return tea.Tick(noticeLifetime, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.favTable.Blur()
	m.histTable.Blur()
	switch m.activeTab {
	case tabFavorites:
		m.favTable.Focus()
	case tabHistory:
		m.histTable.Focus()
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(m.theme.activeNav.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 2
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.favTable.SetColumns(favoriteColumns(m.width))
	m.favTable.SetWidth(m.width)
	m.favTable.SetHeight(bodyHeight)
	m.histTable.SetWidth(m.width)
	m.histTable.SetHeight(bodyHeight)
	m.trendView.Width = m.width
	m.trendView.Height = bodyHeight
}

func (m *Model) newTable(cols []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(10),
	)
	t.SetStyles(m.theme.tableStyles())
	return t
}

func favoriteColumns(width int) []table.Column {
	labelWidth := maxInt(10, (width-16)/2)
	return []table.Column{
		{Title: "From", Width: labelWidth},
		{Title: "To", Width: labelWidth},
		{Title: "Rate", Width: 12},
	}
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Time", Width: 19},
		{Title: "From", Width: 5},
		{Title: "To", Width: 5},
		{Title: "Amount", Width: 12},
		{Title: "Result", Width: 12},
		{Title: "Rate", Width: 10},
	}
}

func (m *Model) applyFavorites() {
	rows := make([]table.Row, 0, len(m.favorites))
	for _, q := range m.favorites {
		rate := "n/a"
		if q.Err == nil {
			rate = stats.FormatRate(q.Rate)
		}
		rows = append(rows, table.Row{m.currencyLabel(q.Pair.From), m.currencyLabel(q.Pair.To), rate})
	}
	m.favTable.SetRows(rows)
	if c := m.favTable.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.favTable.SetCursor(len(rows) - 1)
	}
}

func (m *Model) applyHistory() {
	rows := make([]table.Row, 0, len(m.history))
	for _, e := range m.history {
		rows = append(rows, table.Row{
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.From,
			e.To,
			stats.FormatAmount(e.Amount),
			stats.FormatAmount(e.Result),
			stats.FormatRate(e.Rate),
		})
	}
	m.histTable.SetRows(rows)
	if len(rows) > 0 {
		m.histTable.SetCursor(0)
	}
}

func (m *Model) currencyLabel(code string) string {
	name := m.svc.CurrencyName(code)
	if name == "" || name == code {
		return code
	}
	return code + " - " + name
}

func (m *Model) renderTrend() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.trendView.SetContent(m.renderTrendContent(width))
}

func (m *Model) renderTrendContent(width int) string {
	if m.trendErr != "" {
		return m.theme.errorText.Render("Failed to load trend: " + m.trendErr)
	}
	if m.trend == nil {
		return "Loading trend..."
	}
	t := m.trend
	cards := m.renderSummaryCards(t, width)

	var chart bytes.Buffer
	title := fmt.Sprintf("%s to %s, last %d days", t.From, t.To, m.opts.Days)
	series := []stats.Series{{Name: "Rate", Values: stats.Rates(t.Series)}}
	if err := stats.PlotSeriesWithColor(&chart, title, series, stats.PlotWidthFor(width), plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	var days bytes.Buffer
	if err := stats.RenderChangeTable(&days, t.Changes, t.Summary.MaxFluctuation); err != nil {
		return fmt.Sprintf("Failed to render rates: %v", err)
	}
	return strings.TrimRight(cards+"\n\n"+chart.String()+"\n"+m.theme.muted.Render(strings.TrimRight(days.String(), "\n")), "\n")
}

func (m *Model) renderSummaryCards(t *model.Trend, width int) string {
	sum := t.Summary
	changeStyle := m.theme.positive
	if sum.NetChangePct < 0 {
		changeStyle = m.theme.negative
	}
	fluct := "-"
	if sum.MaxFluctuation != nil {
		fluct = fmt.Sprintf("%s (%s)", sum.MaxFluctuation.Point.Date.Format(model.DateLayout), stats.FormatRate(sum.MaxFluctuation.Delta))
	}
	cards := []string{
		m.metricCard("Change", changeStyle.Render(stats.FormatChange(sum.NetChangePct))),
		m.metricCard("Highest", m.theme.cardValue.Render(fmt.Sprintf("%s on %s", stats.FormatRate(sum.Highest.Rate), sum.Highest.Date.Format(model.DateLayout)))),
		m.metricCard("Lowest", m.theme.cardValue.Render(fmt.Sprintf("%s on %s", stats.FormatRate(sum.Lowest.Rate), sum.Lowest.Date.Format(model.DateLayout)))),
		m.metricCard("Biggest move", m.theme.cardValue.Render(fluct)),
	}
	if width < 100 {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3])
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", m.theme.cardTitle.Render(label), value)
	return m.theme.card.Render(content)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, m.theme.activeNav.Render(tab))
		} else {
			parts = append(parts, m.theme.inactiveNav.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + padLines(m.renderStatus(), m.width)
}

func (m *Model) renderStatus() string {
	updated := "loading..."
	if !m.updatedAt.IsZero() {
		updated = m.updatedAt.Format("15:04:05")
	}
	mode := "light"
	if m.theme.dark {
		mode = "dark"
	}
	status := fmt.Sprintf("Trend: %s to %s, %d days  Updated: %s  Refresh: %s  Theme: %s",
		m.opts.From, m.opts.To, m.opts.Days, updated, m.opts.Refresh, mode)
	return m.theme.header.Render(truncateLine(status, m.width))
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabFavorites:
		if !m.favLoaded {
			return "Loading favorites..."
		}
		if len(m.favorites) == 0 {
			return "No favorites yet. Add one with: fxdash fav add FROM TO"
		}
		return m.favTable.View()
	case tabHistory:
		if len(m.history) == 0 {
			return "No conversion history."
		}
		return m.histTable.View()
	default:
		return m.trendView.View()
	}
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Refresh: r  Theme: t  Quit: q"
	switch m.activeTab {
	case tabFavorites:
		help = "Nav: left/right  Remove: d  Refresh: r  Theme: t  Quit: q"
	case tabHistory:
		help = "Nav: left/right  Clear: c  Theme: t  Quit: q"
	case tabTrend:
		help = "Nav: left/right  Scroll: up/down  Range: -/=  Refresh: r  Theme: t  Quit: q"
	}
	return m.theme.header.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	help := m.renderHelp()
	if m.notice == "" {
		return help
	}
	style := m.theme.infoText
	if m.noticeErr {
		style = m.theme.errorText
	}
	return help + "\n" + style.Render(truncateLine(m.notice, m.width))
}

func (m *Model) renderConfirmModal() string {
	body := []string{
		m.theme.cardValue.Render("Clear conversion history?"),
		fmt.Sprintf("%d entries will be deleted. This cannot be undone.", len(m.history)),
		m.theme.header.Render("y to confirm / any other key to cancel"),
	}
	box := m.theme.modal.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func nextPreset(days int) int {
	for _, p := range trendDayPresets {
		if p > days {
			return p
		}
	}
	return trendDayPresets[len(trendDayPresets)-1]
}

func prevPreset(days int) int {
	for i := len(trendDayPresets) - 1; i >= 0; i-- {
		if trendDayPresets[i] < days {
			return trendDayPresets[i]
		}
	}
	return trendDayPresets[0]
}
