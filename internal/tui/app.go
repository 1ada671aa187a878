package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/habibGamal/preparation-system/internal/config"
	"github.com/habibGamal/preparation-system/internal/database"
	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
	"github.com/habibGamal/preparation-system/internal/services/recipes"
	"github.com/habibGamal/preparation-system/internal/services/settings"
	orderviews "github.com/habibGamal/preparation-system/internal/tui/views/orders"
	recipeviews "github.com/habibGamal/preparation-system/internal/tui/views/recipes"
	settingviews "github.com/habibGamal/preparation-system/internal/tui/views/settings"
	stockviews "github.com/habibGamal/preparation-system/internal/tui/views/stock"
	"github.com/habibGamal/preparation-system/internal/util"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// MaxContentWidth is the maximum width for content display
const MaxContentWidth = 120

// maxAlerts bounds the alert history.
const maxAlerts = 10

// Module represents a view module in the application.
type Module int

const (
	ModuleDashboard Module = iota
	ModuleRecipes
	ModuleOrders
	ModuleInventory
	ModuleDocuments
	ModuleSettings
	ModuleHelp
	ModuleQuit
)

func (m Module) String() string {
	switch m {
	case ModuleDashboard:
		return "dashboard"
	case ModuleRecipes:
		return "recipes"
	case ModuleOrders:
		return "orders"
	case ModuleInventory:
		return "inventory"
	case ModuleDocuments:
		return "documents"
	case ModuleSettings:
		return "settings"
	case ModuleHelp:
		return "help"
	case ModuleQuit:
		return "quit"
	default:
		return fmt.Sprintf("module(%d)", int(m))
	}
}

// App is the main Bubble Tea application model.
type App struct {
	db     *database.DB
	config *config.Config
	clock  util.Clock
	logger *slog.Logger

	inventorySvc *inventory.Service
	recipeSvc    *recipes.Service
	orderSvc     *manufacturing.Service
	settingsSvc  *settings.Service

	recipeView   *recipeviews.RecipeView
	orderView    *orderviews.OrderView
	productView  *stockviews.ProductView
	documentView *stockviews.DocumentView
	settingsEdit *settingviews.Editor

	// Effective settings, refreshed on start and after every save.
	settings models.Settings
	overview overview

	theme       *Theme
	keys        KeyMap
	width       int
	height      int
	ready       bool
	quitting    bool
	showConfirm bool

	currentModule  Module
	previousModule Module
	showDetail     bool
	searchMode     bool
	searchInput    []rune

	alerts []Alert
}

// overview holds the dashboard counters.
type overview struct {
	rawProducts          int
	manufacturedProducts int
	lowStock             int
	draftOrders          int
	completedOrders      int
	draftDocuments       int
	recipes              []recipeProgress
}

type recipeProgress struct {
	name   string
	status *models.RecipeStatus
}

// Alert represents a status line message.
type Alert struct {
	Level   AlertLevel
	Message string
	Time    time.Time
}

// AlertLevel indicates the severity of an alert.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// tickMsg is sent periodically to update the clock display.
type tickMsg time.Time

type settingsMsg struct {
	settings models.Settings
	err      error
}

type overviewMsg struct {
	overview overview
	err      error
}

// loadedMsg reports the result of reloading a module list.
type loadedMsg struct {
	module Module
	err    error
}

// detailMsg reports the result of loading a detail screen.
type detailMsg struct {
	err error
}

// actionMsg reports the outcome of a user action.
type actionMsg struct {
	alerts   []Alert
	err      error
	what     string
	settings *models.Settings
}

// New creates a new App instance.
func New(db *database.DB, cfg *config.Config, clock util.Clock) *App {
	logger := slog.Default().With("component", "tui")

	inventorySvc := inventory.NewService(db.DB, inventory.WithClock(clock))
	recipeSvc := recipes.NewService(db.DB, recipes.WithClock(clock))
	orderSvc := manufacturing.NewService(db.DB, recipeSvc, manufacturing.WithClock(clock))
	settingsSvc := settings.NewService(db.DB, settings.FromConfig(cfg.Manufacturing), nil)

	a := &App{
		db:           db,
		config:       cfg,
		clock:        clock,
		logger:       logger,
		inventorySvc: inventorySvc,
		recipeSvc:    recipeSvc,
		orderSvc:     orderSvc,
		settingsSvc:  settingsSvc,
		recipeView:   recipeviews.NewRecipeView(recipeSvc, inventorySvc),
		orderView:    orderviews.NewOrderView(orderSvc),
		productView:  stockviews.NewProductView(inventorySvc),
		documentView: stockviews.NewDocumentView(inventorySvc),
		settings:     settingsSvc.Base(),
		theme:        NewTheme(cfg.Display.ColorScheme),
		keys:         DefaultKeyMap(),
	}
	a.settingsEdit = settingviews.NewEditor(settingsSvc, a.settings)
	a.recipeView.SetClock(clock)

	a.theme.StyleTable(a.recipeView.Table())
	a.theme.StyleTable(a.orderView.Table())
	a.theme.StyleTable(a.productView.Table())
	a.theme.StyleTable(a.documentView.Table())

	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		a.loadSettings(),
	)
}

// tickCmd returns a command that sends tick messages.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case tickMsg:
		return a, tickCmd()

	case settingsMsg:
		if msg.err != nil {
			a.AddAlert(AlertCritical, "Failed to load settings: "+msg.err.Error())
			return a, nil
		}
		a.settings = msg.settings
		// Keep edits the user typed while the load was in flight.
		if len(a.settingsEdit.Values()) == 0 {
			a.settingsEdit.Reset(msg.settings)
		}
		return a, a.loadOverview()

	case overviewMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Failed to load overview: "+msg.err.Error())
			return a, nil
		}
		a.overview = msg.overview
		return a, nil

	case loadedMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, fmt.Sprintf("Failed to load %s: %s", msg.module, msg.err))
		}
		return a, nil

	case detailMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, "Failed to load details: "+msg.err.Error())
			a.showDetail = false
			return a, nil
		}
		a.showDetail = true
		return a, nil

	case actionMsg:
		if msg.err != nil {
			a.AddAlert(AlertWarning, fmt.Sprintf("%s failed: %s", msg.what, msg.err))
			return a, nil
		}
		if msg.settings != nil {
			a.settings = *msg.settings
		}
		for _, alert := range msg.alerts {
			a.AddAlert(alert.Level, alert.Message)
		}
		return a, a.loadOverview()
	}

	return a, nil
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit confirmation is modal.
	if a.showConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			a.quitting = true
			return a, tea.Quit
		case "n", "N", "esc":
			a.showConfirm = false
		}
		return a, nil
	}

	if a.searchMode {
		return a.handleSearchKeys(msg)
	}

	if module, ok := a.keys.ModuleFor(msg); ok {
		return a, a.switchModule(module)
	}

	// The settings form takes all remaining input, including q.
	if a.currentModule == ModuleSettings {
		return a.handleSettingsKeys(msg)
	}

	if a.keys.IsQuit(msg) {
		a.showConfirm = true
		return a, nil
	}

	if a.keys.Back.Matches(msg) {
		if a.showDetail {
			a.showDetail = false
			return a, nil
		}
		if a.currentModule == ModuleHelp {
			a.currentModule = a.previousModule
		}
		return a, nil
	}

	switch a.currentModule {
	case ModuleRecipes:
		return a.handleRecipeKeys(msg)
	case ModuleOrders:
		return a.handleOrderKeys(msg)
	case ModuleInventory:
		return a.handleInventoryKeys(msg)
	case ModuleDocuments:
		return a.handleDocumentKeys(msg)
	}

	return a, nil
}

// switchModule activates module and returns the command that loads it.
func (a *App) switchModule(module Module) tea.Cmd {
	switch module {
	case ModuleQuit:
		a.showConfirm = true
		return nil
	case ModuleHelp:
		if a.currentModule != ModuleHelp {
			a.previousModule = a.currentModule
		}
		a.currentModule = ModuleHelp
		return nil
	}

	a.currentModule = module
	a.showDetail = false

	switch module {
	case ModuleDashboard:
		return a.loadOverview()
	case ModuleRecipes:
		return a.load(ModuleRecipes, a.recipeView.Load)
	case ModuleOrders:
		return a.load(ModuleOrders, a.orderView.Load)
	case ModuleInventory:
		return a.load(ModuleInventory, a.productView.Load)
	case ModuleDocuments:
		return a.load(ModuleDocuments, a.documentView.Load)
	case ModuleSettings:
		return a.loadSettings()
	}
	return nil
}

func (a *App) handleRecipeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.keys.Recalculate.Matches(msg):
		return a, a.recalculate()
	case a.showDetail:
		return a, nil
	case a.keys.Up.Matches(msg):
		a.recipeView.MoveUp()
	case a.keys.Down.Matches(msg):
		a.recipeView.MoveDown()
	case a.keys.Select.Matches(msg):
		if a.recipeView.Selected() != nil {
			return a, a.detail(func(ctx context.Context) error {
				return a.recipeView.LoadDetail(ctx, a.settings)
			})
		}
	}
	return a, nil
}

func (a *App) handleOrderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.keys.Complete.Matches(msg):
		if o := a.orderView.Selected(); o != nil && o.IsDraft() {
			return a, a.completeOrder()
		}
	case a.keys.Clone.Matches(msg):
		return a, a.cloneOrder()
	case a.showDetail:
		return a, nil
	case a.keys.Up.Matches(msg):
		a.orderView.MoveUp()
	case a.keys.Down.Matches(msg):
		a.orderView.MoveDown()
	case a.keys.Select.Matches(msg):
		if a.orderView.Selected() != nil {
			return a, a.detail(func(ctx context.Context) error {
				return a.orderView.LoadDetail(ctx, a.settings)
			})
		}
	case a.keys.Filter.Matches(msg):
		a.orderView.CycleFilter()
		return a, a.load(ModuleOrders, a.orderView.Load)
	case a.keys.PageUp.Matches(msg):
		a.orderView.PrevPage()
		return a, a.load(ModuleOrders, a.orderView.Load)
	case a.keys.PageDown.Matches(msg):
		a.orderView.NextPage()
		return a, a.load(ModuleOrders, a.orderView.Load)
	}
	return a, nil
}

func (a *App) handleInventoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.keys.Up.Matches(msg):
		a.productView.MoveUp()
	case a.keys.Down.Matches(msg):
		a.productView.MoveDown()
	case a.keys.Search.Matches(msg):
		a.searchMode = true
		a.searchInput = nil
	case a.keys.TypeFilter.Matches(msg):
		a.productView.CycleType()
		return a, a.load(ModuleInventory, a.productView.Load)
	case a.keys.LowStock.Matches(msg):
		a.productView.ToggleLowStock()
		return a, a.load(ModuleInventory, a.productView.Load)
	case a.keys.PageUp.Matches(msg):
		a.productView.PrevPage()
		return a, a.load(ModuleInventory, a.productView.Load)
	case a.keys.PageDown.Matches(msg):
		a.productView.NextPage()
		return a, a.load(ModuleInventory, a.productView.Load)
	}
	return a, nil
}

func (a *App) handleDocumentKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case a.keys.CloseDoc.Matches(msg):
		if d := a.documentView.Selected(); d != nil && !d.IsClosed() {
			return a, a.closeDocument()
		}
	case a.keys.Clone.Matches(msg):
		if d := a.documentView.Selected(); d != nil && d.Kind.Cloneable() {
			return a, a.cloneDocument()
		}
	case a.showDetail:
		return a, nil
	case a.keys.Up.Matches(msg):
		a.documentView.MoveUp()
	case a.keys.Down.Matches(msg):
		a.documentView.MoveDown()
	case a.keys.Select.Matches(msg):
		if a.documentView.Selected() != nil {
			return a, a.detail(a.documentView.LoadDetail)
		}
	case a.keys.Kind.Matches(msg):
		a.documentView.CycleKind()
		return a, a.load(ModuleDocuments, a.documentView.Load)
	case a.keys.PageUp.Matches(msg):
		a.documentView.PrevPage()
		return a, a.load(ModuleDocuments, a.documentView.Load)
	case a.keys.PageDown.Matches(msg):
		a.documentView.NextPage()
		return a, a.load(ModuleDocuments, a.documentView.Load)
	}
	return a, nil
}

func (a *App) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.settingsEdit.HandleKey(msg.String())

	if a.settingsEdit.Cancelled() {
		a.settingsEdit.Reset(a.settings)
		return a, nil
	}
	if a.settingsEdit.Submitted() {
		return a, a.saveSettings()
	}
	return a, nil
}

// handleSearchKeys edits the product name filter.
func (a *App) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		a.searchMode = false
		a.searchInput = nil
		a.productView.SetSearch("")
		return a, a.load(ModuleInventory, a.productView.Load)
	case "enter":
		a.searchMode = false
		a.productView.SetSearch(string(a.searchInput))
		return a, a.load(ModuleInventory, a.productView.Load)
	case "backspace":
		if len(a.searchInput) > 0 {
			a.searchInput = a.searchInput[:len(a.searchInput)-1]
		}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			a.searchInput = append(a.searchInput, msg.Runes...)
		}
	}

	return a, nil
}

// ============================================================================
// COMMANDS
// ============================================================================

func (a *App) load(module Module, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{module: module, err: fn(context.Background())}
	}
}

func (a *App) detail(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return detailMsg{err: fn(context.Background())}
	}
}

func (a *App) loadSettings() tea.Cmd {
	return func() tea.Msg {
		s, err := a.settingsSvc.Effective(context.Background())
		return settingsMsg{settings: s, err: err}
	}
}

func (a *App) saveSettings() tea.Cmd {
	return func() tea.Msg {
		next, n, err := a.settingsEdit.Save(context.Background())
		if err != nil {
			return actionMsg{what: "Saving settings", err: err}
		}
		if n == 0 {
			return actionMsg{alerts: []Alert{{Level: AlertInfo, Message: "Settings unchanged"}}}
		}
		return actionMsg{
			alerts:   []Alert{{Level: AlertInfo, Message: fmt.Sprintf("%d setting(s) saved", n)}},
			settings: &next,
		}
	}
}

func (a *App) recalculate() tea.Cmd {
	settings := a.settings
	return func() tea.Msg {
		ok, err := a.recipeView.Recalculate(context.Background(), settings)
		if err != nil {
			return actionMsg{what: "Recalculation", err: err}
		}
		if !ok {
			return actionMsg{alerts: []Alert{{
				Level:   AlertWarning,
				Message: fmt.Sprintf("Not enough completed orders (need %d)", settings.MinimumOrders),
			}}}
		}
		return actionMsg{alerts: []Alert{{Level: AlertInfo, Message: "Recipe recalculated"}}}
	}
}

// completeOrder completes the highlighted draft. Variance warnings are
// raised as alerts with the summary last so it shows first.
func (a *App) completeOrder() tea.Cmd {
	settings := a.settings
	return func() tea.Msg {
		order, warnings, err := a.orderView.CompleteSelected(context.Background(), settings)
		if err != nil {
			return actionMsg{what: "Completing order", err: err}
		}

		name := order.ProductID
		if order.Product != nil {
			name = order.Product.Name
		}

		alerts := make([]Alert, 0, len(warnings)+1)
		for _, w := range warnings {
			alerts = append(alerts, Alert{Level: AlertWarning, Message: w.Message})
		}
		summary := Alert{Level: AlertInfo, Message: fmt.Sprintf("Order for %s completed", name)}
		if len(warnings) > 0 {
			summary = Alert{
				Level:   AlertWarning,
				Message: fmt.Sprintf("Order for %s completed with %d variance warning(s)", name, len(warnings)),
			}
		}
		return actionMsg{alerts: append(alerts, summary)}
	}
}

func (a *App) cloneOrder() tea.Cmd {
	return func() tea.Msg {
		if _, err := a.orderView.CloneSelected(context.Background()); err != nil {
			return actionMsg{what: "Cloning order", err: err}
		}
		return actionMsg{alerts: []Alert{{Level: AlertInfo, Message: "Order cloned into a new draft"}}}
	}
}

func (a *App) closeDocument() tea.Cmd {
	return func() tea.Msg {
		doc, err := a.documentView.CloseSelected(context.Background())
		if err != nil {
			return actionMsg{what: "Closing document", err: err}
		}
		return actionMsg{alerts: []Alert{{
			Level:   AlertInfo,
			Message: fmt.Sprintf("%s closed, total %s", doc.Kind.Label(), doc.Total.StringFixed(2)),
		}}}
	}
}

func (a *App) cloneDocument() tea.Cmd {
	return func() tea.Msg {
		if _, err := a.documentView.CloneSelected(context.Background()); err != nil {
			return actionMsg{what: "Cloning document", err: err}
		}
		return actionMsg{alerts: []Alert{{Level: AlertInfo, Message: "Document cloned into a new draft"}}}
	}
}

// loadOverview gathers the dashboard counters.
func (a *App) loadOverview() tea.Cmd {
	settings := a.settings
	return func() tea.Msg {
		ov, err := a.buildOverview(context.Background(), settings)
		return overviewMsg{overview: ov, err: err}
	}
}

func (a *App) buildOverview(ctx context.Context, s models.Settings) (overview, error) {
	var ov overview
	one := models.Pagination{Page: 1, PageSize: 1}

	raw, manufactured := models.ProductTypeRaw, models.ProductTypeManufactured
	draft, completed := models.OrderStatusDraft, models.OrderStatusCompleted
	docDraft := models.DocumentStatusDraft

	counts := []struct {
		dst *int
		fn  func() (int, error)
	}{
		{&ov.rawProducts, func() (int, error) {
			l, err := a.inventorySvc.ListProducts(ctx, models.ProductFilter{Type: &raw}, one)
			if err != nil {
				return 0, err
			}
			return l.Total, nil
		}},
		{&ov.manufacturedProducts, func() (int, error) {
			l, err := a.inventorySvc.ListProducts(ctx, models.ProductFilter{Type: &manufactured}, one)
			if err != nil {
				return 0, err
			}
			return l.Total, nil
		}},
		{&ov.lowStock, func() (int, error) {
			l, err := a.inventorySvc.ListProducts(ctx, models.ProductFilter{LowStock: true}, one)
			if err != nil {
				return 0, err
			}
			return l.Total, nil
		}},
		{&ov.draftOrders, func() (int, error) {
			l, err := a.orderSvc.ListOrders(ctx, models.OrderFilter{Status: &draft}, one)
			if err != nil {
				return 0, err
			}
			return l.Total, nil
		}},
		{&ov.completedOrders, func() (int, error) {
			l, err := a.orderSvc.ListOrders(ctx, models.OrderFilter{Status: &completed}, one)
			if err != nil {
				return 0, err
			}
			return l.Total, nil
		}},
		{&ov.draftDocuments, func() (int, error) {
			_, n, err := a.inventorySvc.ListDocuments(ctx, models.DocumentFilter{Status: &docDraft}, one)
			return n, err
		}},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return ov, err
		}
		*c.dst = n
	}

	list, err := a.recipeSvc.ListRecipes(ctx)
	if err != nil {
		return ov, err
	}
	for _, r := range list {
		if r.Product == nil {
			continue
		}
		status, err := a.recipeSvc.Status(ctx, r.Product, s)
		if err != nil {
			return ov, err
		}
		ov.recipes = append(ov.recipes, recipeProgress{name: r.Product.Name, status: status})
	}
	return ov, nil
}

// ============================================================================
// RENDERING
// ============================================================================

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.quitting {
		return a.theme.Title.Render("Preparation system shutting down...")
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderAlertBar())
	b.WriteString("\n")

	contentHeight := ContentHeight(a.height, 6)
	if a.showConfirm {
		b.WriteString(a.renderConfirmDialog(contentHeight))
	} else {
		b.WriteString(a.renderContent(contentHeight))
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

func (a *App) renderHeader() string {
	title := fmt.Sprintf("PREPARATION SYSTEM v%s", Version)
	info := fmt.Sprintf("%s | %s", strings.ToUpper(a.currentModule.String()), a.clock.Now().Format(a.config.Display.DateFormat))
	if GetBreakpoint(a.width) == BreakpointNarrow {
		title = "PREP v" + Version
		info = strings.ToUpper(a.currentModule.String())
	}

	spacing := max(a.width-lipgloss.Width(title)-lipgloss.Width(info)-4, 1)

	header := a.theme.Header.Render(title) +
		strings.Repeat(" ", spacing) +
		a.theme.Header.Render(info)

	return header + "\n" + a.theme.DrawDoubleLine(a.width)
}

func (a *App) renderAlertBar() string {
	now := a.clock.Now()
	timeStr := now.Format(a.config.Display.TimeFormat)

	var alertText string
	if len(a.alerts) > 0 {
		alert := a.alerts[0]
		switch alert.Level {
		case AlertCritical:
			alertText = a.theme.AlertCrit.Render("CRITICAL: " + alert.Message)
		case AlertWarning:
			alertText = a.theme.AlertWarn.Render("WARNING: " + alert.Message)
		default:
			alertText = a.theme.Alert.Render("INFO: " + alert.Message)
		}
	} else {
		alertText = a.theme.Muted.Render("Ready")
	}

	return a.theme.Value.Render(timeStr) + a.theme.Muted.Render(" | ") + alertText
}

func (a *App) renderContent(height int) string {
	content := a.moduleContent(height)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	contentStyle := lipgloss.NewStyle().
		Width(ContentWidth(a.width, 20, MaxContentWidth))

	return style.Render(contentStyle.Render(content))
}

func (a *App) moduleContent(height int) string {
	width := ContentWidth(a.width, 20, MaxContentWidth)

	switch a.currentModule {
	case ModuleRecipes:
		if a.showDetail {
			return a.recipeView.RenderDetail(a.settings)
		}
		return a.recipeView.Render(width, height)
	case ModuleOrders:
		if a.showDetail {
			return a.orderView.RenderDetail()
		}
		return a.orderView.Render(width, height)
	case ModuleInventory:
		var search string
		if a.searchMode {
			search = a.theme.Label.Render("SEARCH: ") +
				a.theme.Accent.Render(string(a.searchInput)+"_") + "\n\n"
		}
		return search + a.productView.Render(width, height)
	case ModuleDocuments:
		if a.showDetail {
			return a.documentView.RenderDetail()
		}
		return a.documentView.Render(width, height)
	case ModuleSettings:
		return a.settingsEdit.Render()
	case ModuleHelp:
		return a.renderHelp()
	default:
		return a.renderDashboard(width)
	}
}

func (a *App) renderDashboard(width int) string {
	ov := a.overview
	row := func(label string, n int) string {
		return a.theme.Label.Render(fmt.Sprintf("%-18s", label)) + a.theme.Value.Render(fmt.Sprintf("%5d", n))
	}

	stock := strings.Join([]string{
		row("Raw materials", ov.rawProducts),
		row("Manufactured", ov.manufacturedProducts),
		row("Below minimum", ov.lowStock),
		row("Draft documents", ov.draftDocuments),
	}, "\n")
	production := strings.Join([]string{
		row("Draft orders", ov.draftOrders),
		row("Completed orders", ov.completedOrders),
		row("Recipes", len(ov.recipes)),
	}, "\n")

	panelWidth := 36
	if GetBreakpoint(width) == BreakpointNarrow {
		panelWidth = width
	}

	var b strings.Builder
	b.WriteString(a.theme.Title.Render("═══ PRODUCTION OVERVIEW ═══"))
	b.WriteString("\n")
	b.WriteString(SideBySide(
		a.theme.Panel("STOCK", stock, panelWidth),
		a.theme.Panel("PRODUCTION", production, panelWidth),
		width, 2,
	))
	b.WriteString("\n\n")

	b.WriteString(a.theme.Accent.Bold(true).Render("RECIPE LEARNING"))
	b.WriteString("\n")
	if len(ov.recipes) == 0 {
		b.WriteString(a.theme.Muted.Render(fmt.Sprintf(
			"No recipes yet. A product needs %d completed orders.", a.settings.MinimumOrders)))
		return b.String()
	}
	for _, r := range ov.recipes {
		name := Truncate(r.name, 24)
		name += strings.Repeat(" ", max(24-lipgloss.Width(name), 0))
		state := a.theme.Success.Render("learning")
		if r.status.Frozen() {
			state = a.theme.Warning.Render("frozen")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			a.theme.Label.Render(name),
			a.theme.ProgressBar(r.status.CompletedOrders, a.settings.MaximumOrders, 22),
			a.theme.Value.Render(fmt.Sprintf("%d/%d", r.status.CompletedOrders, a.settings.MaximumOrders)),
			state,
		))
	}

	return b.String()
}

func (a *App) renderHelp() string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ HELP ═══"))
	b.WriteString("\n\n")

	b.WriteString(a.theme.Accent.Bold(true).Render("MODULES"))
	b.WriteString("\n")
	for _, mk := range a.keys.Modules {
		line := fmt.Sprintf("    %-8s  %s", strings.ToUpper(mk.Keys[0]), mk.Help)
		b.WriteString(a.theme.Primary.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.theme.Accent.Bold(true).Render("CONTROLS"))
	b.WriteString("\n")
	for _, k := range []Key{
		a.keys.Select, a.keys.Back, a.keys.Search, a.keys.PageUp, a.keys.PageDown,
		a.keys.Complete, a.keys.Clone, a.keys.CloseDoc, a.keys.Recalculate,
		a.keys.Filter, a.keys.Kind, a.keys.TypeFilter, a.keys.LowStock,
	} {
		line := fmt.Sprintf("    %-8s  %s", k.Keys[0], k.Help)
		b.WriteString(a.theme.Primary.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.theme.Muted.Render("Press Esc to return"))

	return b.String()
}

func (a *App) renderConfirmDialog(height int) string {
	dialog := a.theme.Box.Render(
		a.theme.Title.Render("CONFIRM EXIT") + "\n" +
			a.theme.Value.Render("Are you sure you want to exit?") + "\n\n" +
			a.theme.Label.Render("[Y]es  [N]o"),
	)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(dialog)
}

func (a *App) renderFooter() string {
	help := a.keys.StatusBarHelp()
	if GetBreakpoint(a.width) == BreakpointNarrow {
		help = "[F1]Help [F10]Quit"
	}
	return a.theme.DrawHorizontalLine(a.width) + "\n" + a.theme.Footer.Render(help)
}

// AddAlert adds a new alert to the front of the alert history.
func (a *App) AddAlert(level AlertLevel, message string) {
	a.alerts = append([]Alert{{
		Level:   level,
		Message: message,
		Time:    a.clock.Now(),
	}}, a.alerts...)

	if len(a.alerts) > maxAlerts {
		a.alerts = a.alerts[:maxAlerts]
	}
	if level != AlertInfo {
		a.logger.Warn("alert", "message", message)
	}
}

// ClearAlerts removes all alerts.
func (a *App) ClearAlerts() {
	a.alerts = nil
}

// Run starts the TUI application and returns when the user quits or ctx is
// cancelled.
func Run(ctx context.Context, db *database.DB, cfg *config.Config, clock util.Clock) error {
	app := New(db, cfg, clock)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
