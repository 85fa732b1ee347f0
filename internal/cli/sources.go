package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowplan/flowplan/pkg/catalog"
	"github.com/flowplan/flowplan/pkg/chain"
	"github.com/flowplan/flowplan/pkg/flow"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// newSourcesCmd creates the sources command.
func newSourcesCmd() *cobra.Command {
	var (
		rate    float64 = 1
		catPath string
	)

	cmd := &cobra.Command{
		Use:   "sources <item>",
		Short: "Interactively edit resource origins and replan",
		Long: `Open an interactive editor for the resource origins feeding a target item.

Every extraction step in the item's production chain is listed with its
configured origins. Cycling an origin's purity, adding an origin, or
removing one replans immediately and updates the step and power totals.

Keys:
  up/down    select an origin
  space      cycle purity (impure, normal, pure)
  a          add an origin to the selected item
  d          remove the selected origin
  q          quit and print the matching plan command`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(cmd, args[0], rate, catPath)
		},
	}

	cmd.Flags().Float64VarP(&rate, "rate", "r", rate, "target production rate per minute")
	cmd.Flags().StringVar(&catPath, "catalog", "", "catalog TOML file (builtin catalog if empty)")

	return cmd
}

func runSources(cmd *cobra.Command, item string, rate float64, catPath string) error {
	logger := loggerFromContext(cmd.Context())

	cat := catalog.Builtin()
	if catPath != "" {
		var err error
		cat, err = catalog.Load(catPath)
		if err != nil {
			return err
		}
	}

	model, err := newSourcesModel(cat, item, rate, loggingSourceHooks{logger: logger})
	if err != nil {
		return err
	}

	prog := tea.NewProgram(model, tea.WithContext(cmd.Context()))
	final, err := prog.Run()
	if err != nil {
		return err
	}

	m, ok := final.(sourcesModel)
	if !ok {
		return nil
	}

	printSuccess("Configured %d extraction items", len(m.extractors))
	for _, flag := range sourceFlags(m.cfg) {
		printDetail("--source %s", flag)
	}
	return nil
}

// loggingSourceHooks reports origin edits to the debug log.
type loggingSourceHooks struct {
	logger *log.Logger
}

func (h loggingSourceHooks) SourceQualityChanged(item string, index int, origin flow.Origin) {
	h.logger.Debug("origin changed", "item", item, "index", index, "quality", origin.Quality, "rate", origin.Rate)
}

func (h loggingSourceHooks) SourceAdded(item string) {
	h.logger.Debug("origin added", "item", item)
}

func (h loggingSourceHooks) SourceRemoved(item string, index int) {
	h.logger.Debug("origin removed", "item", item, "index", index)
}

// =============================================================================
// sourcesModel - Interactive origin editing
// =============================================================================

// sourceRow addresses one configured origin, or an item's placeholder row
// when it has no explicit origins (index -1).
type sourceRow struct {
	item  string
	index int
}

// sourcesModel is the bubbletea model for origin editing.
type sourcesModel struct {
	cat   *catalog.Catalog
	item  string
	rate  float64
	cfg   flow.SourceConfig
	hooks flow.SourceHooks

	extractors []string // extraction items in the chain, sorted
	rows       []sourceRow
	cursor     int

	// Plan totals, refreshed after every edit.
	steps int
	power float64
	err   error
}

func newSourcesModel(cat *catalog.Catalog, item string, rate float64, hooks flow.SourceHooks) (sourcesModel, error) {
	m := sourcesModel{
		cat:   cat,
		item:  item,
		rate:  rate,
		cfg:   flow.SourceConfig{},
		hooks: hooks,
	}

	g, err := chain.Build(cat, item, rate)
	if err != nil {
		return sourcesModel{}, err
	}
	seen := map[string]bool{}
	for _, n := range g.Nodes {
		if n.Extractor && !seen[n.Item] {
			seen[n.Item] = true
			m.extractors = append(m.extractors, n.Item)
		}
	}
	sort.Strings(m.extractors)

	m.rebuildRows()
	m.replan()
	return m, nil
}

// rebuildRows flattens the configuration into navigable rows, one per
// origin plus a placeholder per unconfigured item.
func (m *sourcesModel) rebuildRows() {
	m.rows = m.rows[:0]
	for _, item := range m.extractors {
		origins := m.cfg[item]
		if len(origins) == 0 {
			m.rows = append(m.rows, sourceRow{item: item, index: -1})
			continue
		}
		for i := range origins {
			m.rows = append(m.rows, sourceRow{item: item, index: i})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// replan recomputes step and power totals for the current configuration.
func (m *sourcesModel) replan() {
	g, err := chain.Build(m.cat, m.item, m.rate)
	if err != nil {
		m.err = err
		return
	}
	nodes, _ := flow.Expand(g.Nodes, m.cfg)
	var power float64
	for _, n := range nodes {
		power += n.PowerDraw
	}
	m.steps = len(nodes)
	m.power = power
	m.err = nil
}

func (m sourcesModel) Init() tea.Cmd {
	return nil
}

func (m sourcesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc", "enter":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case " ", "space", "right", "l":
		m.cycleQuality()

	case "a":
		m.addOrigin()

	case "d":
		m.removeOrigin()
	}

	return m, nil
}

// cycleQuality advances the selected origin through the purity presets.
// A placeholder row first materializes the implicit normal origin.
func (m *sourcesModel) cycleQuality() {
	if len(m.rows) == 0 {
		return
	}
	row := m.rows[m.cursor]
	if row.index == -1 {
		m.cfg[row.item] = []flow.Origin{flow.OriginNormal}
		row.index = 0
	}

	var next flow.Origin
	switch m.cfg[row.item][row.index].Quality {
	case "impure":
		next = flow.OriginNormal
	case "normal":
		next = flow.OriginPure
	default:
		next = flow.OriginImpure
	}
	m.cfg[row.item][row.index] = next
	m.hooks.SourceQualityChanged(row.item, row.index, next)

	m.rebuildRows()
	m.replan()
}

// addOrigin appends a normal origin to the selected item.
func (m *sourcesModel) addOrigin() {
	if len(m.rows) == 0 {
		return
	}
	row := m.rows[m.cursor]
	if row.index == -1 {
		// Materialize the implicit origin first so the addition is visible.
		m.cfg[row.item] = []flow.Origin{flow.OriginNormal}
	}
	m.cfg[row.item] = append(m.cfg[row.item], flow.OriginNormal)
	m.hooks.SourceAdded(row.item)

	m.rebuildRows()
	m.replan()
}

// removeOrigin deletes the selected origin. Removing the last origin
// returns the item to the implicit single normal deposit.
func (m *sourcesModel) removeOrigin() {
	if len(m.rows) == 0 {
		return
	}
	row := m.rows[m.cursor]
	if row.index == -1 {
		return
	}

	origins := m.cfg[row.item]
	m.cfg[row.item] = append(origins[:row.index], origins[row.index+1:]...)
	if len(m.cfg[row.item]) == 0 {
		delete(m.cfg, row.item)
	}
	m.hooks.SourceRemoved(row.item, row.index)

	m.rebuildRows()
	m.replan()
}

func (m sourcesModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Sources for %s @ %.4g/min", m.item, m.rate)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  space cycle purity  a add  d remove  q quit"))
	b.WriteString("\n\n")

	lastItem := ""
	for i, row := range m.rows {
		if row.item != lastItem {
			b.WriteString(StyleValue.Render(m.cat.ItemName(row.item)))
			b.WriteString("\n")
			lastItem = row.item
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		var label string
		if row.index == -1 {
			label = "normal (default)"
		} else {
			o := m.cfg[row.item][row.index]
			label = fmt.Sprintf("%s (%.4g/min per unit)", o.Quality, o.Rate)
		}

		line := fmt.Sprintf("  %s%s", cursor, label)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("plan error: %v", m.err)))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d steps · %.4g MW", m.steps, m.power)))
	}
	b.WriteString("\n")

	return b.String()
}

// sourceFlags renders the configuration as plan --source values.
func sourceFlags(cfg flow.SourceConfig) []string {
	items := make([]string, 0, len(cfg))
	for item := range cfg {
		items = append(items, item)
	}
	sort.Strings(items)

	out := make([]string, 0, len(items))
	for _, item := range items {
		qualities := make([]string, len(cfg[item]))
		for i, o := range cfg[item] {
			qualities[i] = o.Quality
		}
		out = append(out, item+"="+strings.Join(qualities, ","))
	}
	return out
}
