// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/patrickmn/go-cache"

	"github.com/cybrota/nametag/account"
	"github.com/cybrota/nametag/utree"
)

// Focus targets, cycled with tab
const (
	focusSearch = iota
	focusResults
	focusPage
)

// Model represents the Bubble Tea application state
type Model struct {
	ready bool

	searchInput  textinput.Model
	resultsList  list.Model
	pageViewport viewport.Model

	// Data
	tree      *utree.Tree
	pageCache *cache.Cache
	config    *Config

	// State
	focusIndex int
	results    []accountItem
	selected   int
	lastQuery  string
	status     string
	statusErr  bool

	// Styling
	styles          *Styles
	glamourRenderer *glamour.TermRenderer

	// Dimensions
	width  int
	height int
}

// Styles holds all the styling for the application
type Styles struct {
	BorderFocused  lipgloss.Style
	BorderBlurred  lipgloss.Style
	Title          lipgloss.Style
	InputPrompt    lipgloss.Style
	HelpKey        lipgloss.Style
	HelpDesc       lipgloss.Style
	SuccessMessage lipgloss.Style
	ErrorMessage   lipgloss.Style
}

// NewStyles builds the styles from the detected color scheme
func NewStyles() *Styles {
	scheme := GetColorScheme()
	return &Styles{
		BorderFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(scheme.BorderFocus).
			Bold(true),
		BorderBlurred: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(scheme.Border),
		Title: lipgloss.NewStyle().
			Foreground(scheme.Title).
			Padding(0, 1).
			Bold(true),
		InputPrompt: lipgloss.NewStyle().
			Foreground(scheme.Prompt).
			Bold(true),
		HelpKey: lipgloss.NewStyle().
			Foreground(scheme.HelpKey).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(scheme.HelpDesc),
		SuccessMessage: lipgloss.NewStyle().
			Foreground(scheme.Success).
			Bold(true),
		ErrorMessage: lipgloss.NewStyle().
			Foreground(scheme.Error).
			Bold(true),
	}
}

// accountItem is one row of the results list
type accountItem struct {
	acct     account.Account
	siblings int // accounts sharing the username
}

func (i accountItem) FilterValue() string { return i.acct.Tag() }
func (i accountItem) Title() string       { return i.acct.Tag() }
func (i accountItem) Description() string {
	return fmt.Sprintf("%s · %d posts", i.acct.RealName, i.acct.Posts)
}

// InitialModel creates the browser model over tree
func InitialModel(tree *utree.Tree, pc *cache.Cache, config *Config) Model {
	if config == nil {
		config = DefaultConfig()
	}

	ti := textinput.New()
	ti.Placeholder = "Type a username prefix..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	resultsList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	resultsList.SetShowTitle(false)
	resultsList.SetShowHelp(false)
	resultsList.SetFilteringEnabled(false)

	pageViewport := viewport.New(0, 0)
	pageViewport.SetContent("Select an account to see its details...")

	glamourRenderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(config.Browser.WordWrap),
	)

	model := Model{
		searchInput:     ti,
		resultsList:     resultsList,
		pageViewport:    pageViewport,
		tree:            tree,
		pageCache:       pc,
		config:          config,
		focusIndex:      focusSearch,
		styles:          NewStyles(),
		glamourRenderer: glamourRenderer,
	}
	model.updateResults("")

	return model
}

// Init is called when the program starts
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles all the I/O
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.ready = true
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "tab":
		m.focusIndex = (m.focusIndex + 1) % 3
		if m.focusIndex == focusSearch {
			m.searchInput.Focus()
		} else {
			m.searchInput.Blur()
		}
		return m, nil
	case "enter":
		if m.focusIndex == focusResults {
			if item, ok := m.selectedItem(); ok {
				tag := item.acct.Tag()
				// Copy name#tag to clipboard and quit
				return m, tea.Sequence(
					func() tea.Msg {
						if err := copyToClipboard(tag); err != nil {
							fmt.Fprintf(os.Stderr, "Failed to copy %s: %v\n", tag, err)
						}
						return tea.Quit()
					},
				)
			}
		}
		return m, nil
	case "ctrl+d":
		if m.focusIndex == focusResults {
			m.removeSelected()
		}
		return m, nil
	case "up", "k":
		if m.focusIndex == focusResults {
			if m.selected > 0 {
				m.selected--
				m.resultsList.Select(m.selected)
				m.updatePage()
			}
			return m, nil
		} else if m.focusIndex == focusPage {
			m.pageViewport.LineUp(1)
			return m, nil
		}
	case "down", "j":
		if m.focusIndex == focusResults {
			if m.selected < len(m.results)-1 {
				m.selected++
				m.resultsList.Select(m.selected)
				m.updatePage()
			}
			return m, nil
		} else if m.focusIndex == focusPage {
			m.pageViewport.LineDown(1)
			return m, nil
		}
	}

	switch m.focusIndex {
	case focusSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)

		// Update results when text changes
		currentQuery := m.searchInput.Value()
		if currentQuery != m.lastQuery {
			m.updateResults(currentQuery)
			m.lastQuery = currentQuery
		}
	case focusPage:
		m.pageViewport, cmd = m.pageViewport.Update(msg)
	}

	return m, cmd
}

// updateResults lists every account whose username starts with query
func (m *Model) updateResults(query string) {
	m.results = nil
	for _, node := range m.tree.SearchPrefix(query) {
		siblings := node.Count()
		for _, a := range node.Accounts() {
			m.results = append(m.results, accountItem{acct: a, siblings: siblings})
		}
	}

	items := make([]list.Item, len(m.results))
	for i, item := range m.results {
		items[i] = item
	}
	m.resultsList.SetItems(items)

	if m.selected >= len(m.results) {
		m.selected = len(m.results) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.resultsList.Select(m.selected)
	m.updatePage()
}

func (m *Model) selectedItem() (accountItem, bool) {
	if m.selected < 0 || m.selected >= len(m.results) {
		return accountItem{}, false
	}
	return m.results[m.selected], true
}

// updatePage shows the cached page of the selected account
func (m *Model) updatePage() {
	item, ok := m.selectedItem()
	if !ok {
		m.pageViewport.SetContent("No matching accounts.")
		return
	}

	var render func(string) (string, error)
	if m.glamourRenderer != nil {
		render = m.glamourRenderer.Render
	}
	m.pageViewport.SetContent(GetOrFillPage(m.pageCache, item.acct, item.siblings, render))
	m.pageViewport.GotoTop()
}

// removeSelected deletes the selected account from the tree and drops its
// cached page along with the pages of its remaining siblings, whose
// account counts are now stale.
func (m *Model) removeSelected() {
	item, ok := m.selectedItem()
	if !ok {
		return
	}

	removed, err := m.tree.RemoveUser(item.acct.Username, item.acct.Discriminator)
	if err != nil {
		m.status = fmt.Sprintf("Failed to remove %s: %v", item.acct.Tag(), err)
		m.statusErr = true
		return
	}

	EvictPage(m.pageCache, removed.Tag())
	if node, err := m.tree.Retrieve(removed.Username); err == nil {
		for _, a := range node.Accounts() {
			EvictPage(m.pageCache, a.Tag())
		}
	}

	m.status = fmt.Sprintf("Removed %s", removed.Tag())
	m.statusErr = false
	m.updateResults(m.lastQuery)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Ensure we have minimum dimensions
	if m.width < 20 || m.height < 10 {
		return "Terminal too small. Please resize your terminal."
	}

	inputHeight := 3
	listHeight := m.height - inputHeight - 7
	leftWidth := (m.width / 2) - 1
	rightWidth := m.width - leftWidth - 3

	inputStyle, inputTitle := m.boxStyle(focusSearch, " 🔍 Search Usernames")
	m.searchInput.Width = leftWidth - 4
	inputBox := inputStyle.
		Width(leftWidth).
		Height(inputHeight).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Width(leftWidth-4).Render(inputTitle),
			m.searchInput.View(),
		))

	listStyle, listTitle := m.boxStyle(focusResults, fmt.Sprintf(" 📋 Accounts (%d) ", len(m.results)))
	resultsBox := listStyle.
		Width(leftWidth).
		Height(listHeight).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Width(leftWidth-4).Render(listTitle),
			m.resultsList.View(),
		))

	pageStyle, pageTitle := m.boxStyle(focusPage, " 📖 Account ")
	pageBox := pageStyle.
		Width(rightWidth).
		Height(listHeight + inputHeight + 2).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			m.styles.Title.Width(rightWidth-4).Render(pageTitle),
			m.pageViewport.View(),
		))

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, inputBox, resultsBox),
		pageBox,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderStatus(),
		m.renderHelp(),
	)
}

func (m Model) boxStyle(target int, title string) (lipgloss.Style, string) {
	if m.focusIndex == target {
		return m.styles.BorderFocused, title + "(Active) "
	}
	return m.styles.BorderBlurred, title
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	style := m.styles.SuccessMessage
	if m.statusErr {
		style = m.styles.ErrorMessage
	}
	return lipgloss.NewStyle().Padding(0, 0, 0, 2).Render(style.Render(m.status))
}

// renderHelp renders the key help footer
func (m Model) renderHelp() string {
	keys := []string{"enter", "ctrl+d", "tab", "↑/↓", "esc"}
	descs := []string{"copy name#tag", "remove account", "switch focus", "navigate", "quit"}

	var helpEntries []string
	for i, key := range keys {
		helpEntries = append(helpEntries,
			fmt.Sprintf("%s %s",
				m.styles.HelpKey.Render(key),
				m.styles.HelpDesc.Render(descs[i])))
	}

	return lipgloss.NewStyle().
		Padding(1, 0, 0, 2).
		Render(strings.Join(helpEntries, " • "))
}

func (m *Model) updateLayout() {
	inputHeight := 3
	listHeight := m.height - inputHeight - 7
	leftWidth := (m.width / 2) - 1
	rightWidth := m.width - leftWidth - 3

	m.searchInput.Width = leftWidth - 4
	m.resultsList.SetSize(leftWidth-2, listHeight-2)
	m.pageViewport.Width = rightWidth - 2
	m.pageViewport.Height = listHeight + inputHeight
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📋 Copied %s%s%s to clipboard.\n", Green, text, Reset)
	return nil
}

// runBrowser starts the Bubble Tea account browser
func runBrowser(tree *utree.Tree, pc *cache.Cache, config *Config) error {
	InitializeColors()

	program := tea.NewProgram(
		InitialModel(tree, pc, config),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := program.Run()
	return err
}
