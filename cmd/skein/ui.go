// # cmd/skein/ui.go
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skein/internal/app"
	"skein/internal/resolver"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list        list.Model
	diagnostics []resolver.Diagnostic
	lastUpdate  time.Time
	fileCount   int
	resolved    int
	unresolved  int
	sameFile    int
}

type updateMsg struct {
	update app.Update
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.diagnostics = msg.update.Diagnostics
		m.fileCount = msg.update.FileCount
		m.resolved = msg.update.Resolved
		m.unresolved = msg.update.Unresolved
		m.sameFile = msg.update.SameFile
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, d := range m.diagnostics {
			title := "Unresolved Reference"
			if d.SameFile {
				title = "Same-File Failure"
			}
			items = append(items, item{
				title: title,
				desc:  d.String(),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d resolved",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.resolved))

	var summary string
	if m.unresolved == 0 {
		summary = successStyle.Render("All references resolved")
	} else {
		summary = fmt.Sprintf("%s | %s",
			unresolvedStyle.Render(fmt.Sprintf("%d Unresolved", m.unresolved)),
			failureStyle.Render(fmt.Sprintf("%d Same-File", m.sameFile)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Symbol Resolution Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Diagnostics"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

func runUI(a *app.App, initial *resolver.ResolvedSymbols) error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())

	a.SetUpdateHandler(func(u app.Update) {
		p.Send(updateMsg{update: u})
	})

	// Seed with the initial run before the watcher produces anything.
	go p.Send(updateMsg{update: app.Update{
		FileCount:   a.Project.FileCount(),
		Resolved:    initial.TotalResolved(),
		Unresolved:  initial.TotalUnresolved(),
		SameFile:    len(initial.SameFileDiagnostics()),
		Diagnostics: initial.Diagnostics,
	}})

	_, err := p.Run()
	return err
}
