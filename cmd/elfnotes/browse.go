package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/elf-notes/errors"
	"github.com/wippyai/elf-notes/image"
	"github.com/wippyai/elf-notes/note"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	ownerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newBrowseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse FILE",
		Short: "Explore the notes of a file interactively",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.Unsupported(errors.PhaseConfig, "browse needs an interactive terminal; use list instead")
		}
		m := newBrowseModel(args[0], a.imageOptions())
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	})
	return cmd
}

type browseModel struct {
	err      error
	img      *image.Image
	opts     image.Options
	filename string
	notes    []browseItem
	visible  []int
	filter   textinput.Model
	selected int
	state    browseState
}

type browseItem struct {
	entry   *note.Entry
	section string
}

type browseState int

const (
	stateNavigate browseState = iota
	stateFilter
)

type imageLoadedMsg struct {
	err error
	img *image.Image
}

func newBrowseModel(filename string, opts image.Options) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "owner, type or section"
	ti.Prompt = "/ "
	ti.Width = 40

	return &browseModel{
		filename: filename,
		opts:     opts,
		filter:   ti,
		state:    stateNavigate,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadImage
}

func (m *browseModel) loadImage() tea.Msg {
	img, err := image.Open(m.filename, m.opts)
	return imageLoadedMsg{img: img, err: err}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case imageLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setImage(msg.img)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
		case "/":
			m.state = stateFilter
			return m, m.filter.Focus()
		case "esc":
			m.filter.SetValue("")
			m.applyFilter()
		}
	}
	return m, nil
}

func (m *browseModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		m.state = stateNavigate
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browseModel) setImage(img *image.Image) {
	m.img = img
	m.notes = m.notes[:0]
	for _, s := range img.Sections {
		for _, e := range s.Notes {
			m.notes = append(m.notes, browseItem{entry: e, section: s.Name})
		}
	}
	m.applyFilter()
}

func (m *browseModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, it := range m.notes {
		if query == "" || strings.Contains(it.haystack(), query) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (it browseItem) haystack() string {
	return strings.ToLower(it.entry.Name() + " " + it.entry.Type().String() + " " + it.section)
}

func (m *browseModel) current() (browseItem, bool) {
	if m.selected >= len(m.visible) {
		return browseItem{}, false
	}
	return m.notes[m.visible[m.selected]], true
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.img == nil {
		return "Loading notes..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ELF Notes"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	var list strings.Builder
	if len(m.visible) == 0 {
		list.WriteString("No notes match.\n")
	}
	for i, idx := range m.visible {
		line := m.formatItem(m.notes[idx])
		if i == m.selected {
			list.WriteString(selectedStyle.Render("> " + line))
		} else {
			list.WriteString("  " + line)
		}
		list.WriteString("\n")
	}

	detail := ""
	if it, ok := m.current(); ok {
		detail = detailStyle.Render(m.formatDetail(it))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", detail))
	b.WriteString("\n")

	if failed := m.img.Failed(); len(failed) > 0 {
		for _, s := range failed {
			b.WriteString(errorStyle.Render(fmt.Sprintf("%s: %v", s.Name, s.Err)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • / filter • esc clear • q quit"))
	return b.String()
}

func (m *browseModel) formatItem(it browseItem) string {
	return ownerStyle.Render(it.entry.Name()) + " " + typeStyle.Render(it.entry.Type().String())
}

func (m *browseModel) formatDetail(it browseItem) string {
	e := it.entry
	var b strings.Builder
	fmt.Fprintf(&b, "Section:  %s\n", it.section)
	fmt.Fprintf(&b, "Owner:    %s\n", e.Name())
	fmt.Fprintf(&b, "Type:     %s (%d)\n", e.Type(), uint32(e.Type()))
	fmt.Fprintf(&b, "Offset:   0x%x\n", e.Offset())
	fmt.Fprintf(&b, "Size:     %d bytes\n", e.DescriptorSize())
	if tag, ok := e.DescriptorAsAbiTag(); ok {
		fmt.Fprintf(&b, "ABI tag:  %s\n", tag)
	}
	if id, ok := e.BuildID(); ok {
		fmt.Fprintf(&b, "Build ID: %s\n", id)
	}
	if e.Type() == note.TypeGNUGoldVersion && e.Name() == note.OwnerGNU {
		fmt.Fprintf(&b, "Version:  %s\n", e.DescriptorAsText())
	}
	if desc := e.RawDescriptor(); len(desc) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(hex.Dump(desc), "\n"))
	}
	return b.String()
}
