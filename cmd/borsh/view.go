package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/borsh/schema"
)

type pane int

const (
	paneValue pane = iota
	paneHex
)

// viewModel pages through a decoded value and the bytes it came from.
// Pressing t re-decodes the same bytes as another type.
type viewModel struct {
	reg      *schema.Registry
	data     []byte
	typ      string
	rendered string
	err      error
	style    styles
	vp       viewport.Model
	input    textinput.Model
	pane     pane
	typing   bool
}

func newViewModel(reg *schema.Registry, data []byte, typ string, st styles) *viewModel {
	ti := textinput.New()
	ti.Prompt = "type: "
	ti.Placeholder = "list<u8>"
	ti.Width = 40
	m := &viewModel{
		reg:   reg,
		data:  data,
		style: st,
		input: ti,
		vp:    viewport.New(80, 20),
	}
	m.decodeAs(typ)
	return m
}

func (m *viewModel) decodeAs(typ string) {
	m.typ = typ
	m.rendered, m.err = "", nil
	c, err := m.reg.Codec(typ)
	if err != nil {
		m.err = err
	} else if v, err := decodeValue(c, m.data); err != nil {
		m.err = err
	} else if m.rendered, err = renderYAML(v); err != nil {
		m.err = err
	}
	m.refresh()
}

func (m *viewModel) refresh() {
	switch {
	case m.pane == paneHex:
		m.vp.SetContent(m.style.hex.Render(hex.Dump(m.data)))
	case m.err != nil:
		m.vp.SetContent(m.style.err.Render("Error: " + m.err.Error()))
	default:
		m.vp.SetContent(m.rendered)
	}
	m.vp.GotoTop()
}

func (m *viewModel) Init() tea.Cmd {
	return nil
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-4, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			switch msg.String() {
			case "enter":
				m.typing = false
				m.input.Blur()
				if t := strings.TrimSpace(m.input.Value()); t != "" {
					m.decodeAs(t)
				}
				return m, nil
			case "esc":
				m.typing = false
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.pane = 1 - m.pane
			m.refresh()
			return m, nil
		case "t":
			m.typing = true
			m.input.SetValue(m.typ)
			return m, m.input.Focus()
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *viewModel) View() string {
	var b strings.Builder
	b.WriteString(m.style.title.Render("borsh view"))
	b.WriteString(" ")
	b.WriteString(m.style.label.Render(m.typ))
	fmt.Fprintf(&b, "  %d bytes\n\n", len(m.data))
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	if m.typing {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.style.help.Render("↑/↓ scroll • tab value/hex • t change type • q quit"))
	}
	return b.String()
}

func runView(e *env, opts *options, args []string) error {
	reg, err := loadRegistry(opts)
	if err != nil {
		return err
	}
	if _, err := reg.Resolve(opts.typ); err != nil {
		return err
	}
	data, err := readBytes(e, opts, args)
	if err != nil {
		return err
	}
	writeDigest(e, opts, data)

	p := tea.NewProgram(newViewModel(reg, data, opts.typ, e.style), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
