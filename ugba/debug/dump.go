package debug

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dma"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	active  lipgloss.Style
	box     lipgloss.Style
	stopped lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		label:   lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(4)),
		value:   lipgloss.NewStyle().Bold(true),
		active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		stopped: lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
		box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// RegisterLines formats the snapshot as plain text lines, for displays that
// do their own styling.
func RegisterLines(d *Data) []string {
	lines := []string{
		fmt.Sprintf("frame %d line %3d [%s]", d.Frames, d.Line, d.DebuggerState),
		fmt.Sprintf("DISPCNT  %04X  mode %d", d.DISPCNT, d.DISPCNT&7),
		fmt.Sprintf("DISPSTAT %04X", d.DISPSTAT),
		fmt.Sprintf("BGCNT    %04X %04X %04X %04X", d.BGCNT[0], d.BGCNT[1], d.BGCNT[2], d.BGCNT[3]),
		fmt.Sprintf("IE %04X IF %04X IME %t", d.IE, d.IF, d.IME),
	}
	for n, s := range d.DMA {
		lines = append(lines, fmt.Sprintf("DMA%d %-7s %-9s %08X->%08X n=%d", n, s.State, s.Timing, s.Source, s.Dest, s.Count))
	}
	for n, t := range d.Timers {
		lines = append(lines, fmt.Sprintf("TM%d %04X ctl %04X", n, t.Counter, t.Control))
	}
	lines = append(lines, fmt.Sprintf("keys %s", d.Keys))
	return lines
}

// FormatRegisters renders the snapshot as styled boxes for a terminal.
func FormatRegisters(d *Data) string {
	st := newStyles()
	row := func(label, value string) string {
		return st.label.Render(fmt.Sprintf("%-9s", label)) + st.value.Render(value)
	}

	display := []string{
		st.title.Render("Display"),
		row("frame", fmt.Sprintf("%d", d.Frames)),
		row("line", fmt.Sprintf("%d", d.Line)),
		row("DISPCNT", fmt.Sprintf("%04X", d.DISPCNT)),
		row("DISPSTAT", fmt.Sprintf("%04X", d.DISPSTAT)),
	}
	for n, cnt := range d.BGCNT {
		display = append(display, row(fmt.Sprintf("BG%dCNT", n), fmt.Sprintf("%04X", cnt)))
	}

	irq := []string{
		st.title.Render("Interrupts"),
		row("IE", fmt.Sprintf("%04X", d.IE)),
		row("IF", fmt.Sprintf("%04X", d.IF)),
		row("IME", fmt.Sprintf("%t", d.IME)),
	}
	for i := addr.Interrupt(0); i < addr.InterruptCount; i++ {
		if d.IE&i.Mask() == 0 {
			continue
		}
		name := "  " + i.String()
		if d.IF&i.Mask() != 0 {
			irq = append(irq, st.active.Render(name+" pending"))
		} else {
			irq = append(irq, st.stopped.Render(name))
		}
	}

	channels := []string{st.title.Render("DMA")}
	for n, s := range d.DMA {
		line := fmt.Sprintf("%d %-7s %-9s %08X %08X %5d", n, s.State, s.Timing, s.Source, s.Dest, s.Count)
		if s.State == dma.Idle {
			channels = append(channels, st.stopped.Render(line))
		} else {
			channels = append(channels, st.active.Render(line))
		}
	}
	channels = append(channels, "", st.title.Render("Timers"))
	for n, t := range d.Timers {
		channels = append(channels, row(fmt.Sprintf("TM%d", n), fmt.Sprintf("%04X ctl %04X", t.Counter, t.Control)))
	}

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		st.box.Render(strings.Join(display, "\n")),
		st.box.Render(strings.Join(irq, "\n")),
		st.box.Render(strings.Join(channels, "\n")),
	)
	footer := row("keys", d.Keys.String()) + "  " + row("state", d.DebuggerState.String())
	if d.OAM != nil {
		footer += "  " + st.label.Render(d.OAM.FormatSummary())
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes, footer)
}
