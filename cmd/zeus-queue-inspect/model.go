// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zeus-fleet/zeus/internal/atomicstore"
	"github.com/zeus-fleet/zeus/internal/capability"
	"github.com/zeus-fleet/zeus/internal/clock"
	"github.com/zeus-fleet/zeus/internal/envelope"
	"github.com/zeus-fleet/zeus/internal/render"
	"github.com/zeus-fleet/zeus/internal/sealedstore"
	"github.com/zeus-fleet/zeus/internal/zeusconfig"
	"github.com/zeus-fleet/zeus/internal/zeusid"
)

const defaultPollInterval = 2 * time.Second

type tickMsg struct{}

type snapshotMsg struct {
	snapshot snapshot
	err      error
}

// agentRow is one line of the agent table: a known capability file
// plus the role and session path from its heartbeat, if readable, and
// the size of its processed ledger.
type agentRow struct {
	agentID     string
	fresh       bool
	role        string
	sessionPath string
	ledgerBytes int64
}

type snapshot struct {
	pendingCount   int
	inflightCount  int
	agents         []agentRow
	oldestPreview  string
	oldestEnvelope string
}

// model is a minimal read-only bubbletea model: it has no focus
// regions or editable state, it just re-polls STATE_DIR on a timer and
// redraws.
type model struct {
	cfg      *zeusconfig.Config
	caps     *capability.Registry
	sealer   *sealedstore.Sealer
	interval time.Duration
	width    int
	height   int

	snapshot snapshot
	err      error
}

func newModel(cfg *zeusconfig.Config, interval time.Duration) model {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	clk := clock.Real()
	caps := capability.NewRegistry(filepath.Join(cfg.AgentBusDir(), "caps"), int64(cfg.Capability.MaxHeartbeatAge.Seconds()), clk)
	sealer, _ := sealedstore.New(cfg.Seal)
	return model{cfg: cfg, caps: caps, sealer: sealer, interval: interval}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(pollCmd(m), tickCmd(m.interval))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, DefaultKeyMap.Refresh):
			return m, pollCmd(m)
		}
		return m, nil
	case tickMsg:
		return m, tea.Batch(pollCmd(m), tickCmd(m.interval))
	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snapshot = msg.snapshot
		}
		return m, nil
	}
	return m, nil
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func pollCmd(m model) tea.Cmd {
	return func() tea.Msg {
		snap, err := takeSnapshot(m.cfg, m.caps, m.sealer)
		return snapshotMsg{snapshot: snap, err: err}
	}
}

// takeSnapshot reads STATE_DIR once. It never holds a lock and never
// claims a file — counts and previews can race a live dispatcher, but
// that's acceptable for a diagnostics view.
func takeSnapshot(cfg *zeusconfig.Config, caps *capability.Registry, sealer *sealedstore.Sealer) (snapshot, error) {
	newDir := filepath.Join(cfg.MessageQueueDir(), "new")
	inflightDir := filepath.Join(cfg.MessageQueueDir(), "inflight")

	pending, err := atomicstore.ListSorted(newDir, ".json")
	if err != nil {
		return snapshot{}, err
	}
	inflight, err := atomicstore.ListSorted(inflightDir, ".json")
	if err != nil {
		return snapshot{}, err
	}

	snap := snapshot{pendingCount: len(pending), inflightCount: len(inflight)}

	oldestID, oldestDir := oldestEnvelopeFile(pending, newDir, inflight, inflightDir)
	if oldestID != "" {
		env, err := atomicstore.ReadJSON[envelope.Envelope](filepath.Join(oldestDir, oldestID))
		if err == nil {
			snap.oldestEnvelope = env.ID
			text, unsealErr := sealer.Unseal(env.Message)
			if unsealErr != nil {
				snap.oldestPreview = "*(sealed payload, cannot decrypt without identity key)*"
			} else {
				snap.oldestPreview = text
			}
		}
	}

	snap.agents, err = collectAgents(cfg, caps)
	if err != nil {
		return snapshot{}, err
	}

	return snap, nil
}

func oldestEnvelopeFile(pending []string, newDir string, inflight []string, inflightDir string) (string, string) {
	if len(pending) > 0 {
		return pending[0], newDir
	}
	if len(inflight) > 0 {
		return inflight[0], inflightDir
	}
	return "", ""
}

func collectAgents(cfg *zeusconfig.Config, caps *capability.Registry) ([]agentRow, error) {
	capsDir := filepath.Join(cfg.AgentBusDir(), "caps")
	files, err := atomicstore.ListSorted(capsDir, ".json")
	if err != nil {
		return nil, err
	}
	processedDir := filepath.Join(cfg.AgentBusDir(), "processed")

	rows := make([]agentRow, 0, len(files))
	for _, file := range files {
		raw := strings.TrimSuffix(file, ".json")
		agentID, err := zeusid.ParseAgentID(raw)
		if err != nil {
			continue
		}
		hb, ok := caps.Lookup(agentID)
		row := agentRow{agentID: agentID.String(), fresh: caps.IsFresh(agentID)}
		if ok {
			row.role = hb.Role
			row.sessionPath = hb.SessionPath
		}
		row.ledgerBytes = ledgerSize(processedDir, agentID.String())
		rows = append(rows, row)
	}
	return rows, nil
}

// ledgerSize sums the sizes of every on-disk form an agent's ledger
// might currently be in (plain JSON snapshot, compacted snapshot,
// append log) — whichever of those exist.
func ledgerSize(dir, agentID string) int64 {
	var total int64
	for _, suffix := range []string{".json", ".snap.zst", ".log.zst"} {
		if info, err := os.Stat(filepath.Join(dir, agentID+suffix)); err == nil {
			total += info.Size()
		}
	}
	return total
}

func (m model) View() string {
	if m.err != nil {
		return errorStyle.Render("zeus-queue-inspect: " + m.err.Error())
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("zeus-queue-inspect") + "  " + faintStyle.Render(m.cfg.StateDir))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("pending:  ") + countStyle.Render(strconv.Itoa(m.snapshot.pendingCount)))
	b.WriteString("   ")
	b.WriteString(labelStyle.Render("inflight: ") + countStyle.Render(strconv.Itoa(m.snapshot.inflightCount)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("agents"))
	b.WriteString("\n")
	if len(m.snapshot.agents) == 0 {
		b.WriteString(faintStyle.Render("  (no capability heartbeats seen yet)"))
		b.WriteString("\n")
	}
	for _, row := range m.snapshot.agents {
		status := statusFreshStyle.Render("fresh")
		if !row.fresh {
			status = statusStaleStyle.Render("stale")
		}
		ledger := faintStyle.Render("ledger:" + strconv.FormatInt(row.ledgerBytes, 10) + "B")
		line := "  " + padRight(row.agentID, 24) + status + "  " + padRight(row.role, 12) + ledger
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("oldest queued message"))
	b.WriteString("\n")
	if m.snapshot.oldestEnvelope == "" {
		b.WriteString(faintStyle.Render("  (queue empty)"))
	} else {
		width := m.width - 4
		if width < 20 {
			width = 60
		}
		b.WriteString(render.Markdown(m.snapshot.oldestPreview, render.DefaultTheme, width))
	}
	b.WriteString("\n\n")
	b.WriteString(faintStyle.Render(helpLine(DefaultKeyMap)))

	return b.String()
}

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(render.DefaultTheme.HeaderForeground)
	faintStyle       = lipgloss.NewStyle().Foreground(render.DefaultTheme.FaintText)
	labelStyle       = lipgloss.NewStyle().Foreground(render.DefaultTheme.NormalText)
	countStyle       = lipgloss.NewStyle().Bold(true).Foreground(render.DefaultTheme.HeaderForeground)
	statusFreshStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStaleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func padRight(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
