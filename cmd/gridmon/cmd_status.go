package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/classifier"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alarmStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func runStatus(cmd *cobra.Command, args []string) error {
	snap, err := newClient().SystemStatus(cmd.Context())
	if err != nil {
		return err
	}
	c := classifier.Classify(*snap)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Area string `json:"area"`
			domain.Classification
		}{snap.Area, c})
	}
	printClassification(out, snap, c)
	return nil
}

func printClassification(w io.Writer, snap *domain.Snapshot, c domain.Classification) {
	area := snap.Area
	if area == "" {
		area = domain.UnknownArea
	}
	diff, threshold, _ := classifier.TheftCheck(*snap)

	theft := okStyle.Render(c.Theft.String())
	if c.Theft == domain.TheftDetected {
		theft = alarmStyle.Render(c.Theft.String())
	}
	health := okStyle.Render(c.Health.String())
	switch c.Health {
	case domain.PowerOff, domain.SystemFault:
		health = warnStyle.Render(c.Health.String())
	}

	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Area:      "), area)
	fmt.Fprintf(w, "%s %.2f W\n", labelStyle.Render("Power loss:"), c.PowerLoss)
	fmt.Fprintf(w, "%s %s (imbalance %.2f, threshold %.2f)\n", labelStyle.Render("Theft:     "), theft, diff, threshold)
	fmt.Fprintf(w, "%s %s (%d meters)\n", labelStyle.Render("Health:    "), health, len(snap.MeterStatus))
}
