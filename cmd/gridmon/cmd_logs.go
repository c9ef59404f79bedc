package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/retention"
)

func logView() (*retention.View, error) {
	g := domain.Granularity(granularity)
	if !g.Valid() {
		return nil, fmt.Errorf("unknown granularity %q: want daily or monthly", granularity)
	}
	return retention.New(newClient(), g, 0), nil
}

func runLogsList(cmd *cobra.Command, args []string) error {
	v, err := logView()
	if err != nil {
		return err
	}
	if err := v.Refresh(cmd.Context()); err != nil {
		return err
	}
	printRows(cmd.OutOrStdout(), v.Rows())
	return nil
}

func printRows(w io.Writer, rows []retention.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No log entries.")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "POWER LOSS (W)", "ALERT")
	for _, r := range rows {
		t.Row(r.ID, r.Date.Local().Format(time.DateTime), fmt.Sprintf("%.2f", r.PowerLoss), string(r.Label))
	}
	fmt.Fprintln(w, t.Render())
}

func runLogsDelete(cmd *cobra.Command, args []string) error {
	v, err := logView()
	if err != nil {
		return err
	}
	return confirmDelete(cmd, v, retention.Target{ID: args[0]},
		fmt.Sprintf("Delete %s log entry %s?", v.Granularity(), args[0]))
}

func runLogsPurge(cmd *cobra.Command, args []string) error {
	v, err := logView()
	if err != nil {
		return err
	}
	return confirmDelete(cmd, v, retention.Target{All: true},
		fmt.Sprintf("Delete every %s log entry?", v.Granularity()))
}

func confirmDelete(cmd *cobra.Command, v *retention.View, t retention.Target, title string) error {
	if err := v.RequestDelete(t); err != nil {
		return err
	}
	if !assumeYes {
		ok, err := confirm(title, "Delete")
		if err != nil {
			return err
		}
		if !ok {
			v.CancelDelete()
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}
	err := v.ConfirmDelete(cmd.Context())
	printRows(cmd.OutOrStdout(), v.Rows())
	return err
}
