package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/alert"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/notify"
)

type areaLabel string

func (a areaLabel) Area() string { return string(a) }

func runAlert(cmd *cobra.Command, args []string) error {
	kind := domain.AlertKind(args[0])
	if !kind.Valid() {
		return fmt.Errorf("unknown alert type %q: want investigate or fault", args[0])
	}

	client := newClient()
	area := ""
	if snap, err := client.SystemStatus(cmd.Context()); err != nil {
		log.Warn().Err(err).Msg("no current snapshot; sending without an area")
	} else {
		area = snap.Area
	}

	m := alert.NewMachine(notify.NewDispatcher(client), areaLabel(area))
	m.RequestAction(kind)

	if !assumeYes {
		shown := area
		if shown == "" {
			shown = domain.UnknownArea
		}
		ok, err := confirm(fmt.Sprintf("Send %s alert for %s?", kind, shown), "Send")
		if err != nil {
			return err
		}
		if !ok {
			m.Cancel()
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	ack, err := m.Confirm(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", ack.Message, ack.Kind, ack.Area)
	m.Acknowledge()
	return nil
}
