// Package view renders the dashboard as a plain-text table.
package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"tradewatch/internal/connection"
	"tradewatch/internal/domain"
	"tradewatch/internal/format"
)

// Model is everything one frame of the dashboard shows.
type Model struct {
	Status        connection.Status
	Trades        []domain.Trade // already filtered, newest first
	MaxTrades     int
	ActiveFilters int
	PendingEdits  bool
	Location      *time.Location
}

// Render writes the dashboard to w.
func Render(w io.Writer, m Model) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s", strings.ToUpper(m.Status.State.String()))
	if m.Status.Target != "" {
		fmt.Fprintf(&b, "  %s", m.Status.Target)
	}
	b.WriteByte('\n')
	if m.Status.Err != "" {
		fmt.Fprintf(&b, "Error: %s\n", m.Status.Err)
	}

	fmt.Fprintf(&b, "Filters (%d)", m.ActiveFilters)
	if m.PendingEdits {
		b.WriteString("  [unapplied changes]")
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Showing %d recent trades (max %d)\n\n", len(m.Trades), m.MaxTrades)

	if len(m.Trades) == 0 {
		b.WriteString("No trades received yet\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Time\tSymbol\tSide\tExchange\tPrice\tSize\tTotal\t")
	for _, t := range m.Trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			format.Time(t.Timestamp, m.Location),
			t.Symbol,
			strings.ToUpper(t.Side.String()),
			t.Exchange,
			format.Price(t.Price),
			format.Quantity(t.Size),
			format.Total(t),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, b.String())
	return err
}
