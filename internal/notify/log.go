package notify

import (
	"context"
	"log"
	"strconv"
	"strings"

	"tableside/internal/domain"
)

// LogPrinter writes tickets to the process log. It stands in for a thermal
// printer bridge in environments without one.
type LogPrinter struct {
	Logger *log.Logger
}

func (p *LogPrinter) Print(_ context.Context, destination string, t Ticket) error {
	var b strings.Builder
	b.WriteString("ticket #")
	b.WriteString(strconv.FormatInt(t.Sequence, 10))
	b.WriteString(" -> ")
	b.WriteString(destination)
	for _, it := range t.Items {
		b.WriteString(" | ")
		b.WriteString(strconv.Itoa(it.Quantity))
		b.WriteString("x ")
		b.WriteString(it.Name)
	}
	b.WriteString(" | total ")
	b.WriteString(t.Total)
	p.Logger.Println(b.String())
	return nil
}

// LogNotifier logs customer notifications instead of sending them.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) Notify(_ context.Context, o domain.Order, status domain.Status) error {
	n.Logger.Printf("notify %s: order #%d is now %s", o.CustomerPhone, o.Sequence, status)
	return nil
}
