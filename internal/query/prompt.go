package query

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	appLog "calimport/internal/log"
)

// Prompt drives the interactive query loop: show menu, read a selection,
// dispatch, render, repeat. Invalid date input re-prompts; only the exit
// choice, EOF or context cancellation leave the loop.
type Prompt struct {
	eng *Engine
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompt creates an interactive prompt on the given streams.
func NewPrompt(eng *Engine, in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		eng: eng,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run processes selections until exit. The returned error reflects only
// store failures the loop itself could not recover from; invalid user
// input never terminates Run.
func (p *Prompt) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.printMenu()
		choice, ok := p.readLine("Ihre Wahl: ")
		if !ok {
			return nil
		}

		switch choice {
		case "0":
			fmt.Fprintln(p.out, "Auf Wiedersehen!")
			return nil
		case "1":
			p.runDay(ctx)
		case "2":
			p.runWeek(ctx)
		case "3":
			p.runMonth(ctx)
		case "4":
			p.runYear(ctx)
		case "5":
			p.runAll(ctx)
		default:
			fmt.Fprintln(p.out, "Ungültige Eingabe. Bitte versuchen Sie es erneut.")
		}
	}
}

func (p *Prompt) printMenu() {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, strings.Repeat("=", 60))
	fmt.Fprintln(p.out, "Welche Termine möchten Sie anzeigen?")
	fmt.Fprintln(p.out, strings.Repeat("=", 60))
	fmt.Fprintln(p.out, "  1) Bestimmter Tag (YYYY-MM-DD)")
	fmt.Fprintln(p.out, "  2) Bestimmte Woche (YYYY-WW)")
	fmt.Fprintln(p.out, "  3) Bestimmter Monat (YYYY-MM)")
	fmt.Fprintln(p.out, "  4) Bestimmtes Jahr (YYYY)")
	fmt.Fprintln(p.out, "  5) Alle Termine")
	fmt.Fprintln(p.out, "  0) Beenden")
}

func (p *Prompt) runDay(ctx context.Context) {
	input, ok := p.readLine("Datum (YYYY-MM-DD): ")
	if !ok {
		return
	}
	k, err := ParseDay(input)
	if err != nil {
		p.reportError(err)
		return
	}
	day, err := p.eng.Day(ctx, k)
	if err != nil {
		p.reportError(err)
		return
	}
	fmt.Fprintf(p.out, "\nTermine am %s\n", k)
	RenderDays(p.out, []DayEvents{day})
}

func (p *Prompt) runWeek(ctx context.Context) {
	input, ok := p.readLine("Jahr und Woche (YYYY-WW): ")
	if !ok {
		return
	}
	k, err := ParseWeek(input)
	if err != nil {
		p.reportError(err)
		return
	}
	days, err := p.eng.Week(ctx, k)
	if err != nil {
		p.reportError(err)
		return
	}
	fmt.Fprintf(p.out, "\nTermine in Woche %02d/%d\n", k.Week, k.Year)
	RenderDays(p.out, days)
}

func (p *Prompt) runMonth(ctx context.Context) {
	input, ok := p.readLine("Jahr und Monat (YYYY-MM): ")
	if !ok {
		return
	}
	k, err := ParseMonth(input)
	if err != nil {
		p.reportError(err)
		return
	}
	days, err := p.eng.Month(ctx, k)
	if err != nil {
		p.reportError(err)
		return
	}
	fmt.Fprintf(p.out, "\nTermine im Monat %02d/%d\n", k.Month, k.Year)
	RenderDays(p.out, days)
}

func (p *Prompt) runYear(ctx context.Context) {
	input, ok := p.readLine("Jahr (YYYY): ")
	if !ok {
		return
	}
	k, err := ParseYear(input)
	if err != nil {
		p.reportError(err)
		return
	}
	months, err := p.eng.Year(ctx, k)
	if err != nil {
		p.reportError(err)
		return
	}
	fmt.Fprintf(p.out, "\nTermine im Jahr %d\n", k.Year)
	RenderMonths(p.out, months)
}

func (p *Prompt) runAll(ctx context.Context) {
	years, err := p.eng.All(ctx)
	if err != nil {
		p.reportError(err)
		return
	}
	fmt.Fprintln(p.out, "\nAlle Termine")
	RenderYears(p.out, years)
}

// readLine prints prompt and reads one trimmed line; ok is false on EOF.
func (p *Prompt) readLine(prompt string) (string, bool) {
	fmt.Fprint(p.out, "\n"+prompt)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *Prompt) reportError(err error) {
	if errors.Is(err, ErrInvalidDateFormat) {
		fmt.Fprintf(p.out, "Fehler: %v\n", err)
		return
	}
	appLog.Error("query failed", err)
	fmt.Fprintf(p.out, "Fehler: %v\n", err)
}
