package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ChicagoDave/roadnet/pkg/network"
	"github.com/ChicagoDave/roadnet/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printResult(e)
			if e.ConflictWith != "" {
				fmt.Printf("    conflicts with: %s\n", e.ConflictWith)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			printResult(w)
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printResult(res validation.Result) {
	fmt.Printf("  [%s] %s\n", res.Level, res.Message)
	if res.Path != "" {
		if res.ActualValue != nil {
			fmt.Printf("    -> %s = %v\n", res.Path, res.ActualValue)
		} else {
			fmt.Printf("    -> %s\n", res.Path)
		}
	}
	if res.Expected != "" {
		fmt.Printf("    expected: %s\n", res.Expected)
	}
	for _, s := range res.Suggestions {
		fmt.Printf("    * %s\n", s)
	}
}

func printMatch(m network.Match) {
	seg := m.Segment
	name := seg.ID()
	if seg.Name() != "" {
		name = fmt.Sprintf("%s (%s)", seg.ID(), seg.Name())
	}
	fmt.Printf("Nearest street: %s\n", name)
	fmt.Printf("  Type:      %s\n", seg.Type())
	fmt.Printf("  Point:     (%.2f, %.2f) after vertex %d\n", m.Point.X, m.Point.Y, m.VertexIndex)
	fmt.Printf("  Distance:  %.2f m\n", m.Distance)
	fmt.Printf("  Side:      %s\n", m.Side)
	if m.Query != m.Point {
		fmt.Printf("  Query:     (%.2f, %.2f)\n", m.Query.X, m.Query.Y)
	}
}

func printSlotTable(ix *network.Intersection) {
	fmt.Printf("Intersection %s at (%.1f, %.1f), degree %d\n",
		ix.ID(), ix.Position().X, ix.Position().Y, ix.Degree())
	if ix.Degree() == 0 {
		return
	}
	if !ix.SlotsValid() {
		ix.CalculateSlots()
	}

	fmt.Printf("  %-5s %-20s %-12s %8s %6s\n", "Slot", "Segment", "Type", "Angle", "Phase")
	fmt.Printf("  %s\n", strings.Repeat("-", 55))
	for slot := range ix.NumSlots() {
		seg, err := ix.SegmentAtSlot(slot)
		if err != nil {
			fmt.Printf("  %-5d %-20s\n", slot, "(empty)")
			continue
		}
		angle, _ := ix.Angle(seg)
		phase := "-"
		if p, err := ix.PhaseOf(seg); err == nil {
			phase = fmt.Sprint(p)
		}
		fmt.Printf("  %-5d %-20s %-12s %8.1f %6s\n", slot, seg.ID(), seg.Type(), angle, phase)
	}

	if !ix.Signalled() {
		fmt.Println("  Unsignalled")
		return
	}
	fmt.Printf("  %d phases, cycle %.0fs\n", len(ix.Phases()), ix.Phases()[0].Signal.CycleLength())
}

// printSignalTimeline advances the network and prints one row per step
// with the state of every phase of each signalled intersection.
func printSignalTimeline(net *network.Network, signalled []*network.Intersection, duration, step float64) {
	header := []string{fmt.Sprintf("%7s", "t")}
	for _, ix := range signalled {
		for _, p := range ix.Phases() {
			header = append(header, fmt.Sprintf("%-12s", fmt.Sprintf("%s/%d", ix.ID(), p.Index)))
		}
	}
	fmt.Println(strings.Join(header, " "))

	for t := 0.0; t <= duration; t += step {
		row := []string{fmt.Sprintf("%7.1f", t)}
		for _, ix := range signalled {
			row = append(row, lo.Map(ix.Phases(), func(p network.Phase, _ int) string {
				return fmt.Sprintf("%-12s", fmt.Sprintf("%s %.0f", p.Signal.State(), p.Signal.Countdown()))
			})...)
		}
		fmt.Println(strings.Join(row, " "))
		net.Advance(step)
	}
}
