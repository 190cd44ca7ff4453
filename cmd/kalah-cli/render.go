package main

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
)

const (
	colorSideA   = "#5fafff"
	colorSideB   = "#ff875f"
	colorSown    = "#ffd75f"
	colorCapture = "#ff5f87"
)

// renderBoard draws B's row on top, right to left, and A's row below, with
// each side's store on its right hand. Slots in sown are highlighted.
func renderBoard(out *termenv.Output, board kalah.Snapshot, sown []kalah.Slot) string {
	highlighted := make(map[kalah.Slot]bool, len(sown))
	for _, slot := range sown {
		highlighted[slot] = true
	}

	cell := func(side kalah.Side, slot kalah.Slot, seeds int) string {
		text := fmt.Sprintf("[%2d]", seeds)

		style := out.String(text).Foreground(out.Color(sideColor(side)))
		if highlighted[slot] {
			style = out.String(text).Foreground(out.Color(colorSown)).Bold()
		}

		return style.String()
	}

	pits := len(board.Pits[kalah.SideA])
	padding := strings.Repeat(" ", 4)

	var sb strings.Builder

	sb.WriteString(padding)
	for i := pits - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%4s", fmt.Sprintf("B%d", i+1))
	}
	sb.WriteString("\n")

	sb.WriteString(padding)
	for i := pits - 1; i >= 0; i-- {
		sb.WriteString(cell(kalah.SideB, kalah.Slot{Side: kalah.SideB, Pit: i}, board.Pits[kalah.SideB][i]))
	}
	sb.WriteString("\n")

	sb.WriteString(cell(kalah.SideB, kalah.Slot{Side: kalah.SideB, Store: true}, board.Stores[kalah.SideB]))
	sb.WriteString(strings.Repeat(" ", 4*pits))
	sb.WriteString(cell(kalah.SideA, kalah.Slot{Side: kalah.SideA, Store: true}, board.Stores[kalah.SideA]))
	sb.WriteString("\n")

	sb.WriteString(padding)
	for i := 0; i < pits; i++ {
		sb.WriteString(cell(kalah.SideA, kalah.Slot{Side: kalah.SideA, Pit: i}, board.Pits[kalah.SideA][i]))
	}
	sb.WriteString("\n")

	sb.WriteString(padding)
	for i := 0; i < pits; i++ {
		fmt.Fprintf(&sb, "%4s", fmt.Sprintf("A%d", i+1))
	}
	sb.WriteString("\n")

	return sb.String()
}

// describeMove is a one line summary of what a move did.
func describeMove(out *termenv.Output, who string, result *kalah.MoveResult) string {
	line := fmt.Sprintf("%s played %s%d, sowing %d", who, result.Player, result.Pit+1, len(result.Path))

	switch {
	case result.Capture:
		line += out.String(fmt.Sprintf(", captured %d", result.Captured)).Foreground(out.Color(colorCapture)).Bold().String()
	case result.ExtraTurn:
		line += ", extra turn"
	}

	return line
}

func describeStatus(status kalah.Status, board kalah.Snapshot) string {
	score := fmt.Sprintf("%d : %d", board.Stores[kalah.SideA], board.Stores[kalah.SideB])

	switch status.Winner {
	case kalah.WinnerDraw:
		return "Draw, " + score
	case kalah.WinnerA:
		return "You win, " + score
	case kalah.WinnerB:
		return "The bot wins, " + score
	default:
		return score
	}
}

func sideColor(side kalah.Side) string {
	if side == kalah.SideA {
		return colorSideA
	}

	return colorSideB
}
