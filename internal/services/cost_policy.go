package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"spacetime-service/internal/ports"
	"strings"
)

// AutoApprove accepts every query.
type AutoApprove struct{}

func (AutoApprove) Decide(context.Context, ports.CostEstimate) (bool, error) { return true, nil }

// RejectAll declines every query that reaches the threshold.
type RejectAll struct{}

func (RejectAll) Decide(context.Context, ports.CostEstimate) (bool, error) { return false, nil }

// HardLimit accepts queries up to MaxCost dollars.
type HardLimit struct {
	MaxCost float64
}

func (h HardLimit) Decide(_ context.Context, est ports.CostEstimate) (bool, error) {
	return est.Cost <= h.MaxCost, nil
}

// TerminalPrompt asks an operator on Out and reads a y/N answer from In.
// Anything other than y or yes declines, including end of input.
type TerminalPrompt struct {
	In  io.Reader
	Out io.Writer
}

func (p TerminalPrompt) Decide(ctx context.Context, est ports.CostEstimate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.Out,
		"This query has %d elements, which will cost $%.2f.\nProceed? [y/N] ",
		est.Elements, est.Cost,
	)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
