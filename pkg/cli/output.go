package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
)

// output receives command results. Logs go to the logger output instead.
var output io.Writer = os.Stdout

var (
	colorActive     = color.New(color.FgGreen).SprintFunc()
	colorDraft      = color.New(color.FgYellow).SprintFunc()
	colorDeprecated = color.New(color.FgHiBlack).SprintFunc()
	colorHeader     = color.New(color.Bold).SprintFunc()
)

func colorStatus(s types.RiskStatus) string {
	switch s {
	case types.RiskStatusActive:
		return colorActive(s.String())
	case types.RiskStatusDraft:
		return colorDraft(s.String())
	case types.RiskStatusDeprecated:
		return colorDeprecated(s.String())
	default:
		return s.String()
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	return nil
}
