package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/wasmbuildgo/internal/executor"
)

// WriteReport renders the execution report in a human-readable per
// component, per step form.
func WriteReport(w io.Writer, report *executor.Report) {
	for _, comp := range report.Components {
		name := comp.Name
		if comp.Profile != "" {
			name = fmt.Sprintf("%s (profile %s)", comp.Name, comp.Profile)
		}

		switch {
		case comp.Skipped:
			fmt.Fprintf(w, "%s: skipped (earlier failure)\n", name)
			continue
		case comp.Err != nil:
			fmt.Fprintf(w, "%s: error: %v\n", name, comp.Err)
			continue
		default:
			fmt.Fprintf(w, "%s:\n", name)
		}

		for _, step := range comp.Steps {
			switch step.Status {
			case executor.StepRanFailed:
				fmt.Fprintf(w, "  %s: %s (exit code %d)\n", step.Command, step.Status, step.ExitCode)
				if step.Output != "" {
					fmt.Fprintf(w, "%s\n", indent(step.Output))
				}
			default:
				fmt.Fprintf(w, "  %s: %s\n", step.Command, step.Status)
			}
		}
	}

	if report.OK() {
		fmt.Fprintln(w, "build ok")
	} else {
		fmt.Fprintln(w, "build failed")
	}
}

func indent(s string) string {
	trimmed := strings.TrimRight(s, "\n")
	return "    " + strings.ReplaceAll(trimmed, "\n", "\n    ")
}
