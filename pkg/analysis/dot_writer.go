package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// PrintReportDOT draws each routine as a cluster of block boxes laid out in
// source order. The edges only fix the layout and carry no control flow.
func PrintReportDOT(report *Report, output io.Writer, options *common.PrintOptions) error {
	report = prepare(report, options)
	var sb strings.Builder
	sb.WriteString("digraph G {\n")
	sb.WriteString(`  bgcolor="transparent";` + "\n")
	sb.WriteString(`  node [shape="box", style="filled", fontname="Ubuntu Mono"];` + "\n")

	for r, rr := range report.Routines {
		fmt.Fprintf(&sb, "  subgraph cluster_%d {\n", r)
		fmt.Fprintf(&sb, "    label=\"%s\";\n", escapeDOTValue(rr.Routine))
		for i, b := range rr.Blocks {
			label := fmt.Sprintf("B%d: %d..%d", i, b.FirstIndex, b.LastIndex)
			if len(b.Lines) > 0 {
				label += fmt.Sprintf("\\nlines %s", joinLines(b.Lines))
			}
			fillColor := "lightgoldenrodyellow"
			if i == 0 {
				fillColor = "lightgreen"
			}
			fmt.Fprintf(&sb, "    \"r%d_b%d\" [label=\"%s\", fillcolor=\"%s\"];\n", r, i, label, fillColor)
			if i > 0 {
				fmt.Fprintf(&sb, "    \"r%d_b%d\" -> \"r%d_b%d\" [style=\"invis\"];\n", r, i-1, r, i)
			}
		}
		sb.WriteString("  }\n")
	}

	sb.WriteString("}\n")
	_, err := io.WriteString(output, sb.String())
	return err
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return strings.Join(parts, ",")
}

func escapeDOTValue(value string) string {
	return strings.ReplaceAll(value, `"`, `\"`)
}
