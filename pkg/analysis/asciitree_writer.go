package analysis

import (
	"fmt"
	"io"

	asciitree "github.com/thediveo/go-asciitree"

	"github.com/spicery/nutmeg-blocks/pkg/common"
)

type AsciiNode struct {
	Label    string      `asciitree:"label"`
	Props    []string    `asciitree:"properties"`
	Children []AsciiNode `asciitree:"children"`
}

func convertToTree(report *Report) AsciiNode {
	var routines []AsciiNode
	for _, rr := range report.Routines {
		var blocks []AsciiNode
		for i, b := range rr.Blocks {
			props := []string{fmt.Sprintf("instructions: %d..%d", b.FirstIndex, b.LastIndex)}
			if len(b.Lines) > 0 {
				props = append(props, fmt.Sprintf("lines: %v", b.Lines))
			}
			blocks = append(blocks, AsciiNode{
				Label: fmt.Sprintf("B%d", i),
				Props: props,
			})
		}
		routines = append(routines, AsciiNode{
			Label:    rr.Routine,
			Props:    []string{fmt.Sprintf("size: %d", rr.Size)},
			Children: blocks,
		})
	}
	return AsciiNode{
		Label:    report.Unit,
		Children: routines,
	}
}

func PrintReportAsciiTree(report *Report, output io.Writer, options *common.PrintOptions) error {
	_, err := fmt.Fprintln(output, asciitree.RenderFancy(convertToTree(prepare(report, options))))
	return err
}
