package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/rclgo/msgidl/internal/cli/ui"
	"github.com/rclgo/msgidl/internal/compiler/metadata"
)

// describeInterface prints a document in IDL-like text, one section per
// message block
func describeInterface(w io.Writer, iface metadata.InterfaceMetadata, noColor bool) {
	ui.Header(w, iface.FullName, noColor)

	info := ui.NewKeyValueTable(w, noColor)
	info.AddRow("Kind", iface.Kind)
	if iface.FilePath != "" {
		info.AddRow("File", iface.FilePath)
	}
	info.AddRow("Fields", fmt.Sprint(iface.FieldCount()))
	info.AddRow("Constants", fmt.Sprint(iface.ConstantCount()))
	info.Render()
	fmt.Fprintln(w)

	for _, msg := range iface.Messages {
		title := msg.Name
		if msg.Role != "" {
			title = strings.ToUpper(msg.Role[:1]) + msg.Role[1:]
		}
		section := ui.NewSection(w, title, noColor)
		for _, c := range msg.Constants {
			section.AddLine(fmt.Sprintf("%s %s=%s", c.Type.Spelling, c.Name, c.Value))
		}
		for _, f := range msg.Fields {
			line := f.Type.Spelling + " " + f.Name
			if f.Default != nil {
				line += " " + *f.Default
			}
			section.AddLine(line)
		}
		section.Render()
	}
}
