package transcript

import (
	"os"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/narration-flow/pkg/fsutil"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

// writeDocx renders the transcript as a styled docx: a title, then one
// heading and one paragraph per frame.
func writeDocx(title string, sections []Section, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)

	for _, s := range sections {
		addStyledRun(doc.AddParagraph(""), s.Name, true, 14)

		text := strings.Join(strings.Fields(s.Text), " ")
		if text == "" {
			continue
		}
		addStyledRun(doc.AddParagraph(""), text, false, fontSize)
	}

	tmp := strings.TrimSuffix(outputPath, ".docx") + ".partial.docx"
	defer os.Remove(tmp)

	if err := doc.SaveTo(tmp); err != nil {
		return err
	}
	return fsutil.MoveFile(tmp, outputPath)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
