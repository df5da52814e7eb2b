package parser

import (
	"encoding/xml"
	"strings"
)

// xmlParagraph captures the visible text of a WordprocessingML or DrawingML paragraph.
type xmlParagraph struct {
	Text string
}

func (p *xmlParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	text, err := collectText(d)
	if err != nil {
		return err
	}
	p.Text = text
	return nil
}

// collectText consumes tokens up to the end of the current element and
// returns the text of its t elements, with tab and break markers expanded.
// Property blocks, drawings and alternate content are skipped.
func collectText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	inText := 0
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr", "rPr", "drawing", "pict", "AlternateContent":
				if err := d.Skip(); err != nil {
					return "", err
				}
				continue
			case "t":
				inText++
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
			depth++
		case xml.EndElement:
			if t.Name.Local == "t" && inText > 0 {
				inText--
			}
			depth--
		case xml.CharData:
			if inText > 0 {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
