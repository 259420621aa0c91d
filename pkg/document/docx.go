package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxBlock is one body-level element of a DOCX document, in document order.
// Either a paragraph (text) or a table (rows).
type docxBlock struct {
	table bool
	text  string
	rows  [][]string
}

// extractDocxBlocks reads word/document.xml out of the DOCX zip container and
// returns its paragraphs and tables in order. Pure Go, no external tooling.
func extractDocxBlocks(path string) ([]docxBlock, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("docx %s: word/document.xml not found", path)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return decodeDocxBody(xml.NewDecoder(rc))
}

func decodeDocxBody(dec *xml.Decoder) ([]docxBlock, error) {
	var blocks []docxBlock

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "tbl":
			rows, err := decodeTable(dec)
			if err != nil {
				return nil, err
			}
			if len(rows) > 0 {
				blocks = append(blocks, docxBlock{table: true, rows: rows})
			}
		case "p":
			text, err := decodeParagraph(dec)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) != "" {
				blocks = append(blocks, docxBlock{text: text})
			}
		}
	}

	return blocks, nil
}

// decodeParagraph consumes tokens up to the matching </w:p>, concatenating
// the text runs. Line breaks map to newlines, tabs to spaces.
func decodeParagraph(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	inText := false

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("decode paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString(" ")
			}
			depth++
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

// decodeTable consumes tokens up to the matching </w:tbl> and returns cell
// text grouped by row. Nested table content folds into the enclosing cell.
func decodeTable(dec *xml.Decoder) ([][]string, error) {
	var rows [][]string
	var row []string
	var cell strings.Builder
	depth := 1
	inText := false

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode table: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "tr" && depth == 1:
				row = nil
			case t.Name.Local == "tc" && depth == 2:
				cell.Reset()
			case t.Name.Local == "t":
				inText = true
			}
			depth++
		case xml.EndElement:
			depth--
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "tc" && depth == 2:
				row = append(row, cell.String())
			case t.Name.Local == "tr" && depth == 1:
				if len(row) > 0 {
					rows = append(rows, row)
				}
			}
		case xml.CharData:
			if inText {
				cell.Write(t)
			}
		}
	}

	return rows, nil
}
