// Package document writes the Word export of a generated question: a DOCX
// package with one Title heading and one body paragraph.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/wml/ctypes"
)

const (
	// Filename is the attachment name offered for download.
	Filename = "music_question.docx"
	// MIMEType is the content type of a DOCX package.
	MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	// DefaultHeading titles every exported question.
	DefaultHeading = "🎼 문항 생성 결과"
)

// ErrEmptyBody is returned when there is no text to export.
var ErrEmptyBody = errors.New("document body is empty")

// Build returns a DOCX package holding heading as a Title paragraph and body as
// a single paragraph. Newlines in body become line breaks and tabs become tab
// stops, so the paragraph reads the same as the on-screen text.
func Build(heading, body string) ([]byte, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	if heading == "" {
		heading = DefaultHeading
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	if _, err := doc.AddHeading(heading, 0); err != nil {
		return nil, fmt.Errorf("add heading: %w", err)
	}

	p := doc.AddEmptyParagraph()
	p.GetCT().Children = append(p.GetCT().Children, ctypes.ParagraphChild{Run: bodyRun(body)})

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write package: %w", err)
	}
	return buf.Bytes(), nil
}

// bodyRun lays text out as one run, translating \n and \t the way Word expects.
func bodyRun(text string) *ctypes.Run {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	run := &ctypes.Run{}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run.Children = append(run.Children, ctypes.RunChild{Break: &ctypes.Break{}})
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				run.Children = append(run.Children, ctypes.RunChild{Tab: &ctypes.Empty{}})
			}
			if seg == "" {
				continue
			}
			run.Children = append(run.Children, ctypes.RunChild{Text: ctypes.TextFromString(seg)})
		}
	}
	return run
}
