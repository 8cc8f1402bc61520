package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paragraphs reads word/document.xml back into plain text, one string per paragraph.
func paragraphs(t *testing.T, pkg []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)

	var raw []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			raw, err = io.ReadAll(rc)
			require.NoError(t, err)
			rc.Close()
		}
	}
	require.NotEmpty(t, raw, "word/document.xml missing")

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var out []string
	var cur strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inText = true
			case "br":
				cur.WriteString("\n")
			case "tab":
				cur.WriteString("\t")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "p":
				out = append(out, cur.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(el)
			}
		}
	}
	return out
}

func TestBuildHeadingAndParagraph(t *testing.T) {
	body := "Q1. 다음 중 고전주의 음악에 속하는 작곡가는 누구인가요?\n- A) 바흐\n- B) 모차르트\n정답: B"

	pkg, err := Build("", body)
	require.NoError(t, err)

	paras := paragraphs(t, pkg)
	require.Len(t, paras, 2)
	assert.Equal(t, DefaultHeading, paras[0])
	assert.Equal(t, body, paras[1])
}

func TestBuildEscapesMarkup(t *testing.T) {
	body := "<b>A & B</b>\tC"

	pkg, err := Build("제목", body)
	require.NoError(t, err)

	paras := paragraphs(t, pkg)
	require.Len(t, paras, 2)
	assert.Equal(t, "제목", paras[0])
	assert.Equal(t, body, paras[1])
}

func TestBuildPackageParts(t *testing.T) {
	pkg, err := Build(DefaultHeading, "본문")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml", "word/_rels/document.xml.rels"} {
		assert.True(t, names[want], "missing part %s", want)
	}
}

func TestBuildHeadingUsesTitleStyle(t *testing.T) {
	pkg, err := Build("", "본문")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)

	var raw []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			raw, err = io.ReadAll(rc)
			require.NoError(t, err)
			rc.Close()
		}
	}
	assert.Contains(t, string(raw), `w:val="Title"`)
}

func TestBuildRejectsEmptyBody(t *testing.T) {
	_, err := Build(DefaultHeading, "  \n ")
	assert.ErrorIs(t, err, ErrEmptyBody)
}
