package score

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// partwise builds a one-part score. keyXML may be empty; notes are
// "step[alter]:octave:duration" tokens separated by spaces.
func partwise(keyXML, notes string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 4.0 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">
<score-partwise version="4.0">
  <work><work-title>Test Piece</work-title></work>
  <identification><creator type="composer">Anon</creator></identification>
  <part-list><score-part id="P1"><part-name>Piano</part-name></score-part></part-list>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>1</divisions>`)
	b.WriteString(keyXML)
	b.WriteString(`<time><beats>3</beats><beat-type>4</beat-type></time></attributes>`)
	for _, tok := range strings.Fields(notes) {
		var step, alter string
		var octave, dur int
		parts := strings.Split(tok, ":")
		step = parts[0][:1]
		alter = parts[0][1:]
		fmt.Sscanf(parts[1], "%d", &octave)
		fmt.Sscanf(parts[2], "%d", &dur)
		b.WriteString("<note><pitch><step>" + step + "</step>")
		if alter != "" {
			b.WriteString("<alter>" + alter + "</alter>")
		}
		fmt.Fprintf(&b, "<octave>%d</octave></pitch><duration>%d</duration></note>", octave, dur)
	}
	b.WriteString(`<note><rest/><duration>1</duration></note>
    </measure>
    <measure number="2"/>
  </part>
</score-partwise>`)
	return b.String()
}

const cMajorNotes = "C:4:4 D:4:1 E:4:2 F:4:1 G:4:2 A:4:1 B:4:1 C:5:4"
const aMinorNotes = "A:3:4 B:3:1 C:4:2 D:4:1 E:4:2 F:4:1 G1:4:1 A:4:4"

func TestParsePartwise(t *testing.T) {
	doc, err := Parse(strings.NewReader(partwise("<key><fifths>-2</fifths><mode>major</mode></key>", cMajorNotes)))
	require.NoError(t, err)

	assert.Equal(t, "Test Piece", doc.Title)
	assert.Equal(t, "Anon", doc.Composer)
	assert.Equal(t, "3/4", doc.TimeSignature)
	assert.Equal(t, 2, doc.Measures)
	require.NotNil(t, doc.KeySignature)
	assert.Equal(t, -2, doc.KeySignature.Fifths)
	assert.Len(t, doc.Notes, 8, "rests are skipped")
	assert.Equal(t, Note{PitchClass: 0, Octave: 4, Duration: 4}, doc.Notes[0])
}

func TestParseAlterWrapsPitchClass(t *testing.T) {
	doc, err := Parse(strings.NewReader(partwise("", "B1:3:1 C-1:4:1")))
	require.NoError(t, err)
	require.Len(t, doc.Notes, 2)
	assert.Equal(t, 0, doc.Notes[0].PitchClass)
	assert.Equal(t, 11, doc.Notes[1].PitchClass)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("<score-partwise><part><measure>"))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = Parse(strings.NewReader("<html><body/></html>"))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = Parse(strings.NewReader(`<score-partwise><part id="P1"><measure><note><rest/></note></measure></part></score-partwise>`))
	assert.ErrorIs(t, err, ErrNoNotes)
}

func TestLoadByExtension(t *testing.T) {
	data := []byte(partwise("", cMajorNotes))

	_, err := Load("song.musicxml", data)
	assert.NoError(t, err)

	_, err = Load("song.pdf", data)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMXL(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("META-INF/container.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<container><rootfiles><rootfile full-path="score/song.xml"/></rootfiles></container>`))
	require.NoError(t, err)
	w, err = zw.Create("score/song.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(partwise("", aMinorNotes)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	doc, err := Load("song.mxl", buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, doc.Notes, 8)

	_, err = Load("song.mxl", []byte("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestKeyFromSignature(t *testing.T) {
	tests := []struct {
		fifths  int
		mode    string
		english string
		korean  string
	}{
		{0, "major", "C major", "다장조"},
		{0, "minor", "A minor", "가단조"},
		{-3, "minor", "C minor", "다단조"},
		{2, "", "D major", "라장조"},
		{6, "major", "F# major", "올림바장조"},
		{-2, "major", "Bb major", "내림나장조"},
		{3, "dorian", "A major", "가장조"},
	}
	for _, tt := range tests {
		t.Run(tt.english, func(t *testing.T) {
			k, ok := KeyFromSignature(KeySignature{Fifths: tt.fifths, Mode: tt.mode})
			require.True(t, ok)
			assert.Equal(t, tt.english, k.English())
			assert.Equal(t, tt.korean, k.Korean())
		})
	}

	_, ok := KeyFromSignature(KeySignature{Fifths: 9})
	assert.False(t, ok)
}

func TestEstimateKey(t *testing.T) {
	doc, err := Parse(strings.NewReader(partwise("", cMajorNotes)))
	require.NoError(t, err)
	k, score := EstimateKey(doc.Notes)
	assert.Equal(t, "C major", k.English())
	assert.Greater(t, score, 0.5)

	doc, err = Parse(strings.NewReader(partwise("", aMinorNotes)))
	require.NoError(t, err)
	k, _ = EstimateKey(doc.Notes)
	assert.Equal(t, "A minor", k.English())
}

func TestRelatedKeys(t *testing.T) {
	c := NewKey(0, Major)
	assert.Equal(t, "A minor", c.Relative().English())
	assert.Equal(t, "C minor", c.Parallel().English())
	assert.Equal(t, "G major", c.Dominant().English())

	a := NewKey(9, Minor)
	assert.Equal(t, "C major", a.Relative().English())
	assert.Equal(t, "E minor", a.Dominant().English())
}

func TestAnalyzerPrefersSignature(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	res, err := a.Analyze(context.Background(), "song.xml",
		[]byte(partwise("<key><fifths>1</fifths><mode>major</mode></key>", cMajorNotes)))
	require.NoError(t, err)
	assert.Equal(t, MethodSignature, res.Method)
	assert.Equal(t, "사장조", res.KeyName)
	assert.Equal(t, "G major", res.KeyNameEN)

	res, err = a.Analyze(context.Background(), "song.xml", []byte(partwise("", cMajorNotes)))
	require.NoError(t, err)
	assert.Equal(t, MethodProfile, res.Method)
	assert.Equal(t, "다장조", res.KeyName)
	assert.Equal(t, 8, res.NoteCount)
}

const twoPartScore = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="4.0">
  <part-list>
    <score-part id="P1"><part-name>Flute</part-name></score-part>
    <score-part id="P2"><part-name>Horn</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes><divisions>1</divisions></attributes>
      <note><pitch><step>C</step><octave>4</octave></pitch><duration>4</duration></note>
      <note><pitch><step>E</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration></note>
      <note><pitch><step>C</step><octave>5</octave></pitch><duration>2</duration></note>
    </measure>
  </part>
  <part id="P2">
    <measure number="1">
      <attributes><divisions>1</divisions><key><fifths>-3</fifths><mode>minor</mode></key></attributes>
      <note><pitch><step>C</step><octave>3</octave></pitch><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

func TestParseKeepsOnlyFirstPartKey(t *testing.T) {
	doc, err := Parse(strings.NewReader(twoPartScore))
	require.NoError(t, err)
	assert.Nil(t, doc.KeySignature)
	assert.Len(t, doc.Notes, 5)

	res, err := NewAnalyzer(zerolog.Nop()).Analyze(context.Background(), "duet.musicxml", []byte(twoPartScore))
	require.NoError(t, err)
	assert.Equal(t, MethodProfile, res.Method)
	assert.Equal(t, "C major", res.KeyNameEN)
}

func TestAnalyzerWrapsParseError(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	_, err := a.Analyze(context.Background(), "broken.xml", []byte("<score-partwise>"))
	assert.ErrorIs(t, err, ErrInvalidScore)
}
