package score

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// Sentinel parse errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported score format")
	ErrInvalidScore      = errors.New("invalid musicxml")
	ErrNoNotes           = errors.New("score contains no pitched notes")
)

// maxMXLEntry bounds the uncompressed size of the root file inside an .mxl.
const maxMXLEntry = 64 << 20

// Note is one pitched note with its length in divisions.
type Note struct {
	PitchClass int
	Octave     int
	Duration   int
}

// KeySignature is a <key> element as written in the score.
type KeySignature struct {
	Fifths int    `xml:"fifths"`
	Mode   string `xml:"mode"`
}

// Document is the subset of a MusicXML score used for analysis.
type Document struct {
	Title         string
	Composer      string
	KeySignature  *KeySignature
	TimeSignature string
	Notes         []Note
	Measures      int
}

type xmlNote struct {
	Pitch *struct {
		Step   string `xml:"step"`
		Alter  string `xml:"alter"`
		Octave int    `xml:"octave"`
	} `xml:"pitch"`
	Duration int       `xml:"duration"`
	Grace    *struct{} `xml:"grace"`
}

type xmlTime struct {
	Beats    string `xml:"beats"`
	BeatType string `xml:"beat-type"`
}

type xmlCreator struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

var stepPitchClass = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

// Load reads a score file by extension: .xml and .musicxml as plain
// MusicXML, .mxl as the compressed container.
func Load(filename string, data []byte) (*Document, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml", ".musicxml":
		return Parse(bytes.NewReader(data))
	case ".mxl":
		root, err := extractMXL(data)
		if err != nil {
			return nil, err
		}
		return Parse(bytes.NewReader(root))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Parse streams a partwise or timewise MusicXML document. The first key of
// the first part and the first time signature in document order are kept.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		// Declared charsets are ignored; input is read as UTF-8.
		return input, nil
	}

	doc := &Document{}
	sawRoot := false
	timewise := false
	measuresInPart := 0
	firstPart, curPart := "", ""
	parts := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
		}

		if end, ok := tok.(xml.EndElement); ok && end.Name.Local == "part" {
			curPart = ""
			continue
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "score-partwise", "score-timewise":
			sawRoot = true
			timewise = start.Name.Local == "score-timewise"
		case "part":
			parts++
			curPart = attr(start, "id")
			if curPart == "" {
				curPart = "#" + strconv.Itoa(parts)
			}
			if firstPart == "" {
				firstPart = curPart
			}
			if !timewise {
				measuresInPart = 0
			}
		case "measure":
			measuresInPart++
			if measuresInPart > doc.Measures {
				doc.Measures = measuresInPart
			}
		case "work-title", "movement-title":
			var title string
			if err := dec.DecodeElement(&title, &start); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
			}
			if doc.Title == "" {
				doc.Title = strings.TrimSpace(title)
			}
		case "creator":
			var c xmlCreator
			if err := dec.DecodeElement(&c, &start); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
			}
			if doc.Composer == "" && c.Type == "composer" {
				doc.Composer = strings.TrimSpace(c.Name)
			}
		case "key":
			var k KeySignature
			if err := dec.DecodeElement(&k, &start); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
			}
			if doc.KeySignature == nil && curPart != "" && curPart == firstPart {
				k.Mode = strings.ToLower(strings.TrimSpace(k.Mode))
				doc.KeySignature = &k
			}
		case "time":
			var t xmlTime
			if err := dec.DecodeElement(&t, &start); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
			}
			if doc.TimeSignature == "" && t.Beats != "" && t.BeatType != "" {
				doc.TimeSignature = t.Beats + "/" + t.BeatType
			}
		case "note":
			var n xmlNote
			if err := dec.DecodeElement(&n, &start); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
			}
			if note, ok := convertNote(n); ok {
				doc.Notes = append(doc.Notes, note)
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: missing score-partwise or score-timewise root", ErrInvalidScore)
	}
	if len(doc.Notes) == 0 {
		return nil, ErrNoNotes
	}
	return doc, nil
}

func convertNote(n xmlNote) (Note, bool) {
	if n.Pitch == nil || n.Grace != nil {
		return Note{}, false
	}
	base, ok := stepPitchClass[strings.ToUpper(strings.TrimSpace(n.Pitch.Step))]
	if !ok {
		return Note{}, false
	}
	alter := 0
	if s := strings.TrimSpace(n.Pitch.Alter); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			alter = int(math.Round(v))
		}
	}
	duration := n.Duration
	if duration <= 0 {
		duration = 1
	}
	return Note{
		PitchClass: ((base+alter)%12 + 12) % 12,
		Octave:     n.Pitch.Octave,
		Duration:   duration,
	}, true
}

type mxlContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// extractMXL returns the root MusicXML file from a compressed score.
func extractMXL(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: mxl is not a zip archive: %v", ErrInvalidScore, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	rootPath := ""
	if f, ok := files["META-INF/container.xml"]; ok {
		raw, err := readZipEntry(f)
		if err != nil {
			return nil, err
		}
		var c mxlContainer
		if err := xml.Unmarshal(raw, &c); err == nil && len(c.Rootfiles) > 0 {
			rootPath = c.Rootfiles[0].FullPath
		}
	}
	if rootPath == "" {
		for _, f := range zr.File {
			ext := strings.ToLower(path.Ext(f.Name))
			if !strings.HasPrefix(f.Name, "META-INF/") && (ext == ".xml" || ext == ".musicxml") {
				rootPath = f.Name
				break
			}
		}
	}

	f, ok := files[rootPath]
	if !ok {
		return nil, fmt.Errorf("%w: mxl has no root score file", ErrInvalidScore)
	}
	return readZipEntry(f)
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidScore, f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxMXLEntry+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidScore, f.Name, err)
	}
	if len(raw) > maxMXLEntry {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidScore, f.Name, maxMXLEntry)
	}
	return raw, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
