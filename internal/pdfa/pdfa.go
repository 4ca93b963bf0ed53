// Package pdfa attaches a Factur-X XML document to a rendered PDF.
//
// The attachment is written as a PDF incremental update: the original bytes
// are kept untouched and three objects are appended (the embedded file
// stream, its file specification and a rewritten document catalog carrying
// /Names and /AF entries), followed by a new cross-reference section whose
// trailer chains to the previous one via /Prev. Only documents with a
// classic cross-reference table are supported, which covers everything the
// render package produces.
package pdfa

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// AttachmentName is the filename mandated by the Factur-X convention.
	AttachmentName = "factur-x.xml"

	// FlavorFacturX is the only profile tag the attacher accepts.
	FlavorFacturX = "facturx"
)

var (
	// ErrAlreadyAttached reports a catalog that already carries embedded
	// files; the attacher never merges into an existing name tree.
	ErrAlreadyAttached = errors.New("document already carries embedded files")

	sizeRe      = regexp.MustCompile(`/Size\s+(\d+)`)
	rootRe      = regexp.MustCompile(`/Root\s+(\d+)\s+(\d+)\s+R`)
	infoRe      = regexp.MustCompile(`/Info\s+(\d+)\s+(\d+)\s+R`)
	startxrefRe = regexp.MustCompile(`startxref\s+(\d+)`)
)

type Attacher struct{}

func New() *Attacher {
	return &Attacher{}
}

// Embed returns base with xmlDoc attached as factur-x.xml. The level tag is
// recorded in the file description only; conformance is the caller's claim.
func (a *Attacher) Embed(base, xmlDoc []byte, flavor, level string) ([]byte, error) {
	if flavor != FlavorFacturX {
		return nil, fmt.Errorf("unsupported flavor %q", flavor)
	}

	t, err := parseTrailer(base)
	if err != nil {
		return nil, err
	}

	catBody, err := findCatalog(base, t.rootNum, t.rootGen)
	if err != nil {
		return nil, err
	}

	if bytes.Contains(catBody, []byte("/Names")) || bytes.Contains(catBody, []byte("/AF")) {
		return nil, ErrAlreadyAttached
	}

	efNum := t.size
	fsNum := t.size + 1

	newCatalog := rewriteCatalog(catBody, fsNum)
	if newCatalog == nil {
		return nil, fmt.Errorf("catalog object %d %d: malformed dictionary", t.rootNum, t.rootGen)
	}

	out := bytes.NewBuffer(make([]byte, 0, len(base)+len(xmlDoc)+1024))
	out.Write(base)

	if base[len(base)-1] != '\n' {
		out.WriteByte('\n')
	}

	efOff := out.Len()
	modDate := time.Now().UTC().Format("20060102150405")
	fmt.Fprintf(out, "%d 0 obj\n<< /Type /EmbeddedFile /Subtype /text#2Fxml /Params << /ModDate (D:%sZ) /Size %d >> /Length %d >>\nstream\n",
		efNum, modDate, len(xmlDoc), len(xmlDoc))
	out.Write(xmlDoc)
	out.WriteString("\nendstream\nendobj\n")

	fsOff := out.Len()
	fmt.Fprintf(out, "%d 0 obj\n<< /Type /Filespec /F (%s) /UF (%s) /Desc (Factur-X invoice, %s profile) /AFRelationship /Data /EF << /F %d 0 R /UF %d 0 R >> >>\nendobj\n",
		fsNum, AttachmentName, AttachmentName, level, efNum, efNum)

	catOff := out.Len()
	fmt.Fprintf(out, "%d %d obj\n", t.rootNum, t.rootGen)
	out.Write(newCatalog)
	out.WriteString("\nendobj\n")

	xrefOff := out.Len()
	out.WriteString("xref\n")
	out.WriteString("0 1\n0000000000 65535 f \n")
	fmt.Fprintf(out, "%d 1\n%010d %05d n \n", t.rootNum, catOff, t.rootGen)
	fmt.Fprintf(out, "%d 2\n%010d 00000 n \n%010d 00000 n \n", efNum, efOff, fsOff)

	out.WriteString("trailer\n")
	fmt.Fprintf(out, "<< /Size %d /Root %d %d R", t.size+2, t.rootNum, t.rootGen)

	if t.infoNum >= 0 {
		fmt.Fprintf(out, " /Info %d %d R", t.infoNum, t.infoGen)
	}

	fmt.Fprintf(out, " /Prev %d >>\n", t.prevXref)
	fmt.Fprintf(out, "startxref\n%d\n%%%%EOF\n", xrefOff)

	return out.Bytes(), nil
}

type trailer struct {
	size     int
	rootNum  int
	rootGen  int
	infoNum  int
	infoGen  int
	prevXref int
}

func parseTrailer(base []byte) (*trailer, error) {
	if !bytes.HasPrefix(base, []byte("%PDF-")) {
		return nil, errors.New("not a PDF document")
	}

	sxIdx := bytes.LastIndex(base, []byte("startxref"))
	if sxIdx < 0 {
		return nil, errors.New("malformed document: startxref not found")
	}

	m := startxrefRe.FindSubmatch(base[sxIdx:])
	if m == nil {
		return nil, errors.New("malformed document: unreadable startxref offset")
	}

	prevXref, err := strconv.Atoi(string(m[1]))
	if err != nil || prevXref <= 0 || prevXref >= len(base) {
		return nil, errors.New("malformed document: cross-reference offset out of range")
	}

	if !bytes.HasPrefix(base[prevXref:], []byte("xref")) {
		return nil, errors.New("cross-reference streams are not supported")
	}

	trIdx := bytes.LastIndex(base[:sxIdx], []byte("trailer"))
	if trIdx < 0 {
		return nil, errors.New("malformed document: trailer not found")
	}

	dict := base[trIdx:sxIdx]
	if bytes.Contains(dict, []byte("/Encrypt")) {
		return nil, errors.New("encrypted documents are not supported")
	}

	t := &trailer{infoNum: -1, prevXref: prevXref}

	sm := sizeRe.FindSubmatch(dict)
	if sm == nil {
		return nil, errors.New("malformed trailer: /Size not found")
	}

	t.size, _ = strconv.Atoi(string(sm[1]))

	rm := rootRe.FindSubmatch(dict)
	if rm == nil {
		return nil, errors.New("malformed trailer: /Root not found")
	}

	t.rootNum, _ = strconv.Atoi(string(rm[1]))
	t.rootGen, _ = strconv.Atoi(string(rm[2]))

	if t.rootNum <= 0 || t.rootNum >= t.size {
		return nil, errors.New("malformed trailer: /Root out of range")
	}

	if im := infoRe.FindSubmatch(dict); im != nil {
		t.infoNum, _ = strconv.Atoi(string(im[1]))
		t.infoGen, _ = strconv.Atoi(string(im[2]))
	}

	return t, nil
}

// findCatalog returns the dictionary of the newest definition of the root
// object. Incremental updates append redefinitions, so the last match wins.
func findCatalog(base []byte, num, gen int) ([]byte, error) {
	objRe := regexp.MustCompile(fmt.Sprintf(`(?m)^[ \t]*%d\s+%d\s+obj\b`, num, gen))

	locs := objRe.FindAllIndex(base, -1)
	if locs == nil {
		return nil, fmt.Errorf("catalog object %d %d not found", num, gen)
	}

	start := locs[len(locs)-1][1]

	end := bytes.Index(base[start:], []byte("endobj"))
	if end < 0 {
		return nil, fmt.Errorf("catalog object %d %d: endobj not found", num, gen)
	}

	body := bytes.TrimSpace(base[start : start+end])
	if !bytes.Contains(body, []byte("/Catalog")) {
		return nil, fmt.Errorf("object %d %d is not the document catalog", num, gen)
	}

	return body, nil
}

// rewriteCatalog inserts the embedded-files name tree and the associated
// files array before the dictionary's closing delimiter.
func rewriteCatalog(body []byte, fsNum int) []byte {
	idx := bytes.LastIndex(body, []byte(">>"))
	if idx < 0 {
		return nil
	}

	var buf bytes.Buffer

	buf.Write(body[:idx])
	fmt.Fprintf(&buf, "/Names << /EmbeddedFiles << /Names [(%s) %d 0 R] >> >>\n/AF [%d 0 R]\n", AttachmentName, fsNum, fsNum)
	buf.Write(body[idx:])

	return buf.Bytes()
}
