package sword

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

const statementRel = "http://purl.org/net/sword/terms/statement"

// atomEntry is the subset of a SWORD deposit receipt ferry reads.
type atomEntry struct {
	XMLName   xml.Name   `xml:"http://www.w3.org/2005/Atom entry"`
	ID        string     `xml:"http://www.w3.org/2005/Atom id"`
	Links     []atomLink `xml:"http://www.w3.org/2005/Atom link"`
	Treatment string     `xml:"http://purl.org/net/sword/terms/ treatment"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

func (e *atomEntry) link(rel string) string {
	for _, l := range e.Links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

// location returns the most useful receipt link: edit, then edit-media,
// then the statement.
func (e *atomEntry) location() string {
	for _, rel := range []string{"edit", "edit-media", statementRel} {
		if href := e.link(rel); href != "" {
			return href
		}
	}
	return ""
}

// parseReceipt decodes an Atom deposit receipt. An empty body yields nil.
func parseReceipt(r io.Reader) (*atomEntry, error) {
	var entry atomEntry
	if err := xml.NewDecoder(r).Decode(&entry); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode deposit receipt: %w", err)
	}
	return &entry, nil
}

type serviceDocument struct {
	XMLName    xml.Name `xml:"http://www.w3.org/2007/app service"`
	Workspaces []struct {
		Collections []struct {
			Href string `xml:"href,attr"`
		} `xml:"http://www.w3.org/2007/app collection"`
	} `xml:"http://www.w3.org/2007/app workspace"`
}

// parseServiceDocument returns the collection URLs of an AtomPub service document.
func parseServiceDocument(r io.Reader) ([]string, error) {
	var doc serviceDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode service document: %w", err)
	}

	var hrefs []string
	for _, ws := range doc.Workspaces {
		for _, c := range ws.Collections {
			hrefs = append(hrefs, c.Href)
		}
	}
	return hrefs, nil
}
