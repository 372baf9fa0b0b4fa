// Package particle provides the on-disk structures of a particle library:
// the <ParticleLibrary> export document and the control-point curves used
// by animated parameters.
package particle

import "encoding/xml"

// Library is the root of an exported particle library document.
type Library struct {
	XMLName         xml.Name    `xml:"ParticleLibrary"`
	Name            string      `xml:"Name,attr"`
	SandboxVersion  string      `xml:"SandboxVersion,attr,omitempty"`
	ParticleVersion string      `xml:"ParticleVersion,attr,omitempty"`
	Effects         []Particles `xml:"Particles"`
}

// Particles is one effect in the library.
type Particles struct {
	Name   string `xml:"Name,attr"`
	GUID   string `xml:"GUID,attr,omitempty"`
	Params Params `xml:"Params"`
}

// Params holds every exported attribute of an effect, in document order.
// Values keep their exported string form; typed conversion needs the
// parameter schema and happens in the export package.
type Params struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// Get returns the attribute named name.
func (p Params) Get(name string) (string, bool) {
	for _, a := range p.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
