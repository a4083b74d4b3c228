// Package guide exports the materialized schedule as an XMLTV document.
package guide

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/google/renameio/v2"

	"github.com/vmunix/pseudotv/internal/schedule"
)

// TimeLayout is the XMLTV timestamp format.
const TimeLayout = "20060102150405 -0700"

// TV is the XMLTV root element.
type TV struct {
	XMLName    xml.Name    `xml:"tv"`
	Generator  string      `xml:"generator-info-name,attr,omitempty"`
	Channels   []Channel   `xml:"channel"`
	Programmes []Programme `xml:"programme"`
}

type Channel struct {
	ID          string `xml:"id,attr"`
	DisplayName string `xml:"display-name"`
	Icon        *Icon  `xml:"icon,omitempty"`
}

type Icon struct {
	Src string `xml:"src,attr"`
}

type Programme struct {
	Start      string       `xml:"start,attr"`
	Stop       string       `xml:"stop,attr"`
	Channel    string       `xml:"channel,attr"`
	Title      string       `xml:"title"`
	SubTitle   string       `xml:"sub-title,omitempty"`
	Category   string       `xml:"category,omitempty"`
	Length     *Length      `xml:"length,omitempty"`
	EpisodeNum []EpisodeNum `xml:"episode-num,omitempty"`
}

type Length struct {
	Units string `xml:"units,attr"`
	Value int64  `xml:",chardata"`
}

type EpisodeNum struct {
	System string `xml:"system,attr"`
	Value  string `xml:",chardata"`
}

// ChannelInfo identifies the channel in the guide.
type ChannelInfo struct {
	ID   string
	Name string
	Icon string
}

// Build lays entries out on day. Entries whose window crosses midnight
// stop on the following day.
func Build(ch ChannelInfo, entries []schedule.Placement, day time.Time) *TV {
	c := Channel{ID: ch.ID, DisplayName: ch.Name}
	if ch.Icon != "" {
		c.Icon = &Icon{Src: ch.Icon}
	}
	tv := &TV{
		Generator:  "pseudotv",
		Channels:   []Channel{c},
		Programmes: make([]Programme, 0, len(entries)),
	}
	for _, e := range entries {
		start := e.Start.On(day)
		stop := start.Add(e.Window().Length())
		m := e.Item.Common()

		p := Programme{
			Start:    start.Format(TimeLayout),
			Stop:     stop.Format(TimeLayout),
			Channel:  ch.ID,
			Title:    m.Title,
			Category: e.Item.SectionType(),
		}
		if m.Duration > 0 {
			p.Length = &Length{Units: "seconds", Value: int64(m.Duration / time.Second)}
		}
		if ep, ok := e.Item.(schedule.EpisodeItem); ok {
			if ep.ShowTitle != "" {
				p.Title, p.SubTitle = ep.ShowTitle, ep.Title
			}
			if ep.SeasonNumber > 0 && ep.EpisodeNumber > 0 {
				p.EpisodeNum = []EpisodeNum{
					{System: "xmltv_ns", Value: fmt.Sprintf("%d.%d.", ep.SeasonNumber-1, ep.EpisodeNumber-1)},
					{System: "onscreen", Value: fmt.Sprintf("S%02dE%02d", ep.SeasonNumber, ep.EpisodeNumber)},
				}
			}
		}
		tv.Programmes = append(tv.Programmes, p)
	}
	return tv
}

// Write encodes tv with an XML header.
func Write(w io.Writer, tv *TV) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(tv); err != nil {
		return fmt.Errorf("encode xmltv: %w", err)
	}
	return enc.Close()
}

// WriteFile replaces path with tv. Readers see either the old or the new
// file, never a partial one.
func WriteFile(path string, tv *TV) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending XMLTV file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if err := Write(pending, tv); err != nil {
		return fmt.Errorf("write XMLTV data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace XMLTV file: %w", err)
	}
	return nil
}
