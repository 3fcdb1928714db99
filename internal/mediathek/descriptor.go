package mediathek

import (
	"encoding/json"
	"strings"
)

// mediaDescriptor mirrors the media endpoint's JSON response. Only the
// fields the downloader needs are mapped.
type mediaDescriptor struct {
	MediaArray  []mediaEntry `json:"_mediaArray"`
	SubtitleURL string       `json:"_subtitleUrl"`
}

type mediaEntry struct {
	Streams []streamEntry `json:"_mediaStreamArray"`
}

type streamEntry struct {
	Stream streamSource `json:"_stream"`
}

// streamSource accepts both shapes the endpoint emits: a single URL
// string or a list of URL strings.
type streamSource []string

func (s *streamSource) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = streamSource{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = streamSource(many)
	return nil
}

// candidates flattens the descriptor into a list of probe-ready stream
// URLs. Entries containing a comma are adaptive-bitrate descriptors
// rather than plain files and are skipped.
func (d *mediaDescriptor) candidates() []string {
	var urls []string
	for _, entry := range d.MediaArray {
		for _, stream := range entry.Streams {
			for _, raw := range stream.Stream {
				if strings.Contains(raw, ",") {
					continue
				}
				urls = append(urls, fixScheme(raw))
			}
		}
	}
	return urls
}

// fixScheme prefixes scheme-relative stream URLs with http:.
func fixScheme(raw string) string {
	if strings.HasPrefix(raw, "http:") || strings.HasPrefix(raw, "https:") {
		return raw
	}
	return "http:" + raw
}
