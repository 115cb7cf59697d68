// Package ingestion turns corpus files into embedding-ready fragments.
//
// The Loader walks a corpus directory and parses its files, including:
//   - SubRip subtitles (.srt), parsed into cues and regrouped into
//     fragments that keep their real time ranges
//   - Plain text (.txt, .md), split recursively by size
//
// Files are parsed concurrently on a worker pool, but the returned
// fragment order is deterministic: files in path order, fragments in file
// position order, with Seq numbers assigned globally over that order.
package ingestion
