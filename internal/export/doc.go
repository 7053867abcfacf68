// Package export renders speaker-tagged segments into the five artifact
// encodings scribe serves: SRT, WebVTT, plain text, CSV, and page-document
// text. It also parses persisted SRT artifacts back into segments so exports
// requested long after a job completed work from the artifact alone.
package export
