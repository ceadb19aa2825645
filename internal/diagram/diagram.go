/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package diagram renders every forwarded record to an append-only,
// Mermaid-compatible sequence-diagram file.
package diagram

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/saintfish/chardet"

	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/internal/record"
)

// confidenceThreshold is the minimum chardet confidence required before
// trusting its guessed encoding over a lossy UTF-8 fallback.
const confidenceThreshold = 0.8

// wrapWidth and maxLines bound how a message body is rendered: wrapped at
// wrapWidth characters per line, truncated with a trailing ellipsis past
// maxLines.
const (
	wrapWidth = 24
	maxLines  = 10
)

// Writer appends one or two lines per forwarded record to a sequence
// diagram file.
type Writer struct {
	mu   sync.Mutex
	path string
	log  logger.FuncLog
	det  *chardet.Detector
}

// New returns a Writer appending to path. New does not touch the file: it
// is opened on each append and created then if absent; existing content
// is preserved.
func New(path string, log logger.FuncLog) *Writer {
	return &Writer{path: path, log: log, det: chardet.NewTextDetector()}
}

// Report implements internal/forwarder.Reporter.
func (w *Writer) Report(rec record.Record, status record.Status) {
	if status == record.StatusRouterError {
		return
	}

	arrow := "->>"
	if status != record.StatusSuccess {
		arrow = "-x"
	}

	sender := strings.TrimSuffix(rec.Sender, "_Actual")
	recipient := strings.TrimSuffix(rec.Recipient, "_Actual")

	body := w.decode(rec.Message)
	lines := wrap(body)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s%s: ", sender, arrow, recipient)
	if len(lines) == 1 {
		sb.WriteString(lines[0])
	} else {
		sb.WriteString(strings.Join(lines, "<br>"))
	}
	sb.WriteByte('\n')

	if rec.DiagramLabel != "" {
		fmt.Fprintf(&sb, "Note over %s,%s: %s\n", sender, recipient, rec.DiagramLabel)
	}

	w.append(sb.String())
}

func (w *Writer) append(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		if w.log != nil {
			w.log().Error("could not open sequence diagram file %s", err, w.path)
		}
		return
	}
	defer f.Close()

	if _, err := f.WriteString(s); err != nil && w.log != nil {
		w.log().Error("could not write sequence diagram line", err)
	}
}

// decode attempts a content-sniffing decode of message, falling back to a
// lossy UTF-8 decode when the detector's confidence is below threshold or
// the detected encoding fails to decode.
func (w *Writer) decode(message []byte) string {
	result, err := w.det.DetectBest(message)
	if err == nil && result != nil && result.Confidence > int(confidenceThreshold*100) {
		if s, ok := decodeAs(message, result.Charset); ok {
			return s
		}
		if w.log != nil {
			w.log().Warning("could not decode message as detected charset %s, falling back to utf-8", nil, result.Charset)
		}
	} else if w.log != nil {
		conf := 0
		if result != nil {
			conf = result.Confidence
		}
		w.log().Debug("low confidence (%d) in detected encoding, using lossy utf-8 decode", nil, conf)
	}

	return strings.ToValidUTF8(string(message), "�")
}

// decodeAs covers the encodings chardet commonly reports for the short
// ASCII/UTF-8 payloads student assignments exchange; anything else falls
// through to the lossy UTF-8 path.
func decodeAs(message []byte, charset string) (string, bool) {
	switch strings.ToUpper(charset) {
	case "UTF-8", "ASCII", "US-ASCII":
		if utf8.Valid(message) {
			return string(message), true
		}
		return "", false
	default:
		return "", false
	}
}

// wrap splits s into wrapWidth-character lines, capping the result at
// maxLines with a trailing ellipsis when s is longer. Operates on runes
// so multi-byte characters count as one character, matching the original
// per-codepoint wrap.
func wrap(s string) []string {
	runes := []rune(s)
	if len(runes) <= wrapWidth {
		return []string{s}
	}

	var lines []string
	for i := 0; i < len(runes); i += wrapWidth {
		if len(lines) == maxLines {
			lines = append(lines, "...")
			return lines
		}
		end := i + wrapWidth
		if end > len(runes) {
			end = len(runes)
		}
		lines = append(lines, string(runes[i:end]))
	}
	return lines
}
