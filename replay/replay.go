// Package replay records and replays timestamped measurement streams,
// adapted from ApiStack-engine-go/server/replay.go's real-time pacing loop
// and ApiStack-engine-go/binlog/writer.go's recorder, generalized from the
// binary UNIB/PCAP format to newline-delimited JSON measurement.Measurement
// records.
package replay

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"senseye/measurement"
)

// Recorder appends measurement.Measurement records to a writer as
// newline-delimited JSON, in receipt order.
type Recorder struct {
	w *bufio.Writer
}

// NewRecorder wraps w for sequential measurement recording.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: bufio.NewWriter(w)}
}

// Write appends one measurement record.
func (r *Recorder) Write(m measurement.Measurement) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(data); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

// Flush flushes any buffered output.
func (r *Recorder) Flush() error {
	return r.w.Flush()
}

// Player replays a recorded measurement stream, pacing delivery to match
// the gap between each record's original TimestampMS, scaled by Speed
// (the same real-time-vs-recorded-time pacing as
// ApiStack-engine-go/server/replay.go's Replay loop, generalized from a
// fixed-format PCAP record to a decoded JSON value).
type Player struct {
	dec   *json.Decoder
	Speed float64

	firstRecordMS int64
	startReal     time.Time
	started       bool
}

// NewPlayer wraps r for paced replay. speed=1.0 replays at the original
// rate; speed=0 disables pacing entirely (as fast as records can be read).
func NewPlayer(r io.Reader, speed float64) *Player {
	if speed <= 0 {
		speed = 0
	}
	return &Player{dec: json.NewDecoder(bufio.NewReader(r)), Speed: speed}
}

// Next returns the next measurement, blocking (via time.Sleep) until its
// paced delivery time if Speed > 0, or io.EOF once the stream is
// exhausted.
func (p *Player) Next() (measurement.Measurement, error) {
	var m measurement.Measurement
	if err := p.dec.Decode(&m); err != nil {
		return measurement.Measurement{}, err
	}

	if p.Speed > 0 {
		if !p.started {
			p.firstRecordMS = m.TimestampMS
			p.startReal = time.Now()
			p.started = true
		}
		recordedElapsed := time.Duration(float64(m.TimestampMS-p.firstRecordMS)/p.Speed) * time.Millisecond
		targetReal := p.startReal.Add(recordedElapsed)
		if wait := time.Until(targetReal); wait > 0 {
			time.Sleep(wait)
		}
	}
	return m, nil
}
