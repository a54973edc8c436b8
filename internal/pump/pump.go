package pump

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hdlforge/hdlforge/internal/classify"
	"github.com/hdlforge/hdlforge/internal/logger"
	"github.com/hdlforge/hdlforge/internal/runstate"
)

// Channel names used in the persisted log prefix.
const (
	ChannelStdout = "STDOUT"
	ChannelStderr = "STDERR"
)

const maxLineBytes = 1024 * 1024

// Pump drains a spawned process's output channels. Each channel gets a
// dedicated goroutine that logs, classifies, and forwards every line to the
// run's state machine. Ordering is preserved within a channel only.
type Pump struct {
	run        *runstate.RunState
	classifier *classify.Classifier
	log        *LogWriter
	appLog     *logger.Logger
	wg         sync.WaitGroup
}

// New creates a pump for one run.
func New(run *runstate.RunState, classifier *classify.Classifier, log *LogWriter, appLog *logger.Logger) *Pump {
	return &Pump{
		run:        run,
		classifier: classifier,
		log:        log,
		appLog:     appLog,
	}
}

// Attach starts a reader goroutine for one output channel.
func (p *Pump) Attach(channel string, r io.Reader) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.read(channel, r)
	}()
}

// Wait blocks until every attached reader has fully drained its channel, so
// buffered trailing output is never lost.
func (p *Pump) Wait() {
	p.wg.Wait()
}

// read is the per-channel loop. A fault here is contained: it is logged, the
// channel is abandoned, and the other reader and the run continue.
func (p *Pump) read(channel string, r io.Reader) {
	defer func() {
		if rec := recover(); rec != nil {
			p.appLog.Error(fmt.Errorf("reader panic: %v", rec), "abandoning output channel "+channel)
		}
	}()

	br := bufio.NewReaderSize(r, 64*1024)

	for {
		line, err := readLine(br)
		if err == io.EOF && line == "" {
			return
		}

		// The log record is written before classification so every line,
		// Info included, survives any later processing error.
		if appendErr := p.log.Append(channel, line); appendErr != nil {
			p.appLog.Error(appendErr, "log write failed on channel "+channel)
		}

		p.run.Apply(p.classifier.Classify(line))

		if err != nil {
			if err != io.EOF {
				p.appLog.Error(err, "read failed, abandoning output channel "+channel)
			}
			return
		}
	}
}

// readLine reads up to the next newline. Tool output is untrusted, so a line
// longer than maxLineBytes is truncated rather than treated as a fault; the
// excess is consumed and the channel keeps draining.
func readLine(br *bufio.Reader) (string, error) {
	var buf []byte
	for {
		chunk, err := br.ReadSlice('\n')
		if room := maxLineBytes - len(buf); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			buf = append(buf, chunk...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}

		line := strings.TrimSuffix(string(buf), "\n")
		return strings.TrimSuffix(line, "\r"), err
	}
}
