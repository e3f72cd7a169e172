package logging

import (
	"bytes"
	"strings"
	"sync"
)

type lineWriter struct {
	sync.Mutex
	l     *Logger
	level Level
	buf   bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.Lock()
	defer w.Unlock()

	w.buf.Write(p)
	for {
		data := w.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		w.emit(string(data[:i]))
		w.buf.Next(i + 1)
	}
	return len(p), nil
}

func (w *lineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	w.l.Log(w.level, line)
}

func (w *lineWriter) Close() error {
	w.Lock()
	defer w.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
	return nil
}
