package config

import (
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Handler builds the log handler described by l. Records go to the
// rotating log file when one is set and to stderr when debug is true;
// otherwise they are discarded. The returned closer releases the file.
func (l Log) Handler(debug bool) (log15.Handler, io.Closer, error) {
	lvl, err := log15.LvlFromString(l.Level)
	if err != nil {
		return nil, nil, errors.Wrap(err, "log level")
	}

	var handlers []log15.Handler
	var closer io.Closer = nopCloser{}
	if l.File != "" {
		w := &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
		}
		handlers = append(handlers, log15.LvlFilterHandler(lvl, log15.StreamHandler(w, log15.LogfmtFormat())))
		closer = w
	}
	if debug {
		handlers = append(handlers, log15.LvlFilterHandler(log15.LvlDebug, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
	}

	switch len(handlers) {
	case 0:
		return log15.DiscardHandler(), closer, nil
	case 1:
		return handlers[0], closer, nil
	}
	return log15.MultiHandler(handlers...), closer, nil
}

// Setup installs l as the root log handler.
func (l Log) Setup(debug bool) (io.Closer, error) {
	h, closer, err := l.Handler(debug)
	if err != nil {
		return nil, err
	}
	log15.Root().SetHandler(h)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
