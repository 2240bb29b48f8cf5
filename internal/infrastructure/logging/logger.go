package logging

import (
	"io"
	"os"

	"bankdemo/internal/config"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// New 按配置创建 logrus 日志器，out 为空时输出到 stdout
func New(cfg *config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	if out == nil {
		out = os.Stdout
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", cfg.Level)
	}

	var formatter logrus.Formatter
	switch cfg.Format {
	case "", "json":
		formatter = new(logrus.JSONFormatter)
	case "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}

	return &logrus.Logger{
		Out:       out,
		Formatter: formatter,
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
	}, nil
}
