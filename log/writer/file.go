package writer

import (
	"io"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig configures size-based log rotation
type RotateConfig struct {
	Filepath   string
	Filename   string
	FileExt    string
	MaxSize    int  // maximum size of a single log file (MB)
	MaxBackups int  // number of rotated files to keep
	MaxAge     int  // days to retain rotated files
	Compress   bool // gzip rotated files
}

// File creates a size-rotating file writer
func File(config RotateConfig) (io.Writer, error) {
	return &lumberjack.Logger{
		Filename:   config.fileFullPath(),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}, nil
}

func (c *RotateConfig) fileFullPath() string {
	return filepath.Join(c.Filepath, c.Filename+"."+c.FileExt)
}
