package log

import (
	"github.com/kochabx/trustcore/log/writer"
)

// FileConfig configures file log output
type FileConfig struct {
	Filepath   string `json:"filepath" default:"log"`
	Filename   string `json:"filename" default:"trustcore"`
	FileExt    string `json:"file_ext" default:"log"`
	MaxSize    int    `json:"max_size" default:"100"`
	MaxBackups int    `json:"max_backups" default:"5"`
	MaxAge     int    `json:"max_age" default:"30"`
	Compress   bool   `json:"compress" default:"false"`
}

func (c *FileConfig) toWriterConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Filepath:   c.Filepath,
		Filename:   c.Filename,
		FileExt:    c.FileExt,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}
