// Package logx 是提取流程使用的日志协作者。
//
// 每条消息都写入记录日志（JSON，通常是文件）；echo 为 true 时同时输出到控制台。
// 日志从不返回错误；nil *Logger 是合法的空实现。
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger struct {
	record  zerolog.Logger
	console zerolog.Logger
}

// New 创建 Logger。record 为 nil 时丢弃记录日志；console 为 nil 时丢弃控制台输出。
func New(record, console io.Writer) *Logger {
	l := &Logger{record: zerolog.Nop(), console: zerolog.Nop()}
	if record != nil {
		l.record = zerolog.New(record).With().Timestamp().Logger()
	}
	if console != nil {
		w := zerolog.ConsoleWriter{Out: console, NoColor: true, TimeFormat: "15:04:05"}
		l.console = zerolog.New(w).With().Timestamp().Logger()
	}
	return l
}

// Stderr 创建只输出到 stderr 的 Logger。
func Stderr() *Logger { return New(nil, os.Stderr) }

// Discard 创建丢弃一切输出的 Logger。
func Discard() *Logger { return New(nil, nil) }

// With 返回附带固定属性（如 run_id）的子 Logger。args 为交替的键值对。
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		record:  l.record.With().Fields(args).Logger(),
		console: l.console.With().Fields(args).Logger(),
	}
}

func (l *Logger) Info(msg string, echo bool, args ...any) {
	l.log(zerolog.InfoLevel, msg, echo, args)
}

func (l *Logger) Warning(msg string, echo bool, args ...any) {
	l.log(zerolog.WarnLevel, msg, echo, args)
}

func (l *Logger) Error(msg string, echo bool, args ...any) {
	l.log(zerolog.ErrorLevel, msg, echo, args)
}

func (l *Logger) log(level zerolog.Level, msg string, echo bool, args []any) {
	if l == nil {
		return
	}
	l.record.WithLevel(level).Fields(args).Msg(msg)
	if echo {
		l.console.WithLevel(level).Fields(args).Msg(msg)
	}
}
