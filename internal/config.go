package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Config struct {
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=2s"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	CensoredWords     string        `env:"CENSORED_WORDS"`
	IndexBatchSize    int           `env:"INDEX_BATCH_SIZE,default=16"`
	IndexFlushTimeout time.Duration `env:"INDEX_FLUSH_TIMEOUT,default=500ms"`
	SearchLimit       int           `env:"SEARCH_LIMIT,default=20"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// CensoredWordList splits the comma separated CENSORED_WORDS value.
func (c Config) CensoredWordList() []string {
	return lo.Compact(lo.Map(strings.Split(c.CensoredWords, ","), func(w string, _ int) string {
		return strings.TrimSpace(w)
	}))
}
