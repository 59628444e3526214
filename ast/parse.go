package ast

import (
	"bytes"
	"sync"

	"github.com/alecthomas/participle/v2"

	"github.com/reprotoc/reproto/source"
)

var (
	buildOnce sync.Once
	parser    *participle.Parser
	buildErr  error
)

func grammarParser() (*participle.Parser, error) {
	buildOnce.Do(func() {
		parser, buildErr = participle.Build(&File{},
			participle.Lexer(Definition),
			participle.UseLookahead(64),
		)
	})

	return parser, buildErr
}

// Parse parses a single .reproto source into a File. Mirrors
// golangee/tadl's parser.Parse: build the grammar once, then hand the
// source's bytes to participle with this source's display name as the
// parse filename.
func Parse(src *source.Source) (*File, error) {
	p, err := grammarParser()
	if err != nil {
		return nil, err
	}

	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}

	f := &File{}
	if err := p.Parse(src.Name(), bytes.NewReader(data), f); err != nil {
		return nil, err
	}

	f.Source = src

	return f, nil
}
