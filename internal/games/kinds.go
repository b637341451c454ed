package games

import "fmt"

// Kind identifies one of the four mini-games.
type Kind string

const (
	KindMemory = Kind("memory")
	KindColor  = Kind("color")
	KindMath   = Kind("math")
	KindWord   = Kind("word")
)

func Kinds() []Kind {
	return []Kind{KindMemory, KindColor, KindMath, KindWord}
}

// ParseKind validates a game kind received from a caller.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMemory, KindColor, KindMath, KindWord:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown game kind: %q", s)
}

// PlayCounts tracks how many times each game was played.
type PlayCounts struct {
	Memory int `json:"memory"`
	Color  int `json:"color"`
	Math   int `json:"math"`
	Word   int `json:"word"`
}

func (p *PlayCounts) Incr(k Kind) {
	switch k {
	case KindMemory:
		p.Memory++
	case KindColor:
		p.Color++
	case KindMath:
		p.Math++
	case KindWord:
		p.Word++
	}
}

func (p PlayCounts) Count(k Kind) int {
	switch k {
	case KindMemory:
		return p.Memory
	case KindColor:
		return p.Color
	case KindMath:
		return p.Math
	case KindWord:
		return p.Word
	}
	return 0
}

// Add returns the element-wise sum of two counter sets.
func (p PlayCounts) Add(o PlayCounts) PlayCounts {
	return PlayCounts{
		Memory: p.Memory + o.Memory,
		Color:  p.Color + o.Color,
		Math:   p.Math + o.Math,
		Word:   p.Word + o.Word,
	}
}

func (p PlayCounts) Total() int {
	return p.Memory + p.Color + p.Math + p.Word
}
