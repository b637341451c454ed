package games

import (
	"fmt"
	"math/rand"
	"time"

	"starplay/internal/utility"
)

// Point values awarded by each game. Advanced variants unlock once a
// player has banked enough total score and pay out more per answer.
const (
	MathPoints         = 5
	MathPointsAdvanced = 8

	MemoryPairPoints         = 10
	MemoryPairPointsAdvanced = 15

	WordPoints = 8

	// MaxGameScore caps the points a single game instance can contribute.
	MaxGameScore = 250
)

// ColorPoints is the award for completing a color-sequence level.
func ColorPoints(level int) int {
	return level * 5
}

// MemoryBonus is the completion bonus for clearing the whole board,
// shrinking with the number of moves taken.
func MemoryBonus(advanced bool, moves int) int {
	base := 50
	if advanced {
		base = 75
	}
	bonus := base - moves*2
	if bonus < 0 {
		return 0
	}
	return bonus
}

// ClampAward limits points so that a game instance's running score never
// exceeds MaxGameScore. Returns the portion of points actually awarded.
func ClampAward(gameScore, points int) int {
	if gameScore >= MaxGameScore {
		return 0
	}
	if gameScore+points > MaxGameScore {
		return MaxGameScore - gameScore
	}
	return points
}

var memorySymbols = []string{"🌟", "🎈", "🌸", "🎯", "🌞", "🎨", "🚀", "🎪", "🌈", "🎭"}

// ColorPalette is the fixed set of colors used by the pattern game.
var ColorPalette = []string{"red", "blue", "green", "yellow"}

type wordPicture struct {
	Word        string
	Emoji       string
	Description string
}

var wordPictures = []wordPicture{
	{Word: "SUN", Emoji: "☀️", Description: "Bright and warm in the sky"},
	{Word: "CAT", Emoji: "🐱", Description: "Furry pet that says meow"},
	{Word: "TREE", Emoji: "🌳", Description: "Tall plant with leaves"},
	{Word: "HOUSE", Emoji: "🏠", Description: "Where people live"},
	{Word: "CAR", Emoji: "🚗", Description: "Vehicle with four wheels"},
	{Word: "APPLE", Emoji: "🍎", Description: "Red fruit that's healthy"},
	{Word: "FLOWER", Emoji: "🌸", Description: "Pretty and smells nice"},
	{Word: "STAR", Emoji: "⭐", Description: "Shines in the night sky"},
	{Word: "HEART", Emoji: "❤️", Description: "Symbol of love"},
	{Word: "BOOK", Emoji: "📚", Description: "Has pages to read"},
}

// Generator produces game rounds. Not safe for concurrent use; the
// server guards it with its own lock.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

type MathQuestion struct {
	Question string `json:"question"`
	Answer   int    `json:"answer"`
	Options  []int  `json:"options"`
	Points   int    `json:"points"`
}

// MathQuestion builds an addition or subtraction question with four
// shuffled options. Subtraction operands are chosen so the answer is
// at least 1: an answer of 0 leaves only two valid wrong options in
// the candidate window and the option loop could never fill three.
func (g *Generator) MathQuestion(advanced bool) MathQuestion {
	maxNum := 10
	points := MathPoints
	if advanced {
		maxNum = 20
		points = MathPointsAdvanced
	}

	var num1, num2, answer int
	var op string
	if g.rng.Intn(2) == 0 {
		op = "+"
		num1 = g.rng.Intn(maxNum) + 1
		num2 = g.rng.Intn(maxNum) + 1
		answer = num1 + num2
	} else {
		op = "-"
		num1 = g.rng.Intn(maxNum+5) + 5
		num2 = g.rng.Intn(num1-1) + 1
		answer = num1 - num2
	}

	wrong := make(map[int]bool)
	options := []int{answer}
	for len(wrong) < 3 {
		w := answer + g.rng.Intn(6) - 3
		if w != answer && w >= 0 && !wrong[w] {
			wrong[w] = true
			options = append(options, w)
		}
	}

	return MathQuestion{
		Question: fmt.Sprintf("%d %s %d = ?", num1, op, num2),
		Answer:   answer,
		Options:  utility.Shuffle(g.rng, options),
		Points:   points,
	}
}

type MemoryCard struct {
	ID     int    `json:"id"`
	Symbol string `json:"symbol"`
}

// MemoryDeck deals a shuffled board where every symbol appears exactly
// twice: 6 pairs in the easy variant, 8 in the advanced one.
func (g *Generator) MemoryDeck(advanced bool) []MemoryCard {
	pairCount := 6
	if advanced {
		pairCount = 8
	}
	symbols := memorySymbols[:pairCount]

	deck := make([]string, 0, pairCount*2)
	deck = append(deck, symbols...)
	deck = append(deck, symbols...)
	deck = utility.Shuffle(g.rng, deck)

	cards := make([]MemoryCard, len(deck))
	for i, sym := range deck {
		cards[i] = MemoryCard{ID: i, Symbol: sym}
	}
	return cards
}

// ColorSequence produces a pattern of level+2 colors to memorize.
// Levels below 1 are treated as level 1.
func (g *Generator) ColorSequence(level int) []string {
	if level < 1 {
		level = 1
	}
	seq := make([]string, level+2)
	for i := range seq {
		seq[i] = utility.Pick(g.rng, ColorPalette)
	}
	return seq
}

type WordRound struct {
	Word        string   `json:"word"`
	Emoji       string   `json:"emoji"`
	Description string   `json:"description"`
	Mode        string   `json:"mode"`
	Options     []string `json:"options"`
	Points      int      `json:"points"`
}

// WordRound picks a word-picture item plus three distinct wrong word
// options, in a randomly chosen direction (picture-to-word or
// word-to-picture).
func (g *Generator) WordRound() WordRound {
	item := utility.Pick(g.rng, wordPictures)

	wrong := make(map[string]bool)
	options := []string{item.Word}
	for len(wrong) < 3 {
		cand := utility.Pick(g.rng, wordPictures)
		if cand.Word != item.Word && !wrong[cand.Word] {
			wrong[cand.Word] = true
			options = append(options, cand.Word)
		}
	}

	mode := "picture-to-word"
	if g.rng.Intn(2) == 1 {
		mode = "word-to-picture"
	}

	return WordRound{
		Word:        item.Word,
		Emoji:       item.Emoji,
		Description: item.Description,
		Mode:        mode,
		Options:     utility.Shuffle(g.rng, options),
		Points:      WordPoints,
	}
}
