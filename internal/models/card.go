// internal/models/card.go
package models

import (
	"strconv"

	"github.com/google/uuid"
)

// Color identifies one of the four playable colors, or the pseudo-color "wild"
// carried by wild-typed cards until a color is chosen for them.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorWild   Color = "wild"
)

// Colors lists the four chooseable colors in a stable order.
var Colors = []Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// ValidChosenColor reports whether c is one of the four playable colors.
func ValidChosenColor(c Color) bool {
	switch c {
	case ColorRed, ColorYellow, ColorGreen, ColorBlue:
		return true
	}
	return false
}

// Value is a card's face value: "0".."9" or one of the action faces.
type Value string

const (
	ValueSkip     Value = "skip"
	ValueReverse  Value = "reverse"
	ValueDrawTwo  Value = "draw2"
	ValueWild     Value = "wild"
	ValueWildDraw Value = "wild_draw4"
)

// Card is immutable once created. Identity is the UUID; legality checks and
// hand lookups go through it.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Color Color     `json:"color"`
	Value Value     `json:"value"`
}

// IsWild reports whether the card is wild-typed (plain wild or wild draw four).
func (c *Card) IsWild() bool {
	return c.Value == ValueWild || c.Value == ValueWildDraw
}

// IsAction reports whether the card carries a turn effect when flipped or played.
func (c *Card) IsAction() bool {
	switch c.Value {
	case ValueSkip, ValueReverse, ValueDrawTwo, ValueWild, ValueWildDraw:
		return true
	}
	return false
}

// NewPack builds one standard 108-card pack: per color one 0, two each of 1-9,
// two skip, two reverse, two draw-two; plus four wild and four wild draw four.
func NewPack() []*Card {
	var pack []*Card
	add := func(color Color, value Value) {
		id, _ := uuid.NewRandom()
		pack = append(pack, &Card{ID: id, Color: color, Value: value})
	}
	for _, color := range Colors {
		add(color, Value("0"))
		for n := 1; n <= 9; n++ {
			face := Value(strconv.Itoa(n))
			add(color, face)
			add(color, face)
		}
		for i := 0; i < 2; i++ {
			add(color, ValueSkip)
			add(color, ValueReverse)
			add(color, ValueDrawTwo)
		}
	}
	for i := 0; i < 4; i++ {
		add(ColorWild, ValueWild)
		add(ColorWild, ValueWildDraw)
	}
	return pack
}
